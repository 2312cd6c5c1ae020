package gateways

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ochairo/depack/internal/domain/entities"
	"github.com/ochairo/depack/internal/domain/services"
)

type archiveFormat string

const (
	formatZip   archiveFormat = "zip"
	formatTar   archiveFormat = "tar"
	formatTarGz archiveFormat = "tar.gz"
)

// ArchiveReader reads the file entries of jar, aar, zip, tar and tar.gz archives.
// The format is detected from content, not from the file extension.
type ArchiveReader struct{}

// NewArchiveReader creates a new archive reader
func NewArchiveReader() *ArchiveReader {
	return &ArchiveReader{}
}

// ReadArchive returns the regular-file entries of the archive in archive order.
// Every read checks ctx, so a deadline on ctx bounds the whole operation.
func (r *ArchiveReader) ReadArchive(ctx context.Context, path string) ([]entities.ArchiveEntry, error) {
	//nolint:gosec // G304: path comes from the packaging descriptor
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	src := &ctxReaderAt{ctx: ctx, r: f}

	mtype, err := mimetype.DetectReader(io.NewSectionReader(src, 0, info.Size()))
	if err != nil {
		return nil, fmt.Errorf("failed to detect archive type: %w", err)
	}

	format := detectFormat(mtype)
	switch format {
	case formatZip:
		return readZip(ctx, src, info.Size())
	case formatTar:
		return readTar(ctx, io.NewSectionReader(src, 0, info.Size()))
	case formatTarGz:
		gz, err := gzip.NewReader(io.NewSectionReader(src, 0, info.Size()))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		//nolint:errcheck // Defer close on read-only stream
		defer gz.Close()
		return readTar(ctx, gz)
	default:
		return nil, fmt.Errorf("%w: %s", entities.ErrUnsupportedArchive, mtype.String())
	}
}

// detectFormat walks the MIME hierarchy so jar/aar/apk (children of zip) are read as zip
func detectFormat(m *mimetype.MIME) archiveFormat {
	for ; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/zip"):
			return formatZip
		case m.Is("application/gzip"):
			return formatTarGz
		case m.Is("application/x-tar"):
			return formatTar
		}
	}
	return ""
}

func readZip(ctx context.Context, src io.ReaderAt, size int64) ([]entities.ArchiveEntry, error) {
	zr, err := zip.NewReader(src, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}

	entries := make([]entities.ArchiveEntry, 0, len(zr.File))
	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// directories and symlinks carry no packageable content
		if !zf.Mode().IsRegular() {
			continue
		}

		name, err := entryName(zf.Name)
		if err != nil {
			return nil, err
		}

		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open entry %s: %w", zf.Name, err)
		}
		content, err := io.ReadAll(rc)
		err = errors.Join(err, rc.Close())
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %s: %w", zf.Name, err)
		}

		entries = append(entries, entities.ArchiveEntry{Path: name, Content: content})
	}
	return entries, nil
}

func readTar(ctx context.Context, src io.Reader) ([]entities.ArchiveEntry, error) {
	tr := tar.NewReader(src)

	entries := make([]entities.ArchiveEntry, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		header, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return nil, fmt.Errorf("failed to read tar header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name, err := entryName(header.Name)
		if err != nil {
			return nil, err
		}

		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %s: %w", header.Name, err)
		}

		entries = append(entries, entities.ArchiveEntry{Path: name, Content: content})
	}
}

func entryName(raw string) (string, error) {
	name := services.NormalizeEntryPath(raw)
	if !services.IsSafeEntryPath(name) {
		return "", fmt.Errorf("%w: %q", entities.ErrUnsafeEntryPath, raw)
	}
	return name, nil
}

// ctxReaderAt fails reads once ctx is done
type ctxReaderAt struct {
	ctx context.Context
	r   io.ReaderAt
}

func (c *ctxReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.ReadAt(p, off)
}
