package gateways

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ochairo/depack/internal/domain/entities"
)

// packageEpoch is the modification time stamped on every packaged entry.
// 1980-01-01 is the earliest time the zip format can represent.
var packageEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Packager writes resolved entries into the final container archive
type Packager struct{}

// NewPackager creates a new packager
func NewPackager() *Packager {
	return &Packager{}
}

// PackageEntries writes entries in manifest order to outputPath.
// The container format follows the extension: .jar/.aar/.zip/.apk -> zip, .tar.gz/.tgz -> tar.gz, .tar -> tar.
// Output is reproducible: fixed timestamps, ownership and permissions.
func (p *Packager) PackageEntries(ctx context.Context, entries []entities.PackagedEntry, outputPath string) error {
	write, err := p.writerFor(outputPath)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(outputPath, func(w io.Writer) error {
		return write(ctx, w, entries)
	}); err != nil {
		return fmt.Errorf("failed to write package %s: %w", outputPath, err)
	}
	return nil
}

type packageWriteFunc func(ctx context.Context, w io.Writer, entries []entities.PackagedEntry) error

func (p *Packager) writerFor(outputPath string) (packageWriteFunc, error) {
	name := strings.ToLower(filepath.Base(outputPath))
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return p.writeTarGz, nil
	case strings.HasSuffix(name, ".tar"):
		return p.writeTar, nil
	case strings.HasSuffix(name, ".jar"), strings.HasSuffix(name, ".aar"),
		strings.HasSuffix(name, ".zip"), strings.HasSuffix(name, ".apk"):
		return p.writeZip, nil
	default:
		return nil, fmt.Errorf("%w: cannot infer package format from %s", entities.ErrUnsupportedArchive, outputPath)
	}
}

func (p *Packager) writeZip(ctx context.Context, w io.Writer, entries []entities.PackagedEntry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, zw.Close())
		}

		header := &zip.FileHeader{
			Name:     e.Path,
			Method:   zip.Deflate,
			Modified: packageEpoch,
		}
		header.SetMode(0644)

		fw, err := zw.CreateHeader(header)
		if err != nil {
			return errors.Join(fmt.Errorf("failed to write zip header for %s: %w", e.Path, err), zw.Close())
		}
		if _, err := fw.Write(e.Content); err != nil {
			return errors.Join(fmt.Errorf("failed to write %s to zip: %w", e.Path, err), zw.Close())
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip: %w", err)
	}
	return nil
}

func (p *Packager) writeTarGz(ctx context.Context, w io.Writer, entries []entities.PackagedEntry) error {
	gzipWriter := gzip.NewWriter(w)
	if err := p.writeTar(ctx, gzipWriter, entries); err != nil {
		return errors.Join(err, gzipWriter.Close())
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize gzip: %w", err)
	}
	return nil
}

func (p *Packager) writeTar(ctx context.Context, w io.Writer, entries []entities.PackagedEntry) error {
	tarWriter := tar.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, tarWriter.Close())
		}

		header := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.Path,
			Mode:     0644,
			Size:     int64(len(e.Content)),
			ModTime:  packageEpoch,
			Format:   tar.FormatPAX,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return errors.Join(fmt.Errorf("failed to write tar header for %s: %w", e.Path, err), tarWriter.Close())
		}
		if _, err := tarWriter.Write(e.Content); err != nil {
			return errors.Join(fmt.Errorf("failed to write %s to tar: %w", e.Path, err), tarWriter.Close())
		}
	}
	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize tar: %w", err)
	}
	return nil
}
