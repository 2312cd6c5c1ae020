package gateways

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ochairo/depack/internal/domain/entities"
	"github.com/ochairo/depack/internal/domain/services"
)

// SourceScanner expands directory-scan sources into candidate archive files
type SourceScanner struct{}

// NewSourceScanner creates a new source scanner
func NewSourceScanner() *SourceScanner {
	return &SourceScanner{}
}

// Scan walks the source root and returns the files selected by its include/exclude globs.
// Globs are matched against the slash-separated path relative to the root. Results are in
// lexical walk order, so repeated scans of an unchanged tree return the same sequence.
func (s *SourceScanner) Scan(ctx context.Context, source entities.DependencySource) ([]string, error) {
	id := source.Identifier()

	filter, err := services.NewScanFilter(source)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(source.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &entities.SourceResolutionError{
				Source: id,
				Err:    fmt.Errorf("%w: %s", entities.ErrRootNotFound, source.Root),
			}
		}
		return nil, &entities.SourceResolutionError{Source: id, Err: err}
	}
	if !info.IsDir() {
		return nil, &entities.SourceResolutionError{
			Source: id,
			Err:    fmt.Errorf("scan root is not a directory: %s", source.Root),
		}
	}

	// WalkDir does not descend into a symlinked root, so walk its target
	walkRoot, err := filepath.EvalSymlinks(source.Root)
	if err != nil {
		return nil, &entities.SourceResolutionError{Source: id, Err: err}
	}

	archives := make([]string, 0)
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if !isRegularFile(path, d) {
			return nil
		}

		relPath, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		if filter.Included(filepath.ToSlash(relPath)) {
			archives = append(archives, filepath.Join(source.Root, relPath))
		}
		return nil
	})
	if err != nil {
		return nil, &entities.SourceResolutionError{
			Source: id,
			Err:    fmt.Errorf("failed to walk %s: %w", source.Root, err),
		}
	}

	return archives, nil
}

// isRegularFile accepts regular files and symlinks that point at regular files
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
