// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/ochairo/depack/internal/domain/entities"
)

// SourceScanner expands a directory-scan source into candidate archive paths
type SourceScanner interface {
	// Scan walks the source root and returns matching files in lexical order
	Scan(ctx context.Context, source entities.DependencySource) ([]string, error)
}

// ArtifactResolver locates the single archive behind a named artifact
type ArtifactResolver interface {
	ResolveArtifact(ctx context.Context, source entities.DependencySource) (string, error)
}

// ArchiveReader enumerates the entries of an archive file
type ArchiveReader interface {
	ReadArchive(ctx context.Context, path string) ([]entities.ArchiveEntry, error)
}

// IntegrityVerifier checks a named artifact against its pinned digest and signature
type IntegrityVerifier interface {
	VerifyArtifact(ctx context.Context, source entities.DependencySource, archivePath string) error
}
