package entities

import (
	"errors"
	"fmt"
)

// Causes wrapped by the packaging errors below
var (
	// ErrRootNotFound indicates a directory scan root does not exist.
	ErrRootNotFound = errors.New("scan root not found")

	// ErrArtifactNotFound indicates a named artifact could not be located in any repository.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrArchiveTimeout indicates an archive read exceeded its timeout.
	ErrArchiveTimeout = errors.New("archive read timed out")

	// ErrUnsupportedArchive indicates a candidate file is not a zip or tar archive.
	ErrUnsupportedArchive = errors.New("unsupported archive format")

	// ErrDigestMismatch indicates a named artifact does not match its pinned digest.
	ErrDigestMismatch = errors.New("digest mismatch")

	// ErrSignatureInvalid indicates a detached signature did not verify.
	ErrSignatureInvalid = errors.New("signature verification failed")

	// ErrUnsafeEntryPath indicates an archive entry escapes the archive root.
	ErrUnsafeEntryPath = errors.New("unsafe entry path")
)

// SourceResolutionError reports a dependency source that cannot be located
type SourceResolutionError struct {
	Source string
	Err    error
}

func (e *SourceResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve source %s: %v", e.Source, e.Err)
}

func (e *SourceResolutionError) Unwrap() error { return e.Err }

// ArchiveReadError reports an archive that cannot be opened or read
type ArchiveReadError struct {
	Source  string
	Archive string
	Err     error
}

func (e *ArchiveReadError) Error() string {
	return fmt.Sprintf("cannot read archive %s from source %s: %v", e.Archive, e.Source, e.Err)
}

func (e *ArchiveReadError) Unwrap() error { return e.Err }

// GlobSyntaxError reports a malformed include, exclude or exclusion pattern
type GlobSyntaxError struct {
	Source  string // Empty for global exclusion rules
	Pattern string
	Err     error
}

func (e *GlobSyntaxError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid exclusion pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("invalid pattern %q in source %s: %v", e.Pattern, e.Source, e.Err)
}

func (e *GlobSyntaxError) Unwrap() error { return e.Err }

// DescriptorError reports a packaging descriptor that cannot be parsed or validated
type DescriptorError struct {
	Path string
	Err  error
}

func (e *DescriptorError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid descriptor: %v", e.Err)
	}
	return fmt.Sprintf("invalid descriptor %s: %v", e.Path, e.Err)
}

func (e *DescriptorError) Unwrap() error { return e.Err }
