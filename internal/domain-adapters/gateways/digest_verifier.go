package gateways

import (
	"context"
	// Register hash implementations used by go-digest
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/ochairo/depack/internal/domain/entities"
)

// digestVerifier checks files against OCI-style digests ("sha256:<hex>")
type digestVerifier struct{}

// NewDigestVerifier creates a new digest verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewDigestVerifier() *digestVerifier {
	return &digestVerifier{}
}

// VerifyDigest verifies a file against the expected digest
func (v *digestVerifier) VerifyDigest(ctx context.Context, filePath, expected string) error {
	want, err := digest.Parse(expected)
	if err != nil {
		return fmt.Errorf("invalid digest %q: %w", expected, err)
	}

	//nolint:gosec // G304: File path is a resolved dependency archive
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	verifier := want.Verifier()
	if _, err := io.Copy(verifier, &ctxReader{ctx: ctx, r: f}); err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	if !verifier.Verified() {
		actual, err := v.CalculateDigest(filePath, want.Algorithm())
		if err != nil {
			return fmt.Errorf("%w: expected %s", entities.ErrDigestMismatch, want)
		}
		return fmt.Errorf("%w: expected %s, got %s", entities.ErrDigestMismatch, want, actual)
	}

	return nil
}

// CalculateDigest calculates the digest of a file with the given algorithm
func (v *digestVerifier) CalculateDigest(filePath string, algorithm digest.Algorithm) (digest.Digest, error) {
	if !algorithm.Available() {
		return "", fmt.Errorf("digest algorithm %s unavailable", algorithm)
	}

	//nolint:gosec // G304: File path is a resolved dependency archive
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	d, err := algorithm.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return d, nil
}

// ctxReader fails reads once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
