package gateways

import (
	"context"
	"fmt"

	"github.com/ochairo/depack/internal/domain/entities"
	"github.com/ochairo/depack/internal/domain/interfaces/gateways"
)

// integrityVerifier implements IntegrityVerifier by composing the digest and OpenPGP verifiers
type integrityVerifier struct {
	digestVerifier *digestVerifier
	gpgVerifier    *gpgVerifier
}

// NewIntegrityVerifier creates an integrity verifier. keyringPath may be empty when no
// source declares a signature.
func NewIntegrityVerifier(keyringPath string) (gateways.IntegrityVerifier, error) {
	gpgV := NewGPGVerifier()
	if keyringPath != "" {
		if err := gpgV.ImportGPGKeyFromFile(keyringPath); err != nil {
			return nil, err
		}
	}
	return NewIntegrityVerifierWithDeps(NewDigestVerifier(), gpgV), nil
}

// NewIntegrityVerifierWithDeps creates an integrity verifier with custom dependencies
func NewIntegrityVerifierWithDeps(d *digestVerifier, g *gpgVerifier) gateways.IntegrityVerifier {
	return &integrityVerifier{
		digestVerifier: d,
		gpgVerifier:    g,
	}
}

// VerifyArtifact checks the pinned digest first, then the detached signature
func (v *integrityVerifier) VerifyArtifact(ctx context.Context, source entities.DependencySource, archivePath string) error {
	if source.Digest != "" {
		if err := v.digestVerifier.VerifyDigest(ctx, archivePath, source.Digest); err != nil {
			return err
		}
	}

	if source.Signature != "" {
		if err := v.gpgVerifier.VerifyGPGSignatureFromFile(archivePath, source.Signature); err != nil {
			return fmt.Errorf("%w: %w", entities.ErrSignatureInvalid, err)
		}
	}

	return nil
}
