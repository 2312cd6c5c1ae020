package gateways

import (
	"fmt"

	"github.com/ochairo/depack/internal/external-adapters/gpg"
)

// gpgVerifier wraps the external OpenPGP adapter for the integrity gateway
type gpgVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a new OpenPGP verifier gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier() *gpgVerifier {
	return &gpgVerifier{
		verifier: gpg.NewVerifier(),
	}
}

// ImportGPGKeyFromFile imports trusted keys from a local keyring file
func (g *gpgVerifier) ImportGPGKeyFromFile(keyPath string) error {
	if err := g.verifier.ImportKeyFromFile(keyPath); err != nil {
		return fmt.Errorf("failed to import GPG key from file: %w", err)
	}
	return nil
}

// VerifyGPGSignatureFromFile verifies a detached signature from a local file
func (g *gpgVerifier) VerifyGPGSignatureFromFile(filePath, sigPath string) error {
	if err := g.verifier.VerifySignatureFromFile(filePath, sigPath); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}
