// Package gpg provides OpenPGP detached signature verification.
package gpg

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const armoredSignaturePrefix = "-----BEGIN PGP SIGNATURE-----"

// maxSignatureSize bounds detached signature files (real ones are well under 1KB)
const maxSignatureSize = 64 * 1024

// Verifier implements detached signature verification using ProtonMail's go-crypto,
// a maintained fork of golang.org/x/crypto/openpgp
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a new verifier with an empty keyring
func NewVerifier() *Verifier {
	return &Verifier{
		keyring: make(openpgp.EntityList, 0),
	}
}

// ImportKeyFromFile imports public keys from an armored or binary keyring file
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath is the keyring configured in the descriptor
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		// Try reading as binary
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entities) == 0 {
		return fmt.Errorf("no keys found in file")
	}

	v.keyring = append(v.keyring, entities...)
	return nil
}

// VerifySignatureFromFile verifies a detached signature (armored or binary) of filePath
func (v *Verifier) VerifySignatureFromFile(filePath, sigPath string) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no OpenPGP keys imported, configure a keyring first")
	}

	//nolint:gosec // G304: sigPath is the signature configured in the descriptor
	sigFile, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("failed to open signature file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer sigFile.Close()

	sigData, err := io.ReadAll(io.LimitReader(sigFile, maxSignatureSize+1))
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}
	if len(sigData) > maxSignatureSize {
		return fmt.Errorf("signature file exceeds %d bytes", maxSignatureSize)
	}

	//nolint:gosec // G304: filePath is a resolved dependency archive
	dataFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer dataFile.Close()

	return v.verify(dataFile, sigData)
}

func (v *Verifier) verify(data io.Reader, sigData []byte) error {
	var verifyErr error
	if bytes.HasPrefix(bytes.TrimSpace(sigData), []byte(armoredSignaturePrefix)) {
		_, verifyErr = openpgp.CheckArmoredDetachedSignature(v.keyring, data, bytes.NewReader(sigData), nil)
	} else {
		_, verifyErr = openpgp.CheckDetachedSignature(v.keyring, data, bytes.NewReader(sigData), nil)
	}

	if verifyErr != nil {
		return fmt.Errorf("signature verification failed: %w", verifyErr)
	}
	return nil
}

// GetKeyringSize returns the number of keys in the keyring
func (v *Verifier) GetKeyringSize() int {
	return len(v.keyring)
}

// ClearKeyring clears all imported keys
func (v *Verifier) ClearKeyring() {
	v.keyring = make(openpgp.EntityList, 0)
}
