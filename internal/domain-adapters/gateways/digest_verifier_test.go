package gateways

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/depack/internal/domain/entities"
)

func TestDigestVerifier_VerifyDigest(t *testing.T) {
	content := []byte("okhttp-4.12.0.jar")
	path := filepath.Join(t.TempDir(), "okhttp.jar")
	writeFixtureFile(t, path, content)

	v := NewDigestVerifier()

	t.Run("sha256 match", func(t *testing.T) {
		require.NoError(t, v.VerifyDigest(context.Background(), path, digest.SHA256.FromBytes(content).String()))
	})

	t.Run("sha512 match", func(t *testing.T) {
		require.NoError(t, v.VerifyDigest(context.Background(), path, digest.SHA512.FromBytes(content).String()))
	})

	t.Run("mismatch", func(t *testing.T) {
		err := v.VerifyDigest(context.Background(), path, digest.SHA256.FromString("other").String())
		require.ErrorIs(t, err, entities.ErrDigestMismatch)
		assert.Contains(t, err.Error(), digest.SHA256.FromBytes(content).String())
	})

	t.Run("malformed digest", func(t *testing.T) {
		err := v.VerifyDigest(context.Background(), path, "sha256:nothex")
		require.Error(t, err)
		assert.NotErrorIs(t, err, entities.ErrDigestMismatch)
	})

	t.Run("missing file", func(t *testing.T) {
		err := v.VerifyDigest(context.Background(), filepath.Join(t.TempDir(), "nope.jar"), digest.SHA256.FromBytes(content).String())
		require.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := v.VerifyDigest(ctx, path, digest.SHA256.FromBytes(content).String())
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDigestVerifier_CalculateDigest(t *testing.T) {
	content := []byte("httpclient")
	path := filepath.Join(t.TempDir(), "httpclient.jar")
	writeFixtureFile(t, path, content)

	v := NewDigestVerifier()
	got, err := v.CalculateDigest(path, digest.SHA256)
	require.NoError(t, err)
	assert.Equal(t, digest.SHA256.FromBytes(content), got)

	_, err = v.CalculateDigest(path, digest.Algorithm("md5"))
	require.Error(t, err)
}
