package gateways

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixtureEntry is a named file inside a test archive. A symlink mode stores
// content as the link target.
type fixtureEntry struct {
	name    string
	content string
	mode    os.FileMode
}

func writeZipFixture(t *testing.T, path string, entries ...fixtureEntry) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		header := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		if e.mode != 0 {
			header.SetMode(e.mode)
		}
		w, err := zw.CreateHeader(header)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	writeFixtureFile(t, path, buf.Bytes())
	return path
}

func writeTarFixture(t *testing.T, path string, compress bool, entries ...fixtureEntry) string {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		if e.mode&os.ModeSymlink != 0 {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Typeflag: tar.TypeSymlink,
				Name:     e.name,
				Linkname: e.content,
				Mode:     0777,
			}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.name,
			Mode:     0644,
			Size:     int64(len(e.content)),
		}))
		_, err := tw.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	data := buf.Bytes()
	if compress {
		var gzBuf bytes.Buffer
		gw := gzip.NewWriter(&gzBuf)
		_, err := gw.Write(data)
		require.NoError(t, err)
		require.NoError(t, gw.Close())
		data = gzBuf.Bytes()
	}
	writeFixtureFile(t, path, data)
	return path
}

func writeFixtureFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	//nolint:gosec // G306: test fixture
	require.NoError(t, os.WriteFile(path, data, 0644))
}
