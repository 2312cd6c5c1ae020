package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/depack/internal/domain-adapters/gateways"
	"github.com/ochairo/depack/internal/domain/entities"
)

func writeJar(t *testing.T, path string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(filepath.Base(path) + ":" + name))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
}

// newProject lays out a descriptor with a Maven repository and a libs directory
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeJar(t, filepath.Join(dir, "repo", "com", "squareup", "okio", "3.6.0", "okio-3.6.0.jar"),
		"okio/Buffer.class", "META-INF/LICENSE")
	writeJar(t, filepath.Join(dir, "libs", "okhttp.aar"),
		"okhttp3/OkHttpClient.class", "okio/Buffer.class", "META-INF/LICENSE.txt")
	writeJar(t, filepath.Join(dir, "libs", "httpclient-4.5.14.jar"),
		"org/apache/http/client/HttpClient.class")

	descriptor := `repositories: [./repo]
options:
  parallelism: 2
sources:
  - named: com.squareup:okio:3.6.0
  - scan:
      id: libs
      root: ./libs
      include: ["*.aar", "*.jar"]
      exclude: ["httpclient-4.5.14.jar"]
excludes:
  - META-INF/LICENSE*
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "packaging.yaml"), []byte(descriptor), 0600))
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestResolve_WritesManifestToStdout(t *testing.T) {
	dir := newProject(t)

	stdout, stderr, err := run(t, "resolve", "-f", filepath.Join(dir, "packaging.yaml"))
	require.NoError(t, err)

	var manifest entities.Manifest
	require.NoError(t, json.Unmarshal([]byte(stdout), &manifest))
	assert.Equal(t, []string{"okio/Buffer.class", "okhttp3/OkHttpClient.class"}, manifest.Paths())
	assert.Equal(t, "com.squareup:okio:3.6.0", manifest.Entries[0].Source)
	assert.Equal(t, "libs", manifest.Entries[1].Source)
	assert.Contains(t, stderr, "Resolved 2 entries")
	assert.Contains(t, stderr, "1 collisions")
}

func TestResolve_IsIdempotent(t *testing.T) {
	dir := newProject(t)
	descriptor := filepath.Join(dir, "packaging.yaml")

	first, _, err := run(t, "resolve", "-f", descriptor)
	require.NoError(t, err)
	second, _, err := run(t, "resolve", "-f", descriptor, "--parallelism", "1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_WritesManifestFile(t *testing.T) {
	dir := newProject(t)
	out := filepath.Join(dir, "build", "manifest.yaml")

	_, stderr, err := run(t, "resolve", "-f", filepath.Join(dir, "packaging.yaml"), "-o", out, "--format", "yaml", "--show-collisions")
	require.NoError(t, err)

	data, err := os.ReadFile(out) //nolint:gosec // G304: test output
	require.NoError(t, err)
	assert.Contains(t, string(data), "path: okio/Buffer.class")
	assert.Contains(t, stderr, "discarded")
}

func TestResolve_MissingRootWritesNothing(t *testing.T) {
	dir := newProject(t)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "libs")))
	out := filepath.Join(dir, "manifest.json")

	_, _, err := run(t, "resolve", "-f", filepath.Join(dir, "packaging.yaml"), "-o", out)

	var srcErr *entities.SourceResolutionError
	require.ErrorAs(t, err, &srcErr)
	assert.NoFileExists(t, out)
}

func TestResolve_RepositoryOverride(t *testing.T) {
	dir := newProject(t)

	_, _, err := run(t, "resolve", "-f", filepath.Join(dir, "packaging.yaml"), "--repository", filepath.Join(dir, "elsewhere"))
	require.ErrorIs(t, err, entities.ErrArtifactNotFound)
}

func TestResolve_InvalidFormat(t *testing.T) {
	dir := newProject(t)
	_, _, err := run(t, "resolve", "-f", filepath.Join(dir, "packaging.yaml"), "--format", "xml")
	require.Error(t, err)
}

func TestPackage_WritesContainerAndManifest(t *testing.T) {
	dir := newProject(t)
	out := filepath.Join(dir, "dist", "app-libs.jar")
	manifest := filepath.Join(dir, "dist", "app-libs.json")

	stdout, _, err := run(t, "package", "-f", filepath.Join(dir, "packaging.yaml"), "-o", out, "--manifest", manifest)
	require.NoError(t, err)
	assert.Contains(t, stdout, out)
	assert.FileExists(t, manifest)

	entries, err := gateways.NewArchiveReader().ReadArchive(context.Background(), out)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "okio/Buffer.class", entries[0].Path)
	assert.Equal(t, "okio-3.6.0.jar:okio/Buffer.class", string(entries[0].Content))
}

func TestPackage_ManifestFailureWritesNoPackage(t *testing.T) {
	dir := newProject(t)
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	out := filepath.Join(dir, "dist", "app-libs.jar")

	_, _, err := run(t, "package", "-f", filepath.Join(dir, "packaging.yaml"),
		"-o", out, "--manifest", filepath.Join(blocker, "app-libs.json"))
	require.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestPackage_PackageFailureRemovesManifest(t *testing.T) {
	dir := newProject(t)
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	manifest := filepath.Join(dir, "dist", "app-libs.json")

	_, _, err := run(t, "package", "-f", filepath.Join(dir, "packaging.yaml"),
		"-o", filepath.Join(blocker, "app-libs.jar"), "--manifest", manifest)
	require.Error(t, err)
	assert.NoFileExists(t, manifest)
}

func TestPackage_RequiresOutput(t *testing.T) {
	dir := newProject(t)
	_, _, err := run(t, "package", "-f", filepath.Join(dir, "packaging.yaml"))
	require.Error(t, err)
}

func TestList_PrintsArchivesInOrder(t *testing.T) {
	dir := newProject(t)

	stdout, _, err := run(t, "list", "-f", filepath.Join(dir, "packaging.yaml"))
	require.NoError(t, err)

	okio := bytes.Index([]byte(stdout), []byte("okio-3.6.0.jar"))
	okhttp := bytes.Index([]byte(stdout), []byte("okhttp.aar"))
	assert.Positive(t, okio)
	assert.Greater(t, okhttp, okio)
	assert.NotContains(t, stdout, "httpclient-4.5.14.jar")
}

func TestValidate(t *testing.T) {
	dir := newProject(t)

	stdout, _, err := run(t, "validate", "-f", filepath.Join(dir, "packaging.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 sources, 1 exclusion rules")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sources:\n  - scan: {root: ./libs, include: ['[']}\n"), 0600))
	_, _, err = run(t, "validate", "-f", bad)
	var globErr *entities.GlobSyntaxError
	require.ErrorAs(t, err, &globErr)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("sources: nope\n"), 0600))
	_, _, err = run(t, "validate", "-f", invalid)
	var descErr *entities.DescriptorError
	require.ErrorAs(t, err, &descErr)
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "depack dev")
}

func TestInvalidLogLevel(t *testing.T) {
	dir := newProject(t)
	_, _, err := run(t, "resolve", "-f", filepath.Join(dir, "packaging.yaml"), "--log-level", "loud")
	require.Error(t, err)
}
