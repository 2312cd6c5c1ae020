package yaml

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/depack/internal/domain/entities"
)

const fullDescriptor = `
repositories: [./repo, /opt/m2]
keyring: ./keys/trusted.asc
options:
  archive_timeout: 45s
  parallelism: 4
sources:
  - named: org.apache.httpcomponents:httpcore:4.4.16
    digest: sha256:2b3a0d9e7f2e2ffb0c54ca5fba5dca4bd6e4c9a4a0d7c4e4f0b5f1a3b6b9d5c1
    signature: ./sigs/httpcore.jar.asc
  - scan:
      root: ./libs
      include: ["*.aar", "*.jar"]
      exclude: ["httpclient-4.5.14.jar"]
  - scan:
      id: vendor
      root: /srv/vendor
      include: ["**/*.jar"]
excludes:
  - META-INF/LICENSE*
  - org/apache/commons/codec/language/**
`

func TestDescriptorParser_Parse(t *testing.T) {
	desc, err := NewDescriptorParser().Parse([]byte(fullDescriptor))
	require.NoError(t, err)

	assert.Equal(t, []string{"./repo", "/opt/m2"}, desc.Repositories)
	assert.Equal(t, "./keys/trusted.asc", desc.Keyring)
	assert.Equal(t, 45*time.Second, desc.Options.ArchiveTimeout)
	assert.Equal(t, 4, desc.Options.Parallelism)

	require.Len(t, desc.Sources, 3)
	assert.Equal(t, entities.DependencySource{
		Kind:      entities.SourceNamed,
		ID:        "org.apache.httpcomponents:httpcore:4.4.16",
		Digest:    "sha256:2b3a0d9e7f2e2ffb0c54ca5fba5dca4bd6e4c9a4a0d7c4e4f0b5f1a3b6b9d5c1",
		Signature: "./sigs/httpcore.jar.asc",
	}, desc.Sources[0])
	assert.Equal(t, entities.DependencySource{
		Kind:    entities.SourceScan,
		Root:    "./libs",
		Include: []string{"*.aar", "*.jar"},
		Exclude: []string{"httpclient-4.5.14.jar"},
	}, desc.Sources[1])
	assert.Equal(t, "vendor", desc.Sources[2].Identifier())
	assert.Equal(t, "scan:./libs", desc.Sources[1].Identifier())

	assert.Equal(t, entities.ExclusionRules("META-INF/LICENSE*", "org/apache/commons/codec/language/**"), desc.Excludes)
}

func TestDescriptorParser_ParseFile_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "packaging.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullDescriptor), 0600))

	desc, err := NewDescriptorParser().ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, desc.Path)
	assert.Equal(t, []string{filepath.Join(dir, "repo"), "/opt/m2"}, desc.Repositories)
	assert.Equal(t, filepath.Join(dir, "keys", "trusted.asc"), desc.Keyring)
	assert.Equal(t, filepath.Join(dir, "sigs", "httpcore.jar.asc"), desc.Sources[0].Signature)
	assert.Equal(t, filepath.Join(dir, "libs"), desc.Sources[1].Root)
	assert.Equal(t, "/srv/vendor", desc.Sources[2].Root)
	// Coordinates are never treated as paths
	assert.Equal(t, "org.apache.httpcomponents:httpcore:4.4.16", desc.Sources[0].ID)
}

func TestDescriptorParser_Defaults(t *testing.T) {
	desc, err := NewDescriptorParser().Parse([]byte("sources:\n  - scan: {root: ./libs, include: ['*.jar']}\n"))
	require.NoError(t, err)

	assert.Zero(t, desc.Options.ArchiveTimeout)
	assert.Zero(t, desc.Options.Parallelism)
	assert.Empty(t, desc.Excludes)
	assert.Empty(t, desc.Repositories)
	assert.Empty(t, desc.Keyring)
}

func TestDescriptorParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: ""},
		{name: "invalid yaml", yaml: "sources: [\n"},
		{name: "unknown field", yaml: "sources: []\nsorces: []\n"},
		{name: "empty source", yaml: "sources:\n  - {}\n"},
		{name: "both kinds", yaml: "sources:\n  - named: a:b:c\n    scan: {root: ./libs}\n"},
		{name: "scan without root", yaml: "sources:\n  - scan: {include: ['*.jar']}\n"},
		{name: "digest on scan", yaml: "sources:\n  - scan: {root: ./libs}\n    digest: sha256:00\n"},
		{name: "bad timeout", yaml: "sources: []\noptions: {archive_timeout: soon}\n"},
		{name: "zero timeout", yaml: "sources: []\noptions: {archive_timeout: 0s}\n"},
		{name: "negative parallelism", yaml: "sources: []\noptions: {parallelism: -2}\n"},
	}

	parser := NewDescriptorParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.yaml))
			var descErr *entities.DescriptorError
			require.ErrorAs(t, err, &descErr)
		})
	}
}

func TestDescriptorParser_ParseFile_Missing(t *testing.T) {
	_, err := NewDescriptorParser().ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	var descErr *entities.DescriptorError
	require.ErrorAs(t, err, &descErr)
}
