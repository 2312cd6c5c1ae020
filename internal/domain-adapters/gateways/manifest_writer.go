package gateways

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/depack/internal/domain/entities"
)

// ManifestFormat selects the manifest encoding
type ManifestFormat string

// Supported manifest encodings
const (
	ManifestJSON ManifestFormat = "json"
	ManifestYAML ManifestFormat = "yaml"
)

// ParseManifestFormat validates a format name
func ParseManifestFormat(s string) (ManifestFormat, error) {
	switch ManifestFormat(s) {
	case ManifestJSON, "":
		return ManifestJSON, nil
	case ManifestYAML, "yml":
		return ManifestYAML, nil
	default:
		return "", fmt.Errorf("unsupported manifest format %q (use json or yaml)", s)
	}
}

// ManifestWriter encodes manifests deterministically
type ManifestWriter struct{}

// NewManifestWriter creates a new manifest writer
func NewManifestWriter() *ManifestWriter {
	return &ManifestWriter{}
}

// Encode renders the manifest. The same manifest always yields the same bytes.
func (w *ManifestWriter) Encode(m *entities.Manifest, format ManifestFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := w.encodeTo(&buf, m, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteManifest writes the manifest to path atomically
func (w *ManifestWriter) WriteManifest(m *entities.Manifest, path string, format ManifestFormat) error {
	return writeFileAtomic(path, func(out io.Writer) error {
		return w.encodeTo(out, m, format)
	})
}

func (w *ManifestWriter) encodeTo(out io.Writer, m *entities.Manifest, format ManifestFormat) error {
	if m.Entries == nil {
		m = &entities.Manifest{Entries: []entities.ManifestEntry{}}
	}

	switch format {
	case ManifestJSON, "":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		return nil
	case ManifestYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported manifest format %q", format)
	}
}
