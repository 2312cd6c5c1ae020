package entities

// Manifest is the ordered list of packaged entries and their source attribution
type Manifest struct {
	Entries []ManifestEntry `json:"entries" yaml:"entries"`
}

// ManifestEntry attributes a packaged path to the source that provided it
type ManifestEntry struct {
	Path    string `json:"path" yaml:"path"`
	Source  string `json:"source" yaml:"source"`
	Archive string `json:"archive" yaml:"archive"`
	Digest  string `json:"digest" yaml:"digest"`
	Size    int64  `json:"size" yaml:"size"`
}

// Paths returns the manifest paths in order
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		paths = append(paths, e.Path)
	}
	return paths
}
