// Package entities defines core domain models and data structures.
package entities

// Archive is a candidate archive produced by expanding a dependency source
type Archive struct {
	SourceID string
	Path     string
	Index    int // Position in the expanded declaration order
}

// ArchiveEntry is a single file read from an archive
type ArchiveEntry struct {
	Path    string
	Content []byte
}

// ArchiveContents pairs a candidate archive with the entries read from it
type ArchiveContents struct {
	Archive Archive
	Entries []ArchiveEntry
}

// PackagedEntry is one file that lands in the final package
type PackagedEntry struct {
	Path     string
	Archive  string
	SourceID string
	Content  []byte
	Digest   string // "sha256:<hex>"
}

// Collision records an entry discarded because an earlier archive already provided its path
type Collision struct {
	Path             string
	KeptArchive      string
	KeptSource       string
	DiscardedArchive string
	DiscardedSource  string
}

// Resolution is the outcome of a single resolution pass
type Resolution struct {
	Archives   []Archive
	Entries    []PackagedEntry
	Collisions []Collision
	Excluded   int // Entries dropped by global exclusion rules
}

// Manifest converts the resolved entries into the ordered manifest handed to packaging
func (r *Resolution) Manifest() *Manifest {
	m := &Manifest{Entries: make([]ManifestEntry, 0, len(r.Entries))}
	for _, e := range r.Entries {
		m.Entries = append(m.Entries, ManifestEntry{
			Path:    e.Path,
			Source:  e.SourceID,
			Archive: e.Archive,
			Digest:  e.Digest,
			Size:    int64(len(e.Content)),
		})
	}
	return m
}
