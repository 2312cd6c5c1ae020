// Package services implements domain business logic and use cases.
package services

import (
	"github.com/opencontainers/go-digest"

	"github.com/ochairo/depack/internal/domain/entities"
	"github.com/ochairo/depack/internal/domain/interfaces"
	"github.com/ochairo/depack/internal/domain/interfaces/services"
)

// mergeService implements MergeService with the first-declared-wins policy
type mergeService struct {
	excludes *PatternSet
	logger   interfaces.Logger
}

// NewMergeService creates a merge service for the given global exclusion rules.
// Rules are compiled eagerly so a bad pattern fails before any archive is read.
func NewMergeService(rules []entities.ExclusionRule, logger interfaces.Logger) (services.MergeService, error) {
	excludes, err := CompileExclusionRules(rules)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	logger.Debug("exclusion rules compiled", interfaces.F("patterns", describePatterns(excludes)))
	return &mergeService{excludes: excludes, logger: logger}, nil
}

// IsExcluded reports whether an entry path matches a global exclusion rule
func (s *mergeService) IsExcluded(entryPath string) bool {
	return s.excludes.Match(entryPath)
}

// Merge combines archive contents into a conflict-free resolution.
// contents must already be in declaration order; the earliest archive providing a path wins.
func (s *mergeService) Merge(contents []entities.ArchiveContents) *entities.Resolution {
	res := &entities.Resolution{
		Archives:   make([]entities.Archive, 0, len(contents)),
		Entries:    make([]entities.PackagedEntry, 0),
		Collisions: make([]entities.Collision, 0),
	}

	// path -> index into res.Entries
	seen := make(map[string]int)

	for _, c := range contents {
		res.Archives = append(res.Archives, c.Archive)

		for _, entry := range c.Entries {
			entryPath := NormalizeEntryPath(entry.Path)

			if s.IsExcluded(entryPath) {
				res.Excluded++
				s.logger.Debug("entry excluded",
					interfaces.F("path", entryPath),
					interfaces.F("archive", c.Archive.Path))
				continue
			}

			if idx, dup := seen[entryPath]; dup {
				kept := res.Entries[idx]
				res.Collisions = append(res.Collisions, entities.Collision{
					Path:             entryPath,
					KeptArchive:      kept.Archive,
					KeptSource:       kept.SourceID,
					DiscardedArchive: c.Archive.Path,
					DiscardedSource:  c.Archive.SourceID,
				})
				s.logger.Debug("collision resolved, first declared wins",
					interfaces.F("path", entryPath),
					interfaces.F("kept", kept.Archive),
					interfaces.F("discarded", c.Archive.Path))
				continue
			}

			seen[entryPath] = len(res.Entries)
			res.Entries = append(res.Entries, entities.PackagedEntry{
				Path:     entryPath,
				Archive:  c.Archive.Path,
				SourceID: c.Archive.SourceID,
				Content:  entry.Content,
				Digest:   digest.Canonical.FromBytes(entry.Content).String(),
			})
		}
	}

	return res
}
