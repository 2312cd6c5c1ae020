// Package services defines interfaces for domain service contracts.
package services

import (
	"github.com/ochairo/depack/internal/domain/entities"
)

// MergeService defines the collision and exclusion policy applied to archive contents
type MergeService interface {
	// Merge combines archive contents in declaration order into a conflict-free resolution
	Merge(contents []entities.ArchiveContents) *entities.Resolution

	// IsExcluded reports whether an entry path matches a global exclusion rule
	IsExcluded(entryPath string) bool
}
