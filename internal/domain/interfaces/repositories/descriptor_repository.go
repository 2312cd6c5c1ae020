// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/depack/internal/domain/entities"
)

// DescriptorRepository defines the interface for loading packaging descriptors
type DescriptorRepository interface {
	// LoadDescriptor reads, validates and parses the descriptor at path
	LoadDescriptor(ctx context.Context, path string) (*entities.Descriptor, error)
}
