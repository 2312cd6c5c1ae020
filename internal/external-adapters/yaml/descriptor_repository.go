package yaml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ochairo/depack/internal/domain/entities"
	"github.com/ochairo/depack/internal/external-adapters/schema"
)

// DescriptorRepository implements repositories.DescriptorRepository using YAML files
type DescriptorRepository struct {
	parser *DescriptorParser
}

// NewDescriptorRepository creates a new YAML-based descriptor repository
func NewDescriptorRepository() *DescriptorRepository {
	return &DescriptorRepository{
		parser: NewDescriptorParser(),
	}
}

// LoadDescriptor reads the descriptor, validates it against the schema and parses it
func (r *DescriptorRepository) LoadDescriptor(ctx context.Context, path string) (*entities.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	//nolint:gosec // G304: path is the descriptor chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &entities.DescriptorError{Path: path, Err: fmt.Errorf("descriptor not found")}
		}
		return nil, &entities.DescriptorError{Path: path, Err: err}
	}

	if err := schema.ValidateRawYAML(data); err != nil {
		return nil, &entities.DescriptorError{Path: path, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	return r.parser.parseFile(path, data)
}
