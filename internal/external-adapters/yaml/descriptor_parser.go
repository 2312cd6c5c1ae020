// Package yaml provides YAML-based packaging descriptor parsing and repository implementations.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/depack/internal/domain/entities"
)

// yamlDescriptor represents the raw YAML structure
type yamlDescriptor struct {
	Repositories []string     `yaml:"repositories"`
	Keyring      string       `yaml:"keyring"`
	Options      yamlOptions  `yaml:"options"`
	Sources      []yamlSource `yaml:"sources"`
	Excludes     []string     `yaml:"excludes"`
}

type yamlOptions struct {
	ArchiveTimeout string `yaml:"archive_timeout"`
	Parallelism    int    `yaml:"parallelism"`
}

type yamlSource struct {
	Named     string    `yaml:"named"`
	Digest    string    `yaml:"digest"`
	Signature string    `yaml:"signature"`
	Scan      *yamlScan `yaml:"scan"`
}

type yamlScan struct {
	ID      string   `yaml:"id"`
	Root    string   `yaml:"root"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// DescriptorParser parses YAML packaging descriptors
type DescriptorParser struct{}

// NewDescriptorParser creates a new YAML parser
func NewDescriptorParser() *DescriptorParser {
	return &DescriptorParser{}
}

// ParseFile parses a descriptor file. Relative roots, repositories, keyring and
// signature paths are resolved against the descriptor's directory.
func (p *DescriptorParser) ParseFile(filePath string) (*entities.Descriptor, error) {
	//nolint:gosec // G304: filePath is the descriptor chosen by the user
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &entities.DescriptorError{Path: filePath, Err: err}
	}
	return p.parseFile(filePath, data)
}

func (p *DescriptorParser) parseFile(filePath string, data []byte) (*entities.Descriptor, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, &entities.DescriptorError{Path: filePath, Err: err}
	}

	desc, err := p.parse(data, filepath.Dir(absPath))
	if err != nil {
		return nil, &entities.DescriptorError{Path: filePath, Err: err}
	}
	desc.Path = absPath
	return desc, nil
}

// Parse parses YAML bytes. Relative paths are kept as written.
func (p *DescriptorParser) Parse(data []byte) (*entities.Descriptor, error) {
	desc, err := p.parse(data, "")
	if err != nil {
		return nil, &entities.DescriptorError{Err: err}
	}
	return desc, nil
}

func (p *DescriptorParser) parse(data []byte, baseDir string) (*entities.Descriptor, error) {
	var raw yamlDescriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("descriptor is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	options, err := convertOptions(raw.Options)
	if err != nil {
		return nil, err
	}

	sources := make([]entities.DependencySource, 0, len(raw.Sources))
	for i, s := range raw.Sources {
		src, err := convertSource(s, baseDir)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		sources = append(sources, src)
	}

	repos := make([]string, 0, len(raw.Repositories))
	for _, r := range raw.Repositories {
		repos = append(repos, resolvePath(baseDir, r))
	}

	return &entities.Descriptor{
		Sources:      sources,
		Excludes:     entities.ExclusionRules(raw.Excludes...),
		Repositories: repos,
		Keyring:      resolvePath(baseDir, raw.Keyring),
		Options:      options,
	}, nil
}

func convertOptions(yo yamlOptions) (entities.ResolveOptions, error) {
	opts := entities.ResolveOptions{Parallelism: yo.Parallelism}
	if yo.Parallelism < 0 {
		return opts, fmt.Errorf("options.parallelism must not be negative, got %d", yo.Parallelism)
	}

	if yo.ArchiveTimeout != "" {
		d, err := time.ParseDuration(yo.ArchiveTimeout)
		if err != nil {
			return opts, fmt.Errorf("options.archive_timeout: %w", err)
		}
		if d <= 0 {
			return opts, fmt.Errorf("options.archive_timeout must be positive, got %s", d)
		}
		opts.ArchiveTimeout = d
	}
	return opts, nil
}

func convertSource(ys yamlSource, baseDir string) (entities.DependencySource, error) {
	switch {
	case ys.Named != "" && ys.Scan != nil:
		return entities.DependencySource{}, errors.New("a source is either named or scan, not both")

	case ys.Named != "":
		return entities.DependencySource{
			Kind:      entities.SourceNamed,
			ID:        ys.Named,
			Digest:    ys.Digest,
			Signature: resolvePath(baseDir, ys.Signature),
		}, nil

	case ys.Scan != nil:
		if ys.Digest != "" || ys.Signature != "" {
			return entities.DependencySource{}, errors.New("digest and signature apply to named sources only")
		}
		if ys.Scan.Root == "" {
			return entities.DependencySource{}, errors.New("scan.root is required")
		}
		return entities.DependencySource{
			Kind:    entities.SourceScan,
			ID:      ys.Scan.ID,
			Root:    resolvePath(baseDir, ys.Scan.Root),
			Include: ys.Scan.Include,
			Exclude: ys.Scan.Exclude,
		}, nil

	default:
		return entities.DependencySource{}, errors.New("source must declare named or scan")
	}
}

func resolvePath(baseDir, p string) string {
	if p == "" || baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
