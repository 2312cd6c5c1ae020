package entities

import (
	"fmt"
	"time"
)

// SourceKind distinguishes named artifacts from directory scans
type SourceKind string

// Supported dependency source kinds
const (
	SourceNamed SourceKind = "named"
	SourceScan  SourceKind = "scan"
)

// Default resolution options
const (
	DefaultArchiveTimeout = 30 * time.Second
)

// Descriptor represents a packaging descriptor loaded from YAML
type Descriptor struct {
	Path         string // File the descriptor was loaded from (empty when parsed from bytes)
	Sources      []DependencySource
	Excludes     []ExclusionRule
	Repositories []string
	Keyring      string
	Options      ResolveOptions
}

// DependencySource is either a named artifact or a directory scan
type DependencySource struct {
	Kind SourceKind
	ID   string // Coordinate for named artifacts, optional label for scans

	// Directory scan
	Root    string
	Include []string
	Exclude []string

	// Named artifact integrity (optional)
	Digest    string
	Signature string
}

// Identifier returns the identifier used to attribute entries to this source
func (s DependencySource) Identifier() string {
	if s.ID != "" {
		return s.ID
	}
	if s.Kind == SourceScan {
		return "scan:" + s.Root
	}
	return ""
}

// WithIdentifiers returns a copy of sources where every unnamed scan carries its identifier
// as ID. Unnamed scans that share a root are told apart as "scan[<index>]:<root>", index being
// the position in sources, so entries are never attributed to an ambiguous source.
func WithIdentifiers(sources []DependencySource) []DependencySource {
	roots := make(map[string]int)
	for _, s := range sources {
		if s.Kind == SourceScan && s.ID == "" {
			roots[s.Root]++
		}
	}

	out := make([]DependencySource, len(sources))
	for i, s := range sources {
		if s.Kind == SourceScan && s.ID == "" {
			if roots[s.Root] > 1 {
				s.ID = fmt.Sprintf("scan[%d]:%s", i, s.Root)
			} else {
				s.ID = s.Identifier()
			}
		}
		out[i] = s
	}
	return out
}

// ExclusionRule is a glob applied to entry paths inside archives
type ExclusionRule struct {
	Pattern string
}

// ExclusionRules builds rules from plain patterns
func ExclusionRules(patterns ...string) []ExclusionRule {
	rules := make([]ExclusionRule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, ExclusionRule{Pattern: p})
	}
	return rules
}

// ResolveOptions tunes a resolution pass
type ResolveOptions struct {
	ArchiveTimeout time.Duration
	Parallelism    int
}
