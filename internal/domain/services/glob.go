package services

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ochairo/depack/internal/domain/entities"
)

// PatternSet is a validated, ordered list of glob patterns.
// "*" matches within one path segment, "**" matches across segments.
type PatternSet struct {
	patterns []string
}

// CompilePatterns validates patterns eagerly and returns a GlobSyntaxError for the first bad one.
// source is the identifier reported in the error (empty for global exclusion rules).
func CompilePatterns(source string, patterns []string) (*PatternSet, error) {
	compiled := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" || !doublestar.ValidatePattern(p) {
			return nil, &entities.GlobSyntaxError{
				Source:  source,
				Pattern: p,
				Err:     doublestar.ErrBadPattern,
			}
		}
		compiled = append(compiled, p)
	}
	return &PatternSet{patterns: compiled}, nil
}

// Match reports whether the slash-separated path matches any pattern
func (s *PatternSet) Match(name string) bool {
	if s == nil {
		return false
	}
	name = NormalizeEntryPath(name)
	for _, p := range s.patterns {
		// Patterns were validated in CompilePatterns, so Match cannot fail here
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Len returns the number of patterns
func (s *PatternSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// Patterns returns a copy of the patterns
func (s *PatternSet) Patterns() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.patterns...)
}

// ScanFilter decides which files beneath a scan root become candidate archives
type ScanFilter struct {
	include *PatternSet
	exclude *PatternSet
}

// NewScanFilter compiles the include and exclude globs of a directory-scan source
func NewScanFilter(source entities.DependencySource) (*ScanFilter, error) {
	include, err := CompilePatterns(source.Identifier(), source.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := CompilePatterns(source.Identifier(), source.Exclude)
	if err != nil {
		return nil, err
	}
	return &ScanFilter{include: include, exclude: exclude}, nil
}

// Included reports whether relPath matches an include glob and no exclude glob.
// Exclude always takes precedence.
func (f *ScanFilter) Included(relPath string) bool {
	if f.exclude.Match(relPath) {
		return false
	}
	return f.include.Match(relPath)
}

// ValidatePatterns checks every glob in sources and rules before any work starts.
// Sources are checked in declaration order, then the global rules.
func ValidatePatterns(sources []entities.DependencySource, rules []entities.ExclusionRule) error {
	for _, src := range sources {
		if src.Kind != entities.SourceScan {
			continue
		}
		if _, err := NewScanFilter(src); err != nil {
			return err
		}
	}
	_, err := CompileExclusionRules(rules)
	return err
}

// CompileExclusionRules compiles the global exclusion rules
func CompileExclusionRules(rules []entities.ExclusionRule) (*PatternSet, error) {
	patterns := make([]string, 0, len(rules))
	for _, r := range rules {
		patterns = append(patterns, r.Pattern)
	}
	return CompilePatterns("", patterns)
}

// NormalizeEntryPath turns an archive entry name into a clean slash-separated relative path
func NormalizeEntryPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return ""
	}
	return path.Clean(name)
}

// IsSafeEntryPath reports whether a normalized entry path stays inside the archive root
func IsSafeEntryPath(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.HasPrefix(name, "../")
}

// describePatterns is used in log output
func describePatterns(s *PatternSet) string {
	return fmt.Sprintf("%v", s.Patterns())
}
