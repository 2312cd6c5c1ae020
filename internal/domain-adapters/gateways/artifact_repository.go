package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ochairo/depack/internal/domain/entities"
)

// defaultExtensions are tried in order when a coordinate does not name one
var defaultExtensions = []string{"aar", "jar"}

// Coordinate identifies a named artifact: group:name:version[@ext]
type Coordinate struct {
	Group     string
	Name      string
	Version   string
	Extension string
}

// ParseCoordinate parses a group:name:version[@ext] string
func ParseCoordinate(s string) (Coordinate, bool) {
	var ext string
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s, ext = s[:i], s[i+1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Coordinate{}, false
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, `/\`) {
			return Coordinate{}, false
		}
	}
	return Coordinate{Group: parts[0], Name: parts[1], Version: parts[2], Extension: ext}, true
}

func (c Coordinate) String() string {
	s := c.Group + ":" + c.Name + ":" + c.Version
	if c.Extension != "" {
		s += "@" + c.Extension
	}
	return s
}

// ArtifactRepository resolves named artifacts against local Maven-layout repositories
type ArtifactRepository struct {
	repositories []string
	baseDir      string
}

// NewArtifactRepository creates a resolver over the given repository roots.
// baseDir anchors named artifacts given as relative file paths.
func NewArtifactRepository(repositories []string, baseDir string) *ArtifactRepository {
	return &ArtifactRepository{
		repositories: repositories,
		baseDir:      baseDir,
	}
}

// ResolveArtifact returns the path of the single archive behind a named artifact.
// An identifier that is not a coordinate is treated as a file path.
func (r *ArtifactRepository) ResolveArtifact(ctx context.Context, source entities.DependencySource) (string, error) {
	id := source.Identifier()
	if err := ctx.Err(); err != nil {
		return "", &entities.SourceResolutionError{Source: id, Err: err}
	}

	coord, ok := ParseCoordinate(id)
	if !ok {
		return r.resolveFile(id)
	}

	if len(r.repositories) == 0 {
		return "", &entities.SourceResolutionError{
			Source: id,
			Err:    fmt.Errorf("%w: no repositories configured", entities.ErrArtifactNotFound),
		}
	}

	for _, repo := range r.repositories {
		path, err := r.lookup(repo, coord)
		if err != nil {
			return "", &entities.SourceResolutionError{Source: id, Err: err}
		}
		if path != "" {
			return path, nil
		}
	}

	return "", &entities.SourceResolutionError{
		Source: id,
		Err:    fmt.Errorf("%w in %s", entities.ErrArtifactNotFound, strings.Join(r.repositories, ", ")),
	}
}

func (r *ArtifactRepository) resolveFile(id string) (string, error) {
	path := id
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", &entities.SourceResolutionError{
			Source: id,
			Err:    fmt.Errorf("%w: %s", entities.ErrArtifactNotFound, path),
		}
	}
	return path, nil
}

// lookup returns "" when the repository does not hold the artifact
func (r *ArtifactRepository) lookup(repo string, coord Coordinate) (string, error) {
	moduleDir := filepath.Join(append([]string{repo}, strings.Split(coord.Group, ".")...)...)
	moduleDir = filepath.Join(moduleDir, coord.Name)

	version := coord.Version
	if !isDir(filepath.Join(moduleDir, version)) {
		matched, err := highestMatchingVersion(moduleDir, version)
		if err != nil {
			return "", err
		}
		if matched == "" {
			return "", nil
		}
		version = matched
	}

	extensions := defaultExtensions
	if coord.Extension != "" {
		extensions = []string{coord.Extension}
	}
	for _, ext := range extensions {
		candidate := filepath.Join(moduleDir, version, fmt.Sprintf("%s-%s.%s", coord.Name, version, ext))
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", nil
}

// highestMatchingVersion treats version as a semver constraint and picks the highest
// version directory under moduleDir that satisfies it
func highestMatchingVersion(moduleDir, version string) (string, error) {
	constraint, err := semver.NewConstraint(version)
	if err != nil {
		// Not a constraint and not a published version directory
		return "", nil
	}

	dirEntries, err := os.ReadDir(moduleDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to list versions in %s: %w", moduleDir, err)
	}

	var best *semver.Version
	var bestDir string
	for _, entry := range dirEntries {
		if !entry.IsDir() {
			continue
		}
		v, err := semver.NewVersion(entry.Name())
		if err != nil {
			continue
		}
		if !constraint.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestDir = entry.Name()
		}
	}
	return bestDir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
