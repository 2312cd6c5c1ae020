// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ochairo/depack/internal/domain/entities"
	"github.com/ochairo/depack/internal/domain/interfaces"
	"github.com/ochairo/depack/internal/domain/interfaces/gateways"
	"github.com/ochairo/depack/internal/domain/services"
)

// PackagingResolver turns dependency sources and exclusion rules into a conflict-free,
// ordered set of packaged entries
type PackagingResolver struct {
	scanner  gateways.SourceScanner
	resolver gateways.ArtifactResolver
	reader   gateways.ArchiveReader
	verifier gateways.IntegrityVerifier
	logger   interfaces.Logger

	archiveTimeout time.Duration
	parallelism    int
}

// PackagingResolverConfig holds configuration for the resolver
type PackagingResolverConfig struct {
	Options entities.ResolveOptions
	Logger  interfaces.Logger
}

// NewPackagingResolver creates a new packaging resolver.
// verifier may be nil when no named source pins a digest or signature.
func NewPackagingResolver(
	scanner gateways.SourceScanner,
	resolver gateways.ArtifactResolver,
	reader gateways.ArchiveReader,
	verifier gateways.IntegrityVerifier,
	config PackagingResolverConfig,
) *PackagingResolver {
	timeout := config.Options.ArchiveTimeout
	if timeout <= 0 {
		timeout = entities.DefaultArchiveTimeout
	}

	parallelism := config.Options.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	logger := config.Logger
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &PackagingResolver{
		scanner:        scanner,
		resolver:       resolver,
		reader:         reader,
		verifier:       verifier,
		logger:         logger,
		archiveTimeout: timeout,
		parallelism:    parallelism,
	}
}

// Resolve expands the sources, reads every candidate archive and merges the entries.
// Globs are validated before any directory is walked or archive opened. Archives are read
// in parallel but merged in declaration order, so the result does not depend on parallelism.
func (r *PackagingResolver) Resolve(ctx context.Context, sources []entities.DependencySource, rules []entities.ExclusionRule) (*entities.Resolution, error) {
	sources = entities.WithIdentifiers(sources)
	if err := services.ValidatePatterns(sources, rules); err != nil {
		return nil, err
	}

	merger, err := services.NewMergeService(rules, r.logger)
	if err != nil {
		return nil, err
	}

	r.logger.Info("resolving dependency sources",
		interfaces.F("sources", len(sources)),
		interfaces.F("exclusion_rules", len(rules)))

	archives, err := r.expandSources(ctx, sources)
	if err != nil {
		return nil, err
	}

	contents, err := r.readArchives(ctx, archives)
	if err != nil {
		return nil, err
	}

	resolution := merger.Merge(contents)

	r.logger.Info("resolution complete",
		interfaces.F("archives", len(resolution.Archives)),
		interfaces.F("entries", len(resolution.Entries)),
		interfaces.F("collisions", len(resolution.Collisions)),
		interfaces.F("excluded", resolution.Excluded))

	return resolution, nil
}

// ListArchives returns the candidate archives in declaration order without opening any of them
func (r *PackagingResolver) ListArchives(ctx context.Context, sources []entities.DependencySource) ([]entities.Archive, error) {
	sources = entities.WithIdentifiers(sources)
	if err := services.ValidatePatterns(sources, nil); err != nil {
		return nil, err
	}
	return r.expandSources(ctx, sources)
}

// expandSources runs serially so archive indexes follow declaration order
func (r *PackagingResolver) expandSources(ctx context.Context, sources []entities.DependencySource) ([]entities.Archive, error) {
	archives := make([]entities.Archive, 0, len(sources))

	for _, src := range sources {
		id := src.Identifier()

		var paths []string
		switch src.Kind {
		case entities.SourceScan:
			scanned, err := r.scanner.Scan(ctx, src)
			if err != nil {
				return nil, asSourceError(id, err)
			}
			if len(scanned) == 0 {
				r.logger.Warn("source matched no archives", interfaces.F("source", id))
			}
			paths = scanned

		case entities.SourceNamed:
			path, err := r.resolver.ResolveArtifact(ctx, src)
			if err != nil {
				return nil, asSourceError(id, err)
			}
			if err := r.verify(ctx, src, path); err != nil {
				return nil, err
			}
			paths = []string{path}

		default:
			return nil, &entities.SourceResolutionError{
				Source: id,
				Err:    fmt.Errorf("unknown source kind %q", src.Kind),
			}
		}

		for _, p := range paths {
			r.logger.Debug("candidate archive", interfaces.F("source", id), interfaces.F("archive", p))
			archives = append(archives, entities.Archive{
				SourceID: id,
				Path:     p,
				Index:    len(archives),
			})
		}
	}

	return archives, nil
}

func (r *PackagingResolver) verify(ctx context.Context, src entities.DependencySource, path string) error {
	if src.Digest == "" && src.Signature == "" {
		return nil
	}
	if r.verifier == nil {
		return &entities.ArchiveReadError{
			Source:  src.Identifier(),
			Archive: path,
			Err:     errors.New("integrity pins declared but no verifier configured"),
		}
	}
	if err := r.verifier.VerifyArtifact(ctx, src, path); err != nil {
		return &entities.ArchiveReadError{Source: src.Identifier(), Archive: path, Err: err}
	}
	r.logger.Debug("artifact integrity verified", interfaces.F("source", src.Identifier()))
	return nil
}

// readArchives reads archives concurrently, storing results by declaration index.
// The first failure cancels the remaining reads; the earliest-declared real failure is reported.
func (r *PackagingResolver) readArchives(ctx context.Context, archives []entities.Archive) ([]entities.ArchiveContents, error) {
	contents := make([]entities.ArchiveContents, len(archives))
	errs := make([]error, len(archives))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, archive := range archives {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			entries, err := r.readArchive(gctx, archive)
			if err != nil {
				errs[i] = err
				return err
			}
			contents[i] = entities.ArchiveContents{Archive: archive, Entries: entries}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("resolution cancelled: %w", ctxErr)
		}
		return nil, earliestFailure(errs, err)
	}
	return contents, nil
}

type readResult struct {
	entries []entities.ArchiveEntry
	err     error
}

// readArchive bounds a single read by the archive timeout, even if the reader ignores ctx
func (r *PackagingResolver) readArchive(ctx context.Context, archive entities.Archive) ([]entities.ArchiveEntry, error) {
	actx, cancel := context.WithTimeout(ctx, r.archiveTimeout)
	defer cancel()

	done := make(chan readResult, 1)
	go func() {
		entries, err := r.reader.ReadArchive(actx, archive.Path)
		done <- readResult{entries: entries, err: err}
	}()

	var res readResult
	select {
	case res = <-done:
	case <-actx.Done():
		res.err = actx.Err()
	}

	if res.err != nil {
		err := res.err
		if errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w after %s", entities.ErrArchiveTimeout, r.archiveTimeout)
		}
		return nil, &entities.ArchiveReadError{Source: archive.SourceID, Archive: archive.Path, Err: err}
	}

	r.logger.Debug("archive read",
		interfaces.F("archive", archive.Path),
		interfaces.F("entries", len(res.entries)))
	return res.entries, nil
}

func earliestFailure(errs []error, fallback error) error {
	for _, err := range errs {
		if err == nil || isCancellation(err) {
			continue
		}
		return err
	}
	return fallback
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// asSourceError keeps typed packaging errors and attributes anything else to the source
func asSourceError(source string, err error) error {
	var (
		srcErr  *entities.SourceResolutionError
		globErr *entities.GlobSyntaxError
		readErr *entities.ArchiveReadError
	)
	if errors.As(err, &srcErr) || errors.As(err, &globErr) || errors.As(err, &readErr) {
		return err
	}
	return &entities.SourceResolutionError{Source: source, Err: err}
}
