package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ochairo/depack/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/depack/internal/domain-orchestrators"
	"github.com/ochairo/depack/internal/domain/entities"
	"github.com/ochairo/depack/internal/domain/interfaces"
	"github.com/ochairo/depack/internal/external-adapters/logging"
	"github.com/ochairo/depack/internal/external-adapters/yaml"
)

const defaultDescriptor = "packaging.yaml"

// rootOptions holds the global flags shared by every subcommand
type rootOptions struct {
	descriptor     string
	log            logging.Options
	archiveTimeout time.Duration
	parallelism    int
	repositories   []string
	keyring        string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "depack",
		Short: "Resolve archive dependencies into a conflict-free package",
		Long: `depack expands dependency sources (named artifacts and directory scans),
reads every candidate archive and merges their entries into one ordered,
conflict-free set. When two archives provide the same path, the archive
declared first wins. Global exclusion rules drop entries such as license
files before the merge.

A scan source with no include globs matches nothing.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.descriptor, "file", "f", defaultDescriptor, "packaging descriptor")
	flags.DurationVar(&opts.archiveTimeout, "archive-timeout", 0,
		fmt.Sprintf("timeout per archive read (default %s, overrides the descriptor)", entities.DefaultArchiveTimeout))
	flags.IntVar(&opts.parallelism, "parallelism", 0, "concurrent archive reads (default: number of CPUs, overrides the descriptor)")
	flags.StringArrayVar(&opts.repositories, "repository", nil, "artifact repository root, repeatable (replaces the descriptor's list)")
	flags.StringVar(&opts.keyring, "keyring", "", "OpenPGP keyring for signature checks (overrides the descriptor)")
	logging.RegisterFlags(flags, &opts.log)

	cmd.AddCommand(
		newResolveCommand(opts),
		newPackageCommand(opts),
		newListCommand(opts),
		newValidateCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

// environment is everything a subcommand needs after the descriptor is loaded
type environment struct {
	descriptor *entities.Descriptor
	resolver   *orchestrators.PackagingResolver
	logger     interfaces.Logger
}

func (o *rootOptions) newLogger(cmd *cobra.Command) (interfaces.Logger, error) {
	logger, err := logging.New(cmd.ErrOrStderr(), o.log)
	if err != nil {
		return nil, err
	}
	return logger, nil
}

func (o *rootOptions) loadDescriptor(cmd *cobra.Command) (*entities.Descriptor, error) {
	desc, err := yaml.NewDescriptorRepository().LoadDescriptor(cmd.Context(), o.descriptor)
	if err != nil {
		return nil, err
	}
	o.applyOverrides(cmd, desc)
	return desc, nil
}

// applyOverrides lets explicitly set flags win over descriptor values
func (o *rootOptions) applyOverrides(cmd *cobra.Command, desc *entities.Descriptor) {
	flags := cmd.Flags()
	if flags.Changed("archive-timeout") {
		desc.Options.ArchiveTimeout = o.archiveTimeout
	}
	if flags.Changed("parallelism") {
		desc.Options.Parallelism = o.parallelism
	}
	if flags.Changed("repository") {
		desc.Repositories = o.repositories
	}
	if flags.Changed("keyring") {
		desc.Keyring = o.keyring
	}
}

func (o *rootOptions) setup(cmd *cobra.Command) (*environment, error) {
	logger, err := o.newLogger(cmd)
	if err != nil {
		return nil, err
	}

	desc, err := o.loadDescriptor(cmd)
	if err != nil {
		return nil, err
	}
	logger.Debug("descriptor loaded",
		interfaces.F("path", desc.Path),
		interfaces.F("sources", len(desc.Sources)),
		interfaces.F("repositories", len(desc.Repositories)))

	verifier, err := gateways.NewIntegrityVerifier(desc.Keyring)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyring: %w", err)
	}

	resolver := orchestrators.NewPackagingResolver(
		gateways.NewSourceScanner(),
		gateways.NewArtifactRepository(desc.Repositories, filepath.Dir(desc.Path)),
		gateways.NewArchiveReader(),
		verifier,
		orchestrators.PackagingResolverConfig{
			Options: desc.Options,
			Logger:  logger,
		},
	)

	return &environment{descriptor: desc, resolver: resolver, logger: logger}, nil
}
