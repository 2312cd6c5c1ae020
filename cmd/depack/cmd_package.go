package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/depack/internal/domain-adapters/gateways"
)

func newPackageCommand(root *rootOptions) *cobra.Command {
	var (
		output       string
		manifestPath string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Resolve sources and write the merged package",
		Long: `Resolve every dependency source and write the surviving entries into a
single container. The format follows the output extension:

  .jar .aar .zip .apk   zip
  .tar                  tar
  .tar.gz .tgz          gzip-compressed tar

Timestamps and permissions are fixed, so the same inputs always produce
the same bytes.`,
		Example: `  depack package -o build/app-libs.jar
  depack package -f packaging.yaml -o dist/libs.tar.gz --manifest dist/libs.manifest.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				return errors.New("--output is required")
			}
			manifestFormat, err := gateways.ParseManifestFormat(format)
			if err != nil {
				return err
			}

			env, err := root.setup(cmd)
			if err != nil {
				return err
			}

			res, err := env.resolver.Resolve(cmd.Context(), env.descriptor.Sources, env.descriptor.Excludes)
			if err != nil {
				return err
			}

			// The manifest goes first so a failure never leaves a package without one
			if manifestPath != "" {
				if err := gateways.NewManifestWriter().WriteManifest(res.Manifest(), manifestPath, manifestFormat); err != nil {
					return err
				}
			}
			if err := gateways.NewPackager().PackageEntries(cmd.Context(), res.Entries, output); err != nil {
				if manifestPath != "" {
					err = errors.Join(err, removeIfExists(manifestPath))
				}
				return err
			}

			printSummary(cmd.ErrOrStderr(), res, false)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "package file to write (required)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "also write the manifest to this file")
	cmd.Flags().StringVar(&format, "format", string(gateways.ManifestJSON), "manifest format: json or yaml")

	return cmd
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove manifest %s: %w", path, err)
	}
	return nil
}
