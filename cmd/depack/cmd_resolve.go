package main

import (
	"github.com/spf13/cobra"

	"github.com/ochairo/depack/internal/domain-adapters/gateways"
)

func newResolveCommand(root *rootOptions) *cobra.Command {
	var (
		output         string
		format         string
		showCollisions bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve sources and write the packaging manifest",
		Long: `Resolve every dependency source in the descriptor and write the ordered
manifest of packaged entries. Nothing is written when resolution fails.`,
		Example: `  depack resolve
  depack resolve -f app/packaging.yaml -o build/manifest.json
  depack resolve --format yaml --show-collisions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			writer := gateways.NewManifestWriter()
			if output == "-" {
				data, err := writer.Encode(res.Manifest(), manifestFormat)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			} else if err := writer.WriteManifest(res.Manifest(), output, manifestFormat); err != nil {
				return err
			}

			printSummary(cmd.ErrOrStderr(), res, showCollisions)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", `manifest file ("-" for stdout)`)
	cmd.Flags().StringVar(&format, "format", string(gateways.ManifestJSON), "manifest format: json or yaml")
	cmd.Flags().BoolVar(&showCollisions, "show-collisions", false, "list every discarded duplicate entry")

	return cmd
}
