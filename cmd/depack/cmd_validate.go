package main

import (
	"github.com/spf13/cobra"

	"github.com/ochairo/depack/internal/domain/services"
)

func newValidateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the packaging descriptor",
		Long: `Check the descriptor against the packaging schema and compile every glob.
No directory is walked and no archive is opened.`,
		Example: `  depack validate
  depack validate -f app/packaging.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			desc, err := root.loadDescriptor(cmd)
			if err != nil {
				return err
			}
			if err := services.ValidatePatterns(desc.Sources, desc.Excludes); err != nil {
				return err
			}

			_, _ = successColor.Fprintf(cmd.OutOrStdout(), "✓ %s is valid: %d sources, %d exclusion rules\n",
				desc.Path, len(desc.Sources), len(desc.Excludes))
			return nil
		},
	}
}
