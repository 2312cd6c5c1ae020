package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List candidate archives in declaration order",
		Long: `Expand every dependency source and print the candidate archives in the
order they take precedence. No archive is opened.`,
		Example: `  depack list
  depack list -f app/packaging.yaml --repository ~/.m2/repository`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := root.setup(cmd)
			if err != nil {
				return err
			}

			archives, err := env.resolver.ListArchives(cmd.Context(), env.descriptor.Sources)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "#\tSOURCE\tARCHIVE")
			for _, a := range archives {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", a.Index, a.SourceID, a.Path)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			_, _ = dimColor.Fprintf(cmd.ErrOrStderr(), "%d archives from %d sources\n", len(archives), len(env.descriptor.Sources))
			return nil
		},
	}
}
