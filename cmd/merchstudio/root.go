package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	Format string // "json" | "text"
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "merchstudio",
		Short: "Merchandising studio for search query rules",
		Long: `merchstudio lets merchandisers pin and hide results for a query and saves the
result as a query rule in the search engine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newCompileCommand(opts))
	cmd.AddCommand(newPreviewCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}
