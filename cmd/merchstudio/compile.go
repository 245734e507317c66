package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
)

func newCompileCommand(rootOpts *rootOptions) *cobra.Command {
	var flags overrideFlags

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile pins and hides into a query rule",
		Long: `Compile pins and hides for a query into the engine's rule format and print it.

Pins are given as objectID=position (zero-based); positions are renumbered densely
in ascending order. A pin without a position goes after the others.`,
		Example: `  merchstudio compile --query laptop --pin C=0 --pin D=1 --hide B`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := flags.store()
			if err != nil {
				return err
			}
			if store.IsEmpty() {
				return fmt.Errorf("nothing to compile: give at least one --pin or --hide")
			}
			r := rule.Compile(flags.Query, store)

			var out []byte
			if rootOpts.Format == "json" {
				out, err = json.Marshal(r)
			} else {
				out, err = json.MarshalIndent(r, "", "  ")
			}
			if err != nil {
				return fmt.Errorf("encode rule: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.Query, "query", "q", "", "query the rule fires for")
	cmd.Flags().StringArrayVar(&flags.Pins, "pin", nil, "pin objectID=position (repeatable)")
	cmd.Flags().StringArrayVar(&flags.Hides, "hide", nil, "hide objectID (repeatable)")
	return cmd
}
