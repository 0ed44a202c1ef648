package main

import (
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/keycalc/internal/repl"
)

func newKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys key...",
		Short: "Press keyboard keys on a new calculator and show the display",
		Long: "Press each argument as a keyboard key name, e.g. 7 + 3 Enter.\n" +
			"Escape clears everything and Backspace removes one character.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := repl.New(a.engine(), cmd.OutOrStdout(), a.log)
			for _, k := range args {
				r.Key(k)
			}
			r.Show()
			return nil
		},
	}
}
