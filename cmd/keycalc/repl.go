package main

import (
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/keycalc/internal/repl"
)

func newReplCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Run an interactive calculator",
		Long: "Each line is typed one key per character. An empty line or = commits,\n" +
			"c removes one character, ac clears everything, and :q quits.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return repl.Run(a.cfg.Repl, a.engine(), a.log)
		},
	}
	cmd.Flags().String("prompt", "> ", "prompt")
	cmd.Flags().String("history-file", "", "file to keep line history in")
	return cmd
}
