package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/keycalc"
	"github.com/zephyrtronium/keycalc/internal/config"
	"github.com/zephyrtronium/keycalc/internal/logging"
)

// app carries the settings loaded before any subcommand runs.
type app struct {
	path    string
	cfg     *config.Config
	log     *logrus.Logger
	cleanup func()
}

func newRootCmd() *cobra.Command {
	a := &app{cleanup: func() {}}
	rootCmd := &cobra.Command{
		Use:           "keycalc",
		Short:         "A keystroke-driven four-function calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.cleanup()
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.path, "config", "", "config file (default keycalc.yaml in ., $HOME/.keycalc, /etc/keycalc)")
	f.String("log-level", "info", "log level")
	f.String("log-format", "text", "log format: text or json")
	f.Uint("prec", keycalc.DefaultPrec, "precision of calculations in bits")
	f.Int("places", keycalc.DefaultPlaces, "decimal places results are rounded to")

	rootCmd.AddCommand(
		newEvalCmd(a),
		newKeysCmd(a),
		newReplCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.path, cmd.Flags())
	if err != nil {
		return err
	}
	log, cleanup, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.cleanup = cfg, log, cleanup
	a.log.WithField("config", cfg.File()).Debug("loaded config")
	return nil
}

// engine creates an engine using the configured evaluation options.
func (a *app) engine() *keycalc.Engine {
	return keycalc.NewEngine(a.cfg.Eval.Options()...)
}
