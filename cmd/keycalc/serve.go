package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/keycalc/internal/config"
	"github.com/zephyrtronium/keycalc/internal/logging"
	"github.com/zephyrtronium/keycalc/internal/server"
	"github.com/zephyrtronium/keycalc/internal/session"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve calculator sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("host", "", "host to listen on")
	cmd.Flags().Int("port", 8080, "port to listen on")
	cmd.Flags().String("mode", "release", "server mode: debug, release, or test")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	store := session.NewStore(cfg.Session.TTL, a.log, cfg.Eval.Options()...)
	go store.Run(ctx, cfg.Session.Sweep)

	if cfg.Watch(func(c *config.Config, err error) {
		if err != nil {
			a.log.WithError(err).Warn("config reload failed")
			return
		}
		if err := logging.SetLevel(a.log, c.Log.Level); err != nil {
			a.log.WithError(err).Warn("config reload failed")
			return
		}
		a.log.WithField("level", c.Log.Level).Info("config reloaded")
	}) {
		a.log.WithField("config", cfg.File()).Info("watching config")
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	return server.New(store, a.log, cfg.Server.Mode).Run(ctx, addr)
}
