package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/euroalt/trustscore/internal/catalog"
	"github.com/euroalt/trustscore/internal/server"
	"github.com/euroalt/trustscore/internal/telemetry"
)

type serveFlags struct {
	addr  string
	watch bool
}

func newServeCmd(g *globalFlags) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scores over a read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = f.addr
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Server.Watch = f.watch
			}
			return runServe(cmd, a)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.addr, "addr", ":8080", "Listen address")
	flags.BoolVar(&f.watch, "watch", false, "Reload when the data directory changes")

	return cmd
}

func runServe(cmd *cobra.Command, a *app) error {
	ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.New(nil)
	eng := a.engine()
	load := func(ctx context.Context) (*catalog.Report, error) {
		ds, err := catalog.Load(a.cfg.DataDir)
		if err != nil {
			return nil, err
		}
		// Without a configured date, score as of each reload.
		now := a.now
		if a.cfg.Now == "" {
			now = time.Now().UTC()
		}
		return catalog.ScoreAll(ctx, eng, ds, now, catalog.WithMetrics(metrics))
	}

	srv, err := server.New(ctx, load, a.logger, metrics)
	if err != nil {
		return exitError(exitInput, "failed to load data: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx, a.cfg.Server.Addr, srv.Router(), a.logger)
	})
	if a.cfg.Server.Watch {
		g.Go(func() error {
			return server.Watch(gctx, srv, a.cfg.DataDir, a.cfg.ReloadDebounce(), a.logger)
		})
	}
	return g.Wait()
}
