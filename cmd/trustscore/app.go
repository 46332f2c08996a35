package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/euroalt/trustscore/internal/catalog"
	"github.com/euroalt/trustscore/internal/config"
	"github.com/euroalt/trustscore/internal/logging"
	"github.com/euroalt/trustscore/internal/scoring"
)

// Exit codes.
const (
	exitGeneric = 1
	exitLint    = 2
	exitInput   = 3
)

type globalFlags struct {
	configPath string
	dataDir    string
	now        string
	verbose    bool
}

// app is the resolved runtime shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	now     time.Time
	verbose func(msg string, args ...any)
}

// setup loads config and applies flag overrides. Flags win over the file.
func setup(cmd *cobra.Command, g *globalFlags) (*app, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, exitError(exitInput, "failed to load config: %v", err)
	}
	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
	}
	if g.now != "" {
		cfg.Now = g.now
	}
	now, err := cfg.ScoringTime(time.Now().UTC())
	if err != nil {
		return nil, exitError(exitInput, "invalid --now: %v", err)
	}

	stderr := log.New(cmd.ErrOrStderr(), "", 0)
	a := &app{
		cfg:    cfg,
		logger: logging.New(cmd.ErrOrStderr(), cfg.Log),
		now:    now,
		verbose: func(msg string, args ...any) {
			if g.verbose {
				stderr.Printf(msg, args...)
			}
		},
	}
	if cfg.Source != "" {
		a.verbose("Using config: %s", cfg.Source)
	}
	return a, nil
}

func (a *app) engine() *scoring.Engine {
	pol := scoring.DefaultPolicy()
	pol.EstimateUnvetted = a.cfg.Policy.EstimateUnvetted
	if len(a.cfg.Policy.AdSurveillanceTags) > 0 {
		pol.IsAdSurveillanceFunded = scoring.AnyAd(
			scoring.AdSurveillanceFromMetadata,
			scoring.AdSurveillanceByTags(a.cfg.Policy.AdSurveillanceTags...),
		)
	}
	return scoring.New(pol, a.logger)
}

func (a *app) loadDataset() (*catalog.Dataset, error) {
	a.verbose("Loading data: %s", a.cfg.DataDir)
	ds, err := catalog.Load(a.cfg.DataDir)
	if err != nil {
		return nil, exitError(exitInput, "failed to load data: %v", err)
	}
	a.verbose("Loaded %d entries from %d tables (%s)", len(ds.Entries), len(ds.Files), ds.Hash)
	return ds, nil
}

func writeOutput(cmd *cobra.Command, a *app, out, output string) error {
	if out != "" {
		a.verbose("Writing output to %s", out)
		if err := os.WriteFile(out, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), output)
	return err
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
