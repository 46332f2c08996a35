package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/euroalt/trustscore/internal/catalog"
	"github.com/euroalt/trustscore/internal/render"
	"github.com/euroalt/trustscore/internal/scoring"
	"github.com/euroalt/trustscore/internal/telemetry"
)

type scoreFlags struct {
	id     string
	format string
	out    string
	sort   string
}

func newScoreCmd(g *globalFlags) *cobra.Command {
	f := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every catalog entry, or one with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			return runScore(cmd, a, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.id, "id", "", "Score only this entry")
	flags.StringVar(&f.format, "format", "json", "Output format: json, md, or text")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	flags.StringVar(&f.sort, "sort", "catalog", "Entry order: catalog or score")

	return cmd
}

func runScore(cmd *cobra.Command, a *app, f *scoreFlags) error {
	switch f.format {
	case "json", "md", "text":
	default:
		return exitError(exitInput, "unknown format: %s", f.format)
	}
	if f.sort != "catalog" && f.sort != "score" {
		return exitError(exitInput, "unknown sort: %s", f.sort)
	}

	ds, err := a.loadDataset()
	if err != nil {
		return err
	}
	if f.id != "" {
		e, ok := ds.Entry(f.id)
		if !ok {
			return exitError(exitInput, "unknown entry: %s", f.id)
		}
		ds.Entries = []scoring.Entry{e}
	}

	a.verbose("Scoring %d entries as of %s", len(ds.Entries), a.now.Format("2006-01-02"))
	report, err := catalog.ScoreAll(ctxOf(cmd), a.engine(), ds, a.now, catalog.WithMetrics(telemetry.New(nil)))
	if err != nil {
		return err
	}
	if f.sort == "score" {
		catalog.SortByScore(report.Entries)
	}
	a.verbose("Scored %d entries, %d flags", len(report.Entries), report.FlagCount())

	var output string
	switch f.format {
	case "json":
		var v any = report
		if f.id != "" {
			v = report.Entries[0]
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		output = string(data) + "\n"
	case "md":
		output = render.Markdown(report)
	case "text":
		output = render.Text(report)
	}
	return writeOutput(cmd, a, f.out, output)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
