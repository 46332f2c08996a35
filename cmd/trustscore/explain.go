package main

import (
	"github.com/spf13/cobra"

	"github.com/euroalt/trustscore/internal/catalog"
	"github.com/euroalt/trustscore/internal/render"
)

func newExplainCmd(g *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "explain <entry-id>",
		Short: "Show why an entry got its score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			return runExplain(cmd, a, args[0], out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file path (default: stdout)")

	return cmd
}

func runExplain(cmd *cobra.Command, a *app, id, out string) error {
	ds, err := a.loadDataset()
	if err != nil {
		return err
	}
	e, ok := ds.Entry(id)
	if !ok {
		return exitError(exitInput, "unknown entry: %s", id)
	}
	s := catalog.ScoreOne(a.engine(), ds, e, a.now)
	return writeOutput(cmd, a, out, render.Explain(s))
}
