package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/euroalt/trustscore/internal/lint"
	"github.com/euroalt/trustscore/internal/render"
)

type lintFlags struct {
	format string
	strict bool
}

func newLintCmd(g *globalFlags) *cobra.Command {
	f := &lintFlags{}

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Validate the editorial data tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			return runLint(cmd, a, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", "text", "Output format: text or json")
	flags.BoolVar(&f.strict, "strict", false, "Treat warnings as errors")

	return cmd
}

func runLint(cmd *cobra.Command, a *app, f *lintFlags) error {
	if f.format != "text" && f.format != "json" {
		return exitError(exitInput, "unknown format: %s", f.format)
	}
	ds, err := a.loadDataset()
	if err != nil {
		return err
	}

	findings := lint.Check(ds, a.now)
	errs, warns := lint.Count(findings)
	a.verbose("Lint: %d errors, %d warnings", errs, warns)

	var output string
	if f.format == "json" {
		if findings == nil {
			findings = []lint.Finding{}
		}
		data, err := json.MarshalIndent(findings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		output = string(data) + "\n"
	} else {
		output = render.Findings(findings)
	}
	if err := writeOutput(cmd, a, "", output); err != nil {
		return err
	}

	if errs > 0 || (f.strict && warns > 0) {
		return exitError(exitLint, "lint failed: %d errors, %d warnings", errs, warns)
	}
	return nil
}
