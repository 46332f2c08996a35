package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "trustscore",
		Short:         "Compute auditable trust scores for a catalog of European software alternatives",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/trustscore/config.toml)")
	pf.StringVar(&g.dataDir, "data", "", "Data directory with the editorial YAML tables")
	pf.StringVar(&g.now, "now", "", "Score as of this date (YYYY-MM-DD or RFC 3339)")
	pf.BoolVar(&g.verbose, "verbose", false, "Print processing steps to stderr")

	root.AddCommand(newScoreCmd(g))
	root.AddCommand(newExplainCmd(g))
	root.AddCommand(newLintCmd(g))
	root.AddCommand(newServeCmd(g))

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
