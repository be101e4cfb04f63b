package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	config string
	debug  bool
	stderr io.Writer
}

// logger builds the run logger. Log output always goes to stderr so tables
// and manifests on stdout stay machine-consumable.
func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

// NewRootCommand builds the CLI. Output streams are injected so tests can
// capture them.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stderr: stderr}
	root := &cobra.Command{
		Use:   "leakloader",
		Short: "Bulk loader for the ICIJ Offshore Leaks Database dumps",
		Long: `leakloader ingests the ICIJ Offshore Leaks CSV dumps (Panama Papers,
Paradise Papers, Bahamas Leaks, Pandora Papers) into a relational
destination: entities, officers, intermediaries, addresses, and the
relationships connecting them.

Loads are idempotent: a table that already holds rows is skipped, so an
interrupted run can simply be re-executed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newLoadCommand(opts, stdout))
	root.AddCommand(newStatusCommand(opts, stdout))
	root.AddCommand(newFetchCommand(opts, stdout))
	return root
}
