package main

import (
	"io"

	humanize "github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"leakloader/internal/config"
	"leakloader/internal/fetch"
	"leakloader/internal/source"
)

func newFetchCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	var (
		destDir string
		url     string
		force   bool
		keep    bool
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download and unpack the Offshore Leaks archive",
		Long: `Fetch downloads the published full-database archive and extracts the
five CSV files a load expects into the data directory. Existing files
are never overwritten unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.config)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dest") {
				cfg.Source.Dir = destDir
			}
			store, err := source.NewFilesystem(cfg.Source.Dir)
			if err != nil {
				return err
			}
			result, err := fetch.Fetch(cmd.Context(), fetch.Options{
				URL:         url,
				Dest:        store,
				Log:         opts.logger(),
				Force:       force,
				KeepArchive: keep,
			})
			if err != nil {
				return err
			}
			renderArtifacts(stdout, result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&destDir, "dest", "", "directory to extract into (defaults to the configured data dir)")
	flags.StringVar(&url, "url", fetch.DefaultURL, "archive URL")
	flags.BoolVar(&force, "force", false, "overwrite existing artifacts")
	flags.BoolVar(&keep, "keep-archive", false, "keep the downloaded zip next to the extracted files")
	return cmd
}

func renderArtifacts(out io.Writer, result fetch.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"File", "Size"})
	for _, info := range result.Artifacts {
		t.AppendRow(table.Row{info.Name, humanize.Bytes(uint64(info.Size))})
	}
	if result.Archive != nil {
		t.AppendRow(table.Row{result.Archive.Name, humanize.Bytes(uint64(result.Archive.Size))})
	}
	t.Render()
}
