package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"leakloader/internal/config"
	"leakloader/internal/dest"
	"leakloader/internal/ingest"
	"leakloader/pkg/oldb"
)

func newStatusCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	var dstFlags destFlags
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report per-table row counts and what the next load would do",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.config)
			if err != nil {
				return err
			}
			dstFlags.apply(cmd.Flags(), &cfg)
			return runStatus(cmd.Context(), cfg, opts.logger(), stdout)
		},
	}
	dstFlags.register(cmd.Flags())
	return cmd
}

func runStatus(ctx context.Context, cfg config.Config, log *slog.Logger, stdout io.Writer) error {
	db, err := dest.Open(ctx, cfg.DestConfig())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	log.Info("destination open",
		"driver", string(db.Kind()),
		"credential_origin", db.CredentialOrigin(),
	)

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	t := table.NewWriter()
	t.SetOutputMirror(stdout)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Table", "Rows", "Next Run"})
	var total int64
	for _, tbl := range oldb.Tables {
		n, err := ingest.CountRows(ctx, conn, tbl)
		if err != nil {
			return err
		}
		verdict := "load"
		if n > 0 {
			verdict = "skip (already loaded)"
		}
		total += n
		t.AppendRow(table.Row{tbl.Name, n, verdict})
	}
	t.AppendFooter(table.Row{"Total", total, ""})
	t.Render()
	return nil
}
