package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"leakloader/internal/config"
	"leakloader/internal/dest"
	"leakloader/internal/ingest"
	"leakloader/internal/source"
)

func newLoadCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	var (
		srcFlags      sourceFlags
		dstFlags      destFlags
		batchSize     int
		policy        string
		tablePolicies map[string]string
		metricsAddr   string
		manifest      string
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the CSV dumps into the destination database",
		Long: `Load streams the five CSV dumps from the source store into the
destination tables in dependency order, entities first and relationships
last. Tables that already hold rows are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.config)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			srcFlags.apply(flags, &cfg)
			dstFlags.apply(flags, &cfg)
			if flags.Changed("batch-size") {
				cfg.BatchSize = batchSize
			}
			if flags.Changed("policy") {
				cfg.Policy = policy
			}
			for name, p := range tablePolicies {
				if cfg.Policies == nil {
					cfg.Policies = make(map[string]string)
				}
				cfg.Policies[name] = p
			}
			if flags.Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if flags.Changed("manifest") {
				cfg.Manifest = manifest
			}
			return runLoad(cmd.Context(), cfg, opts.logger(), stdout)
		},
	}

	flags := cmd.Flags()
	srcFlags.register(flags)
	dstFlags.register(flags)
	flags.IntVar(&batchSize, "batch-size", config.DefaultBatchSize, "rows per insert transaction")
	flags.StringVar(&policy, "policy", "", "default batch-failure policy (skip or abort)")
	flags.StringToStringVar(&tablePolicies, "table-policy", nil, "per-table policy override (table=skip|abort)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address during the run")
	flags.StringVar(&manifest, "manifest", "", "write a JSON run manifest to this path")
	return cmd
}

func runLoad(ctx context.Context, cfg config.Config, log *slog.Logger, stdout io.Writer) error {
	policies, err := ingest.ResolvePolicies(cfg.Policy, cfg.Policies)
	if err != nil {
		return err
	}

	store, err := source.Open(ctx, cfg.SourceStoreConfig())
	if err != nil {
		return err
	}

	db, err := dest.Open(ctx, cfg.DestConfig())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	log.Info("destination open",
		"driver", string(db.Kind()),
		"credential_origin", db.CredentialOrigin(),
	)

	if cfg.MetricsAddr != "" {
		stop := serveMetrics(cfg.MetricsAddr, log)
		defer stop()
	}

	runner, err := ingest.NewRunner(ingest.Options{
		Source:       store,
		DB:           db,
		Log:          log,
		BatchSize:    cfg.BatchSize,
		Policies:     policies,
		ExpectedRows: cfg.ExpectedRows,
		Service:      cfg.Destination.Service,
	})
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(ctx)
	renderSummary(stdout, summary)
	if cfg.Manifest != "" {
		if err := summary.WriteManifest(cfg.Manifest); err != nil {
			if runErr == nil {
				runErr = err
			} else {
				log.Error("manifest write failed", "error", err)
			}
		} else {
			log.Info("manifest written", "path", cfg.Manifest)
		}
	}
	return runErr
}

// serveMetrics exposes /metrics and /healthz for the duration of the run.
// The returned function shuts the listener down.
func serveMetrics(addr string, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	log.Info("metrics listening", "addr", addr)
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func renderSummary(out io.Writer, s ingest.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Table", "Status", "Rows", "Lost Rows", "Failed Batches", "Duration"})
	for _, res := range s.Tables {
		t.AppendRow(table.Row{
			res.Table,
			string(res.Status),
			res.Rows,
			res.LostRows,
			res.FailedBatches,
			(time.Duration(res.DurationMS) * time.Millisecond).String(),
		})
	}
	t.AppendFooter(table.Row{
		"Total", "", s.TotalRows, "", "",
		s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String(),
	})
	t.Render()
}
