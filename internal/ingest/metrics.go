package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leakloader_rows_written_total",
		Help: "Rows committed to the destination, by table.",
	}, []string{"table"})

	rowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leakloader_rows_skipped_total",
		Help: "Rows lost to failed batches under the skip policy, by table.",
	}, []string{"table"})

	batchesCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leakloader_batches_committed_total",
		Help: "Batches committed to the destination, by table.",
	}, []string{"table"})

	batchesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leakloader_batches_failed_total",
		Help: "Batches rolled back after a write failure, by table.",
	}, []string{"table"})

	tablesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leakloader_tables_skipped_total",
		Help: "Table loads skipped because the destination already holds rows.",
	}, []string{"table"})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leakloader_batch_commit_seconds",
		Help:    "Wall time to insert and commit one batch.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table"})
)
