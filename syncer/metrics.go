package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomePullFailed  = "pull_failed"
	outcomeMergeFailed = "merge_failed"
	outcomePushFailed  = "push_failed"
	outcomeSkipped     = "skipped"
)

var (
	cycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_cycles_total",
		Help: "Sync cycles by outcome.",
	}, []string{"outcome"})
	mergedRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sync_merged_submissions",
		Help: "Submissions in the snapshot pushed by the last successful cycle.",
	})
	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sync_cycle_duration_seconds",
		Help:    "Duration of sync cycles that reached the remote.",
		Buckets: prometheus.DefBuckets,
	})
)
