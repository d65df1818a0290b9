package evaluation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evaluation_submissions",
		Help: "Number of judge submissions currently held.",
	})
	candidatesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evaluation_candidates",
		Help: "Number of distinct candidate identities in the last aggregation.",
	})
	persistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluation_persist_failures_total",
		Help: "Snapshot writes that failed, by collection.",
	}, []string{"collection"})
)
