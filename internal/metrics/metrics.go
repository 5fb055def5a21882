package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProjectionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "furrow_projection_runs_total",
			Help: "Total number of projection runs by outcome",
		},
		[]string{"status"},
	)

	ProjectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "furrow_projection_duration_seconds",
			Help:    "Duration of projection runs in seconds, input fetch included",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"scenario"},
	)

	PolicyAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "furrow_policy_alerts_total",
			Help: "Periods whose ending cash fell below the policy minimum",
		},
		[]string{"scenario"},
	)

	MemoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "furrow_memo_lookups_total",
			Help: "Projection memo cache lookups by result",
		},
		[]string{"result"},
	)

	FinalBankDebt = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "furrow_final_bank_debt",
			Help: "Ending bank debt of the last simulated period, local currency",
		},
		[]string{"organization", "scenario"},
	)
)

// Run outcomes used as the status label.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusCached = "cached"
)

// WriteFile dumps the default registry in the text exposition format.
func WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
