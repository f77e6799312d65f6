package scheduler

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	runsTotal   *prometheus.CounterVec
	skippedRuns *prometheus.CounterVec

	runDuration *prometheus.HistogramVec

	leader *prometheus.GaugeVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "runs_total",
			Help:      "Total number of scheduled pass executions.",
		}, []string{"job", "result"}),
		skippedRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "skipped_runs_total",
			Help:      "Total number of ticks skipped because another instance held the lock.",
		}, []string{"job"}),
		runDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Name:      "run_duration_seconds",
			Help:      "Duration distribution for scheduled pass executions.",
			Buckets: []float64{
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10, 30, 60,
			},
		}, []string{"job", "result"}),
		leader: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "leader",
			Help:      "Whether this instance held the advisory lock on the last tick.",
		}, []string{"job"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
