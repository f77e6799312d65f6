package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type vamMetrics struct {
	unitsScored      prometheus.Counter
	tranchesReleased prometheus.Counter
	scores           prometheus.Histogram
}

var vamMetricsSingleton = sync.OnceValue(func() *vamMetrics {
	return &vamMetrics{
		unitsScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "autonomy",
			Name:      "units_scored_total",
			Help:      "Total number of unit scorings performed.",
		}),
		tranchesReleased: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "autonomy",
			Name:      "tranches_released_total",
			Help:      "Total number of tranches released by the scoring engine.",
		}),
		scores: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "autonomy",
			Name:      "score",
			Help:      "Distribution of computed autonomy scores.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
})

func getVAMMetrics() *vamMetrics {
	return vamMetricsSingleton()
}
