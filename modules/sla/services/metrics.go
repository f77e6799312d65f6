package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type slaMetrics struct {
	breachesCreated *prometheus.CounterVec
	requestsScanned prometheus.Counter
}

var slaMetricsSingleton = sync.OnceValue(func() *slaMetrics {
	return &slaMetrics{
		breachesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sla",
			Name:      "breaches_created_total",
			Help:      "Total number of breach events created, by kind.",
		}, []string{"kind"}),
		requestsScanned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "sla",
			Name:      "requests_scanned_total",
			Help:      "Total number of open requests examined by the breach evaluator.",
		}),
	}
})

func getSLAMetrics() *slaMetrics {
	return slaMetricsSingleton()
}
