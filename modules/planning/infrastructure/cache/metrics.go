package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit     = "hit"
	resultMiss    = "miss"
	resultStale   = "stale"
	resultCorrupt = "corrupt"
	resultError   = "error"
)

type metrics struct {
	requests *prometheus.CounterVec
	pruned   prometheus.Counter
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crewplan",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		pruned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "crewplan",
			Subsystem: "cache",
			Name:      "pruned_total",
			Help:      "Entries removed by expiry-driven prunes.",
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
