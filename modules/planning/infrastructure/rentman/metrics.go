package rentman

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK        = "ok"
	resultCached    = "cached"
	resultHTTPError = "http_error"
	resultTransport = "transport_error"
	resultDecode    = "decode_error"
)

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crewplan",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream GET requests by result.",
		}, []string{"result"}),
		latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crewplan",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of upstream GET requests that reached the network.",
			Buckets: []float64{
				0.05, 0.1, 0.25, 0.5,
				1, 2, 5, 10, 30, 60, 120,
			},
		}, []string{"result"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
