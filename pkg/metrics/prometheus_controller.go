package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iota-uz/crewplan/pkg/application"
)

type PrometheusController struct {
	path     string
	gatherer prometheus.Gatherer
}

// NewPrometheusController exposes gatherer at path; a nil gatherer means the default
// registry, where the cache and upstream collectors register themselves.
func NewPrometheusController(path string, gatherer prometheus.Gatherer) application.Controller {
	if path == "" {
		path = "/debug/prometheus"
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &PrometheusController{path: path, gatherer: gatherer}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}
