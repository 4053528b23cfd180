package routinggates

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	internalserver "github.com/iota-uz/crewplan/internal/server"
	"github.com/iota-uz/crewplan/modules/planning"
	"github.com/iota-uz/crewplan/pkg/application"
	"github.com/iota-uz/crewplan/pkg/configuration"
	"github.com/iota-uz/crewplan/pkg/metrics"
	pkgserver "github.com/iota-uz/crewplan/pkg/server"
)

func testConfiguration() *configuration.Configuration {
	return &configuration.Configuration{
		Rentman: configuration.RentmanOptions{
			BaseURL:  "http://rentman.invalid",
			PageSize: 100,
		},
		Cache: configuration.CacheOptions{
			Backend: "memory",
			TTL:     time.Minute,
		},
		Resolver: configuration.ResolverOptions{
			Strategy:      "auto",
			Concurrency:   2,
			BulkThreshold: 20,
		},
		Prometheus: configuration.PrometheusOptions{
			Enabled: true,
			Path:    "/debug/prometheus",
		},
		AllowedOrigins:   "*",
		RequestIDHeader:  "X-Request-ID",
		RealIPHeader:     "X-Real-IP",
		WarmupDefaultTag: "Tekniker",
	}
}

func buildServer(t *testing.T, conf *configuration.Configuration) *pkgserver.HTTPServer {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	app := application.New(&application.ApplicationOptions{Logger: logger})
	require.NoError(t, application.LoadModules(app, planning.NewModule(&planning.ModuleOptions{Configuration: conf})))
	app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path, nil))

	srv, err := internalserver.Default(&internalserver.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Entrypoint:    "server",
	})
	require.NoError(t, err)
	return srv
}

func collectRoutePaths(t *testing.T, router *mux.Router) []string {
	t.Helper()

	var paths []string
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if tmpl, err := route.GetPathTemplate(); err == nil && strings.TrimSpace(tmpl) != "" {
			paths = append(paths, tmpl)
		}
		return nil
	})
	require.NoError(t, err)

	sort.Strings(paths)
	return paths
}

func serve(h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, "http://example.com"+target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	h.ServeHTTP(rr, req)
	return rr
}
