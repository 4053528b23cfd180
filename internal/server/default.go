package server

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/crewplan/pkg/application"
	"github.com/iota-uz/crewplan/pkg/configuration"
	"github.com/iota-uz/crewplan/pkg/httpapi"
	"github.com/iota-uz/crewplan/pkg/middleware"
	"github.com/iota-uz/crewplan/pkg/routing"
	"github.com/iota-uz/crewplan/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Entrypoint    string
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	rules, err := routing.RulesFor("", options.Entrypoint)
	if err != nil {
		return nil, err
	}
	classifier := routing.NewClassifier(rules)

	loggerOpts := middleware.DefaultLoggerOptions()
	loggerOpts.RequestIDHeader = conf.RequestIDHeader
	loggerOpts.RealIPHeader = conf.RealIPHeader
	loggerOpts.Classifier = classifier

	// Core middleware stack with tracing capabilities
	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, loggerOpts),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.Origins()...),

		middleware.TracedMiddleware("opsGuard"),
		middleware.OpsGuard(middleware.OpsGuardOptions{
			Token:        conf.OpsGuardToken,
			CIDRs:        conf.OpsGuardCIDRs,
			RealIPHeader: conf.RealIPHeader,
			Classifier:   classifier,
		}),
	}

	// Add rate limiting middleware if enabled
	if conf.RateLimit.Enabled {
		var store limiter.Store

		// Choose storage backend
		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(app, httpapi.NotFound(), httpapi.MethodNotAllowed()), nil
}
