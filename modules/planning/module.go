package planning

import (
	"context"
	"net/http"
	"reflect"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
	"github.com/iota-uz/crewplan/modules/planning/infrastructure/cache"
	"github.com/iota-uz/crewplan/modules/planning/infrastructure/rentman"
	"github.com/iota-uz/crewplan/modules/planning/presentation/controllers"
	"github.com/iota-uz/crewplan/modules/planning/services"
	"github.com/iota-uz/crewplan/pkg/application"
	"github.com/iota-uz/crewplan/pkg/configuration"
	"github.com/iota-uz/crewplan/pkg/eventbus"
)

const Version = "1.0.0"

type ModuleOptions struct {
	// Configuration defaults to configuration.Use().
	Configuration *configuration.Configuration
	// Repository replaces the Rentman directory, e.g. with a fixture in tests.
	// The response cache is still built but nothing reads through it.
	Repository booking.Repository
	HTTPClient *http.Client
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{opts: opts}
}

type Module struct {
	opts *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	conf := m.opts.Configuration
	if conf == nil {
		conf = configuration.Use()
	}
	logger := logrus.NewEntry(app.Logger())

	responseCache, err := NewResponseCache(context.Background(), conf, logger)
	if err != nil {
		return err
	}

	repo := m.opts.Repository
	if repo == nil {
		client, err := rentman.NewClient(rentman.Options{
			BaseURL:    conf.Rentman.BaseURL,
			Token:      conf.Rentman.Token,
			Timeout:    conf.Rentman.Timeout,
			MaxRetries: conf.Rentman.MaxRetries,
			Cache:      responseCache,
			HTTPClient: m.opts.HTTPClient,
			Logger:     logger,
		})
		if err != nil {
			return errors.Wrap(err, "rentman client")
		}
		repo = rentman.NewDirectory(client, conf.Rentman.PageSize)
	}

	strategy, ok := services.ParseStrategy(conf.Resolver.Strategy)
	if !ok {
		return errors.Errorf("unknown resolver strategy %q", conf.Resolver.Strategy)
	}
	resolver := services.NewEntityResolver(repo, services.ResolverOptions{
		Strategy:      strategy,
		BulkThreshold: conf.Resolver.BulkThreshold,
		Concurrency:   conf.Resolver.Concurrency,
		PageSize:      conf.Rentman.PageSize,
		Logger:        logger,
	})
	publisher := eventbus.New(logger)
	publisher.Subscribe(func(*services.CacheCleared) {
		resolver.ForgetSizes()
	})

	bookingService := services.NewBookingService(repo, resolver, logger)
	directoryService := services.NewDirectoryService(repo)

	pruner, err := cache.NewPruner(responseCache, cache.PrunerOptions{
		Interval: conf.Cache.PruneInterval,
		Logger:   logger.WithField("component", "cache-pruner"),
	})
	if err != nil {
		return err
	}

	app.RegisterServices(
		resolver,
		bookingService,
		directoryService,
		services.NewTimelineService(bookingService, directoryService),
		services.NewCacheService(responseCache, publisher, logger),
		services.NewWarmupService(repo, bookingService, resolver, conf.WarmupDefaultTag, logger),
		pruner,
	)

	app.RegisterControllers(
		controllers.NewHealthController(controllers.HealthControllerConfig{
			BasePath:    "/api/health",
			Version:     Version,
			HasAPIToken: conf.Rentman.Token != "",
		}),
		controllers.NewBookingController(controllers.BookingControllerConfig{
			BasePath: "/api",
			App:      app,
		}),
		controllers.NewDirectoryController(controllers.DirectoryControllerConfig{
			BasePath: "/api",
			App:      app,
		}),
		controllers.NewAdminController(controllers.AdminControllerConfig{
			BasePath: "/api",
			App:      app,
		}),
	)
	return nil
}

func (m *Module) Name() string {
	return "planning"
}

// NewResponseCache builds the response cache on the configured backend.
func NewResponseCache(ctx context.Context, conf *configuration.Configuration, logger *logrus.Entry) (*cache.ResponseCache, error) {
	var (
		backend cache.Backend
		err     error
	)
	switch conf.Cache.Backend {
	case "memory":
		backend = cache.NewMemoryBackend()
	case "redis":
		opts, perr := redis.ParseURL(conf.RedisURL)
		if perr != nil {
			return nil, errors.Wrap(perr, "parse REDIS_URL")
		}
		backend, err = cache.NewRedisBackend(redis.NewClient(opts), conf.Cache.RedisPrefix, 2*conf.Cache.TTL)
	default:
		backend, err = cache.NewFileBackend(conf.Cache.Dir)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s cache backend", conf.Cache.Backend)
	}

	c, err := cache.New(ctx, backend, cache.Options{
		TTL:         conf.Cache.TTL,
		PruneChance: conf.Cache.PruneChance,
		Logger:      logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "response cache")
	}
	return c, nil
}

// RunBackground runs the scheduled cache pruner registered by the module until ctx
// ends. It returns immediately when pruning is disabled.
func RunBackground(ctx context.Context, app application.Application) error {
	svc, ok := app.Services()[reflect.TypeOf(cache.Pruner{})]
	if !ok {
		return nil
	}
	err := svc.(*cache.Pruner).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
