package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/iota-uz/crewplan/pkg/httpapi"
)

const rateLimitPrefix = "crewplan:ratelimit"

type RateLimitConfig struct {
	RequestsPerPeriod int
	// Period defaults to one second.
	Period time.Duration
	Store  limiter.Store
	// TrustForwardHeader keys clients by X-Forwarded-For / X-Real-IP.
	TrustForwardHeader bool
}

func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{Prefix: rateLimitPrefix})
}

// RateLimit limits requests per client IP. A non-positive rate disables limiting.
func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	if cfg.RequestsPerPeriod <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Second
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}

	instance := limiter.New(cfg.Store, limiter.Rate{
		Period: cfg.Period,
		Limit:  int64(cfg.RequestsPerPeriod),
	}, limiter.WithTrustForwardHeader(cfg.TrustForwardHeader))

	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			_ = httpapi.WriteRequestError(w, r, http.StatusTooManyRequests, httpapi.CodeRateLimited, "rate limit exceeded")
		}),
	)
	return mw.Handler
}
