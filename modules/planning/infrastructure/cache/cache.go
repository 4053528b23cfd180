package cache

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

type Options struct {
	// TTL <= 0 disables caching.
	TTL time.Duration

	// PruneChance is the probability that New runs PruneExpired. 0 never, 1 always.
	PruneChance float64

	Rand   *rand.Rand
	Now    func() time.Time
	Logger *logrus.Entry
}

func (o *Options) setDefaults() {
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logrusNop()
	}
}

// ResponseCache is a TTL cache of upstream JSON payloads. Entries older than TTL are
// never served; entries older than twice the TTL are removed by PruneExpired.
type ResponseCache struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  *logrus.Entry
	metrics *metrics
}

type Stats struct {
	Count        int   `json:"totalFiles"`
	ExpiredCount int   `json:"expiredFiles"`
	TotalBytes   int64 `json:"totalSizeBytes"`
	TTLSeconds   int64 `json:"ttlSeconds"`
	Enabled      bool  `json:"enabled"`
}

// New builds a cache over backend and, with probability opts.PruneChance, prunes it
// before returning.
func New(ctx context.Context, backend Backend, opts Options) (*ResponseCache, error) {
	if backend == nil {
		return nil, invalidConfig("backend is required")
	}
	if opts.PruneChance < 0 || opts.PruneChance > 1 {
		return nil, invalidConfig("prune chance must be within [0, 1]")
	}
	opts.setDefaults()

	c := &ResponseCache{
		backend: backend,
		ttl:     opts.TTL,
		now:     opts.Now,
		logger:  opts.Logger.WithField("component", "cache"),
		metrics: getMetrics(),
	}

	if c.Enabled() && opts.PruneChance > 0 && opts.Rand.Float64() < opts.PruneChance {
		n, err := c.PruneExpired(ctx)
		if err != nil {
			c.logger.WithError(err).Warn("opportunistic prune failed")
		} else if n > 0 {
			c.logger.WithField("deleted", n).Debug("opportunistic prune")
		}
	}
	return c, nil
}

func (c *ResponseCache) Enabled() bool {
	return c.ttl > 0
}

func (c *ResponseCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the payload stored under key when it is still fresh. Stale and
// unreadable entries are a miss and are removed.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}

	entry, err := c.backend.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.count(resultMiss)
		} else {
			c.count(resultError)
			c.logger.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return nil, false
	}

	if c.now().Sub(entry.StoredAt) > c.ttl {
		c.count(resultStale)
		c.drop(ctx, key)
		return nil, false
	}
	if !json.Valid(entry.Payload) {
		c.count(resultCorrupt)
		c.drop(ctx, key)
		return nil, false
	}

	c.count(resultHit)
	return entry.Payload, true
}

// Put stores payload under key. It is a no-op when caching is disabled.
func (c *ResponseCache) Put(ctx context.Context, key string, payload []byte) error {
	if !c.Enabled() {
		return nil
	}
	return c.backend.Store(ctx, Entry{Key: key, Payload: payload, StoredAt: c.now()})
}

func (c *ResponseCache) InvalidateAll(ctx context.Context) (int, error) {
	return c.backend.DeleteAll(ctx)
}

// PruneExpired removes every entry older than twice the TTL and reports how many went.
func (c *ResponseCache) PruneExpired(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	infos, err := c.backend.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := 2 * c.ttl
	now := c.now()
	deleted := 0
	for _, info := range infos {
		if now.Sub(info.StoredAt) <= cutoff {
			continue
		}
		if err := c.backend.Delete(ctx, info.Key); err != nil {
			return deleted, err
		}
		deleted++
	}
	c.metrics.pruned.Add(float64(deleted))
	return deleted, nil
}

func (c *ResponseCache) Stats(ctx context.Context) (Stats, error) {
	infos, err := c.backend.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := c.now()
	stats := Stats{
		Count:      len(infos),
		TTLSeconds: int64(c.ttl / time.Second),
		Enabled:    c.Enabled(),
	}
	for _, info := range infos {
		stats.TotalBytes += info.Size
		if !c.Enabled() || now.Sub(info.StoredAt) > c.ttl {
			stats.ExpiredCount++
		}
	}
	return stats, nil
}

func (c *ResponseCache) drop(ctx context.Context, key string) {
	if err := c.backend.Delete(ctx, key); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache delete failed")
	}
}

func (c *ResponseCache) count(result string) {
	c.metrics.requests.WithLabelValues(result).Inc()
}
