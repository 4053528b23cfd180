package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

type PrunerOptions struct {
	// Interval <= 0 disables the pruner.
	Interval time.Duration
	Logger   *logrus.Entry
}

// Pruner runs PruneExpired on a fixed interval until its context ends.
type Pruner struct {
	cache *ResponseCache
	opts  PrunerOptions
}

func NewPruner(cache *ResponseCache, opts PrunerOptions) (*Pruner, error) {
	if cache == nil {
		return nil, invalidConfig("cache is required")
	}
	if opts.Logger == nil {
		opts.Logger = logrusNop()
	}
	return &Pruner{cache: cache, opts: opts}, nil
}

func (p *Pruner) Run(ctx context.Context) error {
	if p.opts.Interval <= 0 || !p.cache.Enabled() {
		return nil
	}

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		n, err := p.cache.PruneExpired(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.opts.Logger.WithError(err).Warn("cache: prune tick failed")
			continue
		}
		if n > 0 {
			p.opts.Logger.WithField("deleted", n).Info("cache: pruned expired entries")
		}
	}
}
