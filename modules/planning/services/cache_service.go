package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/crewplan/modules/planning/infrastructure/cache"
	"github.com/iota-uz/crewplan/pkg/eventbus"
)

type ResponseCache interface {
	InvalidateAll(ctx context.Context) (int, error)
	PruneExpired(ctx context.Context) (int, error)
	Stats(ctx context.Context) (cache.Stats, error)
}

// CacheService exposes cache administration. It never returns cached payloads.
type CacheService struct {
	cache     ResponseCache
	publisher eventbus.EventBus
	logger    *logrus.Entry
}

// NewCacheService publishes CacheCleared and CachePruned on publisher, which may be nil.
func NewCacheService(c ResponseCache, publisher eventbus.EventBus, logger *logrus.Entry) *CacheService {
	if logger == nil {
		logger = logrusNop()
	}
	if publisher == nil {
		publisher = eventbus.New(logger)
	}
	return &CacheService{cache: c, publisher: publisher, logger: logger.WithField("component", "cache-admin")}
}

func (s *CacheService) Clear(ctx context.Context) (int, error) {
	n, err := s.cache.InvalidateAll(ctx)
	if err != nil {
		return n, err
	}
	s.logger.WithField("deleted", n).Info("cache cleared")
	s.publisher.Publish(&CacheCleared{Deleted: n})
	return n, nil
}

func (s *CacheService) Prune(ctx context.Context) (int, error) {
	n, err := s.cache.PruneExpired(ctx)
	if err != nil {
		return n, err
	}
	s.logger.WithField("deleted", n).Info("cache pruned")
	s.publisher.Publish(&CachePruned{Deleted: n})
	return n, nil
}

func (s *CacheService) Stats(ctx context.Context) (cache.Stats, error) {
	return s.cache.Stats(ctx)
}
