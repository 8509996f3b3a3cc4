package services

import (
	"context"
	"log/slog"
	"time"

	"katalog/internal/apperr"
	"katalog/internal/cache"
	"katalog/internal/models"

	"golang.org/x/sync/singleflight"
)

// listCache serves list queries cache-aside. Concurrent misses on the same
// key share one database round trip.
type listCache struct {
	store  cache.Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

func newListCache(store cache.Store, ttl time.Duration, logger *slog.Logger) *listCache {
	return &listCache{store: store, ttl: ttl, logger: logger}
}

type loader[T any] func(ctx context.Context) ([]T, int64, error)

// cachedList returns the page for query under prefix, loading it on a miss.
// Cache failures are logged and the database is used instead.
func cachedList[T any](ctx context.Context, lc *listCache, prefix string, query any, page, limit int, load loader[T]) (*models.Page[T], error) {
	key, err := cache.ListKey(prefix, query)
	if err != nil {
		return nil, apperr.Internal("Failed to build cache key", err)
	}

	var cached models.Page[T]
	found, err := lc.store.Get(ctx, key, &cached)
	if err != nil {
		lc.logger.Warn("Cache read failed", "key", key, "error", err)
	}
	if found {
		return &cached, nil
	}

	v, err, _ := lc.group.Do(key, func() (any, error) {
		rows, total, err := load(ctx)
		if err != nil {
			return nil, err
		}
		result := &models.Page[T]{Data: rows, Meta: models.NewMeta(page, limit, int(total))}
		if err := lc.store.Set(ctx, key, result, lc.ttl); err != nil {
			lc.logger.Warn("Cache write failed", "key", key, "error", err)
		}
		return result, nil
	})
	if err != nil {
		return nil, apperr.Internal("Failed to load list", err)
	}
	return v.(*models.Page[T]), nil
}

// invalidate drops every cached entry under the given prefixes. Failures are
// logged; the write that triggered them has already been committed.
func (lc *listCache) invalidate(ctx context.Context, prefixes ...string) {
	for _, p := range prefixes {
		n, err := lc.store.DeletePattern(ctx, p+"*")
		if err != nil {
			lc.logger.Warn("Cache invalidation failed", "prefix", p, "error", err)
			continue
		}
		lc.logger.Debug("Cache invalidated", "prefix", p, "keys", n)
	}
}
