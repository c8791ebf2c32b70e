package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/catalog"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// catalogCache is a read-through cache over catalog.Repository. Cache
// failures are logged and never fail a read.
type catalogCache struct {
	repo catalog.Repository
	ttl  time.Duration
	now  func() time.Time
	log  logging.Logger
}

func (c *catalogCache) lookup(ctx context.Context, key string) (catalog.Entry, bool) {
	if c.repo == nil {
		return catalog.Entry{}, false
	}
	e, err := c.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			c.log.Warn(ctx, "catalog cache read failed", "key", key, "err", err)
		}
		return catalog.Entry{}, false
	}
	return e, true
}

func (c *catalogCache) fresh(e catalog.Entry) bool {
	return c.ttl > 0 && c.now().Sub(e.FetchedAt) < c.ttl
}

func (c *catalogCache) put(ctx context.Context, key string, v any) {
	if c.repo == nil {
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		c.log.Error(ctx, "catalog cache encode failed", "key", key, "err", err)
		return
	}
	if err := c.repo.Put(ctx, catalog.Entry{Key: key, Body: body, FetchedAt: c.now()}); err != nil {
		c.log.Warn(ctx, "catalog cache write failed", "key", key, "err", err)
	}
}

func (c *catalogCache) evict(ctx context.Context, key string) {
	if c.repo == nil {
		return
	}
	if err := c.repo.Delete(ctx, key); err != nil {
		c.log.Warn(ctx, "catalog cache evict failed", "key", key, "err", err)
	}
}

func (c *catalogCache) evictPrefix(ctx context.Context, prefixes ...string) {
	if c.repo == nil {
		return
	}
	for _, p := range prefixes {
		n, err := c.repo.DeletePrefix(ctx, p)
		if err != nil {
			c.log.Warn(ctx, "catalog cache invalidation failed", "prefix", p, "err", err)
			continue
		}
		c.log.Debug(ctx, "catalog cache invalidated", "prefix", p, "entries", n)
	}
}

// offline reports whether err means the backend could not answer, as opposed
// to answering with a rejection.
func offline(err error) bool {
	return errors.Is(err, client.ErrUnavailable) || errors.Is(err, client.ErrServer)
}

// readThrough serves key from the cache while fresh, otherwise fetches it. A
// 404 evicts the entry. When the backend is offline a stale entry is served
// instead; without one the error wraps client.ErrLocalDataNotAvailable.
func readThrough[T any](ctx context.Context, c *catalogCache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	entry, hit := c.lookup(ctx, key)
	if hit && c.fresh(entry) {
		var v T
		if err := json.Unmarshal(entry.Body, &v); err == nil {
			c.log.Debug(ctx, "catalog cache hit", "key", key)
			return v, nil
		}
		c.log.Warn(ctx, "catalog cache entry unreadable", "key", key)
		hit = false
	}

	v, err := fetch(ctx)
	switch {
	case err == nil:
		c.put(ctx, key, v)
		return v, nil
	case errors.Is(err, client.ErrNotFound):
		c.evict(ctx, key)
		return zero, err
	case offline(err):
		if hit {
			var stale T
			if jerr := json.Unmarshal(entry.Body, &stale); jerr == nil {
				c.log.Warn(ctx, "serving stale catalog entry",
					"key", key, "age", c.now().Sub(entry.FetchedAt).Round(time.Second), "err", err)
				return stale, nil
			}
		}
		return zero, fmt.Errorf("%w: %w", client.ErrLocalDataNotAvailable, err)
	default:
		return zero, err
	}
}
