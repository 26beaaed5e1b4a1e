// Package cartcache serves per-user cart aggregates (line count, quantity sum,
// monetary total) and per-line lookups with cache-aside semantics over the
// durable cart line store. Every cart mutation must call Invalidate for the
// affected user; the TTL only bounds staleness if an invalidation was missed
// or the cache store was unreachable at write time.
package cartcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"shopcart/internal/domain"
	"shopcart/internal/kv"
)

// recordStore is the slice of the cart line repository the cache recomputes from.
type recordStore interface {
	CountLines(ctx context.Context, userID string) (int, error)
	SumQuantity(ctx context.Context, userID string) (int, error)
	SumTotalCents(ctx context.Context, userID string) (int64, error)
	GetByUserProduct(ctx context.Context, userID, productID string) (*domain.CartLine, error)
}

// Config holds cache TTLs.
type Config struct {
	AggregateTTL time.Duration
	LineTTL      time.Duration
}

func (c Config) withDefaults() Config {
	if c.AggregateTTL <= 0 {
		c.AggregateTTL = 5 * time.Minute
	}
	if c.LineTTL <= 0 {
		c.LineTTL = 5 * time.Minute
	}
	return c
}

// Cache is the cart aggregate cache.
type Cache struct {
	store   kv.Store
	records recordStore
	cfg     Config
	logger  zerolog.Logger
}

func New(store kv.Store, records recordStore, cfg Config, logger zerolog.Logger) *Cache {
	return &Cache{
		store:   store,
		records: records,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// ItemCount returns the number of distinct cart lines for the user.
func (c *Cache) ItemCount(ctx context.Context, userID string) (int, error) {
	n, err := c.cachedInt(ctx, "count", countKey(userID), func() (int64, error) {
		n, err := c.records.CountLines(ctx, userID)
		return int64(n), err
	})
	return int(n), err
}

// TotalQuantity returns the quantity sum across the user's cart lines.
// An empty cart yields 0.
func (c *Cache) TotalQuantity(ctx context.Context, userID string) (int, error) {
	n, err := c.cachedInt(ctx, "qty", quantityKey(userID), func() (int64, error) {
		n, err := c.records.SumQuantity(ctx, userID)
		return int64(n), err
	})
	return int(n), err
}

// TotalCents returns the monetary cart total in cents, valued at each
// product's current effective price. Prices can change between cache fills,
// so a cached total may lag live prices by at most the aggregate TTL.
func (c *Cache) TotalCents(ctx context.Context, userID string) (int64, error) {
	return c.cachedInt(ctx, "total", totalKey(userID), func() (int64, error) {
		return c.records.SumTotalCents(ctx, userID)
	})
}

// Summary returns all three aggregates for the user.
func (c *Cache) Summary(ctx context.Context, userID string) (domain.CartSummary, error) {
	count, err := c.ItemCount(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	qty, err := c.TotalQuantity(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	total, err := c.TotalCents(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return domain.CartSummary{ItemCount: count, TotalQuantity: qty, TotalCents: total}, nil
}

// FindLine returns the user's cart line for the product, cached per
// (user, product) pair. Returns domain.ErrCartItemNotFound when absent;
// absence is not cached.
func (c *Cache) FindLine(ctx context.Context, userID, productID string) (*domain.CartLine, error) {
	key := lineKey(userID, productID)

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache store get failed, reading through")
	} else if ok {
		var line domain.CartLine
		if err := json.Unmarshal(data, &line); err == nil {
			cacheHits.WithLabelValues("line").Inc()
			return &line, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding corrupt cached cart line")
	}
	cacheMisses.WithLabelValues("line").Inc()

	line, err := c.records.GetByUserProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(line); err == nil {
		if err := c.store.Set(ctx, key, data, c.cfg.LineTTL); err != nil {
			cacheErrors.WithLabelValues("set").Inc()
			c.logger.Warn().Err(err).Str("key", key).Msg("cache store set failed")
		}
	}
	return line, nil
}

// Invalidate unconditionally evicts the user's three aggregates and every
// cached line lookup. Idempotent and safe to call when nothing is cached.
func (c *Cache) Invalidate(ctx context.Context, userID string) error {
	invalidations.Inc()

	delErr := c.store.Delete(ctx, countKey(userID), quantityKey(userID), totalKey(userID))
	prefixErr := c.store.DeletePrefix(ctx, linePrefix(userID))
	if delErr != nil || prefixErr != nil {
		cacheErrors.WithLabelValues("invalidate").Inc()
		return fmt.Errorf("invalidate cart cache for user %s: %w", userID, errors.Join(delErr, prefixErr))
	}
	return nil
}

// cachedInt implements cache-aside for an integer-valued view: serve the
// cached value when present, otherwise recompute from the record store and
// fill the cache. Cache store failures degrade to a direct recomputation.
func (c *Cache) cachedInt(ctx context.Context, view, key string, compute func() (int64, error)) (int64, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache store get failed, reading through")
	} else if ok {
		if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
			cacheHits.WithLabelValues(view).Inc()
			return n, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding corrupt cached aggregate")
	}
	cacheMisses.WithLabelValues(view).Inc()

	n, err := compute()
	if err != nil {
		return 0, err
	}

	if err := c.store.Set(ctx, key, []byte(strconv.FormatInt(n, 10)), c.cfg.AggregateTTL); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache store set failed")
	}
	return n, nil
}
