// Package instruments caches the selectable instrument list behind an explicit TTL.
package instruments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"TigerChart/internal/collector"
	"TigerChart/internal/metrics"
	"TigerChart/internal/model"
)

// DefaultTTL is how long a fetched instrument list stays fresh.
const DefaultTTL = 24 * time.Hour

// Cache is a read-through cache of the instrument list. A ttl <= 0 disables
// expiry; the entry then changes only through Refresh or Invalidate.
type Cache struct {
	lister  collector.InstrumentLister
	store   Store
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewCache creates a cache over the given lister and store. m may be nil.
func NewCache(lister collector.InstrumentLister, store Store, ttl time.Duration, m *metrics.Metrics, log *zap.Logger) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		lister:  lister,
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
}

// Instruments returns the cached list, fetching it when missing or expired.
func (c *Cache) Instruments(ctx context.Context) ([]model.Instrument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("instrument store load failed, refetching", zap.Error(err))
		ok = false
	}
	if ok && c.fresh(entry) {
		c.lookup("hit")
		return entry.Instruments, nil
	}
	c.lookup("miss")
	return c.refresh(ctx)
}

// Refresh fetches the list from the source and replaces the cached entry.
// A failed fetch leaves the previous entry in place.
func (c *Cache) Refresh(ctx context.Context) ([]model.Instrument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh(ctx)
}

// Invalidate drops the cached entry so the next lookup refetches.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("invalidate instrument cache: %w", err)
	}
	c.logger.Info("instrument cache invalidated")
	return nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

func (c *Cache) refresh(ctx context.Context) ([]model.Instrument, error) {
	list, err := c.lister.ListInstruments(ctx)
	if err != nil {
		c.refreshed("error")
		return nil, fmt.Errorf("refresh instruments: %w", err)
	}
	entry := Entry{Instruments: list, FetchedAt: c.now()}
	if err := c.store.Save(ctx, entry); err != nil {
		// The fetched list is still valid for this caller.
		c.logger.Error("instrument store save failed", zap.Error(err))
	}
	c.refreshed("ok")
	c.logger.Info("instrument list refreshed", zap.Int("count", len(list)))
	return list, nil
}

func (c *Cache) fresh(entry Entry) bool {
	if c.ttl <= 0 {
		return true
	}
	return c.now().Sub(entry.FetchedAt) < c.ttl
}

func (c *Cache) lookup(result string) {
	if c.metrics != nil {
		c.metrics.InstrumentCacheHit.WithLabelValues(result).Inc()
	}
}

func (c *Cache) refreshed(result string) {
	if c.metrics != nil {
		c.metrics.InstrumentRefresh.WithLabelValues(result).Inc()
	}
}
