package cache

import (
	"context"
	"sync"
	"time"

	"github.com/campoverde/currency-sync-service/internal/domain/entity"
	"github.com/campoverde/currency-sync-service/internal/domain/repository"
	"go.uber.org/zap"
)

// RateCache holds the last-known exchange rate per kind. The in-memory copy
// is the source of truth during a session; the durable store is only a
// cold-start seed. Entries are never expired by a timer — staleness is
// surfaced through ObservedAt, not enforced.
type RateCache struct {
	mu       sync.RWMutex
	snapshot entity.RateSnapshot
	store    repository.StateStore
	logger   *zap.Logger
}

// NewRateCache creates an empty cache backed by the given store.
func NewRateCache(store repository.StateStore, log *zap.Logger) *RateCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RateCache{
		snapshot: entity.RateSnapshot{Rates: make(map[entity.RateKind]entity.ExchangeRate)},
		store:    store,
		logger:   log,
	}
}

// Hydrate seeds the cache from durable storage. Called once at startup;
// absence or corruption leaves the cache empty rather than failing.
func (c *RateCache) Hydrate(ctx context.Context) error {
	stored, err := c.store.LoadRates(ctx)
	if err != nil {
		return err
	}
	if stored == nil {
		c.logger.Info("no persisted rates, starting with a cold cache")
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if stored.Rates != nil {
		c.snapshot = stored.Clone()
	}
	c.logger.Info("hydrated rate cache",
		zap.Int("rates", len(c.snapshot.Rates)),
		zap.Time("updated_at", c.snapshot.UpdatedAt))
	return nil
}

// Get returns the last cached rate for a kind. Synchronous, never blocks.
func (c *RateCache) Get(kind entity.RateKind) (entity.ExchangeRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rate, ok := c.snapshot.Rates[kind]
	return rate, ok
}

// PutAll overwrites the cached entries for the given kinds and persists the
// whole snapshot. A Get after a successful PutAll always observes the new
// value within the same process.
func (c *RateCache) PutAll(ctx context.Context, rates map[entity.RateKind]entity.ExchangeRate, updatedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for kind, rate := range rates {
		c.snapshot.Rates[kind] = rate
	}
	c.snapshot.UpdatedAt = updatedAt

	if err := c.store.SaveRates(ctx, c.snapshot.Clone()); err != nil {
		return err
	}
	return nil
}

// Snapshot returns a copy of the current cache contents.
func (c *RateCache) Snapshot() entity.RateSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot.Clone()
}

// LastUpdate returns when the cache was last successfully refreshed, zero
// for a cold cache.
func (c *RateCache) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot.UpdatedAt
}

// Size returns the number of cached kinds.
func (c *RateCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.snapshot.Rates)
}
