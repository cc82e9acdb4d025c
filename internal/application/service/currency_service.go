package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/campoverde/currency-sync-service/internal/apperrors"
	"github.com/campoverde/currency-sync-service/internal/domain/entity"
	"github.com/campoverde/currency-sync-service/internal/domain/repository"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/bus"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/cache"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RateInfo is a read-only snapshot of the currency core: the current
// selection, the cached rate per kind, and when rates were last refreshed.
type RateInfo struct {
	DisplayCurrency entity.Currency                         `json:"display_currency"`
	RateKind        entity.RateKind                         `json:"rate_kind"`
	Rates           map[entity.RateKind]entity.ExchangeRate `json:"rates"`
	LastUpdate      time.Time                               `json:"last_update"`
}

// CurrencyService is the facade every consuming screen talks to. It owns
// the display selection, drives refreshes, and is the only writer of the
// rate cache. Constructed once at startup and injected; there is no
// ambient global state.
type CurrencyService struct {
	source  repository.RateSource
	store   repository.StateStore
	cache   *cache.RateCache
	engine  *ConversionEngine
	bus     *bus.InvalidationBus
	metrics *metrics.CurrencyMetrics
	logger  *zap.Logger

	selMu     sync.RWMutex
	selection entity.Selection

	flight  singleflight.Group
	loading atomic.Bool

	printers map[entity.Currency]*message.Printer
}

// NewCurrencyService wires the facade over its collaborators.
func NewCurrencyService(
	source repository.RateSource,
	store repository.StateStore,
	rateCache *cache.RateCache,
	engine *ConversionEngine,
	invalidation *bus.InvalidationBus,
	m *metrics.CurrencyMetrics,
	log *zap.Logger,
) *CurrencyService {
	if log == nil {
		log = zap.NewNop()
	}

	printers := make(map[entity.Currency]*message.Printer)
	for _, c := range entity.Currencies() {
		info, err := entity.CurrencyInfoFor(c)
		if err != nil {
			continue
		}
		printers[c] = message.NewPrinter(info.Locale)
	}

	return &CurrencyService{
		source:    source,
		store:     store,
		cache:     rateCache,
		engine:    engine,
		bus:       invalidation,
		metrics:   m,
		logger:    log,
		selection: entity.DefaultSelection(),
		printers:  printers,
	}
}

// Hydrate seeds the cache and the selection from durable storage. Called
// once at startup; empty or corrupt storage falls back to defaults.
func (s *CurrencyService) Hydrate(ctx context.Context) error {
	if err := s.cache.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to hydrate rate cache: %w", err)
	}

	stored, err := s.store.LoadSelection(ctx)
	if err != nil {
		return fmt.Errorf("failed to load selection: %w", err)
	}
	if stored == nil {
		s.logger.Info("no persisted selection, using defaults")
		return nil
	}
	if err := stored.Validate(); err != nil {
		s.logger.Warn("discarding invalid persisted selection", zap.Error(err))
		return nil
	}

	s.selMu.Lock()
	s.selection = *stored
	s.selMu.Unlock()

	s.logger.Info("hydrated selection",
		zap.String("display_currency", string(stored.DisplayCurrency)),
		zap.String("rate_kind", string(stored.RateKind)))
	return nil
}

// CurrentSelection returns the active display currency and rate kind.
func (s *CurrencyService) CurrentSelection() entity.Selection {
	s.selMu.RLock()
	defer s.selMu.RUnlock()
	return s.selection
}

// ChangeCurrency switches the display currency. Synchronous: memory is
// updated, the selection is persisted, then a single invalidation signal
// goes out. A persistence failure is logged and swallowed — the in-memory
// selection is the source of truth and rendering must not break.
func (s *CurrencyService) ChangeCurrency(ctx context.Context, c entity.Currency) error {
	if _, err := entity.CurrencyInfoFor(c); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidSelection, err)
	}

	s.mutateSelection(ctx, "display_currency", func(sel *entity.Selection) {
		sel.DisplayCurrency = c
	})
	return nil
}

// ChangeExchangeType switches the rate kind. While the native currency is
// displayed this changes no conversion output, but the choice is still
// recorded for the next switch to a foreign currency.
func (s *CurrencyService) ChangeExchangeType(ctx context.Context, k entity.RateKind) error {
	if _, err := entity.ParseRateKind(string(k)); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidSelection, err)
	}

	s.mutateSelection(ctx, "exchange_type", func(sel *entity.Selection) {
		sel.RateKind = k
	})
	return nil
}

func (s *CurrencyService) mutateSelection(ctx context.Context, field string, mutate func(*entity.Selection)) {
	s.selMu.Lock()
	mutate(&s.selection)
	s.selection.LastUpdate = time.Now().UTC()
	updated := s.selection
	s.selMu.Unlock()

	if err := s.store.SaveSelection(ctx, updated); err != nil {
		s.logger.Error("failed to persist selection", zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.SelectionChangesTotal.WithLabelValues(field).Inc()
	}

	// One combined notification per mutation, not one per touched field.
	s.bus.Publish(bus.SignalSelectionChanged)

	s.logger.Info("selection changed",
		zap.String("field", field),
		zap.String("display_currency", string(updated.DisplayCurrency)),
		zap.String("rate_kind", string(updated.RateKind)))
}

// UpdateRates fetches both rate kinds from the provider and replaces the
// cache. Concurrent calls collapse into one in-flight fetch. On failure
// the cache is left untouched, nothing is broadcast, and the error is
// returned so an explicit refresh action can surface it.
func (s *CurrencyService) UpdateRates(ctx context.Context) error {
	_, err, _ := s.flight.Do("refresh", func() (interface{}, error) {
		s.loading.Store(true)
		defer s.loading.Store(false)

		start := time.Now()
		rates, err := s.source.FetchRates(ctx, entity.RateKinds)
		if s.metrics != nil {
			s.metrics.RateRefreshDuration.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			if s.metrics != nil {
				s.metrics.RateRefreshTotal.WithLabelValues("failure").Inc()
			}
			s.logger.Error("rate refresh failed", zap.Error(err))
			return nil, err
		}

		for kind, rate := range rates {
			if err := rate.Validate(); err != nil {
				if s.metrics != nil {
					s.metrics.RateRefreshTotal.WithLabelValues("failure").Inc()
				}
				return nil, fmt.Errorf("%w: %s quote: %v", apperrors.ErrRateFetch, kind, err)
			}
		}

		// The cache write strictly precedes the broadcast so every
		// subscriber reacting to the signal observes the new rates.
		if err := s.cache.PutAll(ctx, rates, time.Now().UTC()); err != nil {
			s.logger.Error("failed to persist rates, cache updated in memory only", zap.Error(err))
		}
		s.bus.Publish(bus.SignalRatesRefreshed)

		if s.metrics != nil {
			s.metrics.RateRefreshTotal.WithLabelValues("success").Inc()
		}
		s.logger.Info("rates refreshed",
			zap.Int("kinds", len(rates)),
			zap.Duration("took", time.Since(start)))
		return nil, nil
	})
	return err
}

// Loading reports whether a refresh is outstanding. Used by UI to disable
// refresh controls, never to gate formatting.
func (s *CurrencyService) Loading() bool {
	return s.loading.Load()
}

// RateInfo returns a read-only snapshot of selection and cached rates.
func (s *CurrencyService) RateInfo() RateInfo {
	sel := s.CurrentSelection()
	snapshot := s.cache.Snapshot()

	return RateInfo{
		DisplayCurrency: sel.DisplayCurrency,
		RateKind:        sel.RateKind,
		Rates:           snapshot.Rates,
		LastUpdate:      snapshot.UpdatedAt,
	}
}

// ConvertCurrency converts a raw amount between two currencies using the
// currently selected rate kind. Thin pass-through for callers that need
// the number rather than a formatted string.
func (s *CurrencyService) ConvertCurrency(amount float64, from, to entity.Currency) float64 {
	return s.engine.Convert(amount, from, to, s.CurrentSelection().RateKind)
}

// FormatCurrency renders a native-currency amount in the selected display
// currency with locale grouping, the currency symbol, and the fixed
// decimal places of the target currency. It never fails and never blocks:
// non-finite input renders as zero, and a cold cache renders through the
// engine's fallback.
func (s *CurrencyService) FormatCurrency(amount float64) string {
	sel := s.CurrentSelection()

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	value := amount
	if !sel.DisplayCurrency.IsNative() {
		value = s.engine.Convert(amount, entity.NativeCurrency, sel.DisplayCurrency, sel.RateKind)
	}

	return s.format(sel.DisplayCurrency, value)
}

func (s *CurrencyService) format(c entity.Currency, value float64) string {
	info, err := entity.CurrencyInfoFor(c)
	if err != nil {
		// Unreachable for a validated selection; render something sane.
		return fmt.Sprintf("%.2f", value)
	}

	p, ok := s.printers[c]
	if !ok {
		p = message.NewPrinter(info.Locale)
	}

	return p.Sprintf("%s %v", info.Symbol, number.Decimal(value, number.Scale(info.Decimals)))
}
