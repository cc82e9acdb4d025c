package service

import (
	"math"

	"github.com/campoverde/currency-sync-service/internal/domain/entity"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/cache"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConversionEngine applies cached rates to amounts. All math runs on
// decimals and the result is handed back unrounded; rounding to the
// display precision happens only at the formatting boundary, so repeated
// conversions lose precision only where the user can see it.
type ConversionEngine struct {
	cache   *cache.RateCache
	metrics *metrics.CurrencyMetrics
	logger  *zap.Logger
}

// NewConversionEngine creates a conversion engine over the given cache.
func NewConversionEngine(rateCache *cache.RateCache, m *metrics.CurrencyMetrics, log *zap.Logger) *ConversionEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConversionEngine{
		cache:   rateCache,
		metrics: m,
		logger:  log,
	}
}

// Convert converts an amount between two supported currencies using the
// given rate kind. It never fails: non-finite amounts convert to zero, a
// missing rate degrades to the documented fallback, and identity
// conversions return the amount untouched with no rate lookup at all.
func (e *ConversionEngine) Convert(amount float64, from, to entity.Currency, kind entity.RateKind) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		e.logger.Warn("non-finite amount in conversion, using zero",
			zap.Float64("amount", amount))
		return 0
	}

	if from == to {
		return amount
	}

	if kind == "" {
		kind = entity.RateKindOfficial
	}

	value := decimal.NewFromFloat(amount)

	switch {
	case from.IsNative():
		// Native to foreign: one cached scalar is pesos-per-unit, so the
		// outbound direction divides.
		value = e.rateFor(to, kind).Divide(value)
	case to.IsNative():
		value = e.rateFor(from, kind).Apply(value)
	default:
		// Foreign to foreign crosses through the native currency.
		value = e.rateFor(to, kind).Divide(e.rateFor(from, kind).Apply(value))
	}

	result, _ := value.Float64()
	return result
}

// rateFor resolves the scalar rate for a foreign currency. Preference
// order: cached rate for the requested kind, cached rate for any other
// kind (stale-but-real beats a constant), then the documented cold-start
// fallback.
func (e *ConversionEngine) rateFor(currency entity.Currency, kind entity.RateKind) entity.Rate {
	if rate, ok := e.cache.Get(kind); ok && rate.Currency == currency {
		return rate.Rate
	}

	for _, other := range entity.RateKinds {
		if other == kind {
			continue
		}
		if rate, ok := e.cache.Get(other); ok && rate.Currency == currency {
			e.logger.Warn("requested rate kind not cached, using another kind",
				zap.String("currency", string(currency)),
				zap.String("requested", string(kind)),
				zap.String("used", string(other)))
			return rate.Rate
		}
	}

	if e.metrics != nil {
		e.metrics.ConversionFallbackTotal.Inc()
	}

	fallback, ok := entity.FallbackRates[currency]
	if !ok {
		e.logger.Error("no fallback rate for currency, using identity",
			zap.String("currency", string(currency)))
		return entity.MustRate(1)
	}

	e.logger.Warn("cold cache, using fallback rate",
		zap.String("currency", string(currency)),
		zap.String("kind", string(kind)),
		zap.Float64("rate", fallback.Float64()))
	return fallback
}
