package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CurrencyMetrics holds the instrumentation for the currency core.
type CurrencyMetrics struct {
	// Refreshes against the rate provider, labeled by result
	RateRefreshTotal    *prometheus.CounterVec
	RateRefreshDuration prometheus.Histogram

	// Display selection mutations
	SelectionChangesTotal *prometheus.CounterVec

	// Conversions served from the documented fallback constant instead of
	// a cached rate
	ConversionFallbackTotal prometheus.Counter
}

// NewCurrencyMetrics registers the currency metrics on the given registerer.
func NewCurrencyMetrics(reg prometheus.Registerer) *CurrencyMetrics {
	factory := promauto.With(reg)

	return &CurrencyMetrics{
		RateRefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "currency_rate_refresh_total",
			Help: "Rate provider refreshes by result",
		}, []string{"result"}),
		RateRefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "currency_rate_refresh_duration_seconds",
			Help:    "Duration of rate provider refreshes",
			Buckets: prometheus.DefBuckets,
		}),
		SelectionChangesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "currency_selection_changes_total",
			Help: "Display currency and exchange type changes",
		}, []string{"field"}),
		ConversionFallbackTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "currency_conversion_fallback_total",
			Help: "Conversions that used the cold-start fallback rate",
		}),
	}
}
