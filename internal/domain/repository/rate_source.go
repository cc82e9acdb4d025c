package repository

import (
	"context"

	"github.com/campoverde/currency-sync-service/internal/domain/entity"
)

// RateSource fetches authoritative quotes from an external provider. It is a
// pure I/O boundary: no retries, no cache, no state. Callers own resiliency
// and fallback policy.
type RateSource interface {
	// FetchRates retrieves one fresh quote per requested kind, typically
	// both kinds in a single provider call since they share a pair.
	FetchRates(ctx context.Context, kinds []entity.RateKind) (map[entity.RateKind]entity.ExchangeRate, error)
}
