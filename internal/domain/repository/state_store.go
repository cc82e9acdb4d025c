package repository

import (
	"context"

	"github.com/campoverde/currency-sync-service/internal/domain/entity"
)

// StateStore persists the two records that must survive a restart: the rate
// snapshot and the display selection. A missing or undecodable record loads
// as (nil, nil) — "not yet initialized" is never a startup failure.
type StateStore interface {
	// SaveRates overwrites the persisted rate snapshot.
	SaveRates(ctx context.Context, snapshot entity.RateSnapshot) error

	// LoadRates returns the persisted snapshot, or nil when absent or
	// corrupt.
	LoadRates(ctx context.Context) (*entity.RateSnapshot, error)

	// SaveSelection overwrites the persisted display selection.
	SaveSelection(ctx context.Context, selection entity.Selection) error

	// LoadSelection returns the persisted selection, or nil when absent or
	// corrupt.
	LoadSelection(ctx context.Context) (*entity.Selection, error)
}
