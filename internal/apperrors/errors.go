// Package apperrors defines the sentinel errors shared across layers.
// Callers branch with errors.Is; messages are wrapped with %w at the site
// that has the context.
package apperrors

import "errors"

var (
	// ErrRateFetch covers every way the rate provider can fail: network
	// error, bad status, malformed payload, non-positive quote. It is the
	// only error surfaced to the UI, and only from an explicit refresh.
	ErrRateFetch = errors.New("rate fetch failed")

	// ErrMissingRate marks a conversion asked for a kind/pair that was
	// never cached. The engine recovers with a fallback; this sentinel is
	// logged, not returned to render paths.
	ErrMissingRate = errors.New("no cached exchange rate")

	// ErrStorageCorrupt marks a persisted value that could not be decoded.
	// Recovered locally by reverting to defaults, never surfaced.
	ErrStorageCorrupt = errors.New("stored state is corrupt")

	// ErrInvalidAmount marks a non-finite amount. Recovered locally by
	// rendering a canonical zero.
	ErrInvalidAmount = errors.New("amount is not a finite number")

	// ErrInvalidSelection marks a currency or exchange-type change with an
	// unsupported value.
	ErrInvalidSelection = errors.New("invalid currency selection")
)
