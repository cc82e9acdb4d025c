package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateKind distinguishes the two legitimately different market rates quoted
// for the same currency pair.
type RateKind string

const (
	// RateKindOfficial is the official market rate.
	RateKindOfficial RateKind = "oficial"
	// RateKindBlue is the parallel ("blue") market rate.
	RateKindBlue RateKind = "blue"
)

// RateKinds lists every kind fetched on each refresh.
var RateKinds = []RateKind{RateKindOfficial, RateKindBlue}

// ParseRateKind validates a raw kind tag.
func ParseRateKind(raw string) (RateKind, error) {
	switch RateKind(raw) {
	case RateKindOfficial:
		return RateKindOfficial, nil
	case RateKindBlue:
		return RateKindBlue, nil
	}
	return "", fmt.Errorf("unknown exchange type: %q", raw)
}

// Rate is a positive scalar exchange rate expressed as native-currency units
// per one foreign-currency unit. Both conversion directions are derived from
// this single scalar; the reverse direction is Invert, never a second rate.
type Rate struct {
	value decimal.Decimal
}

// NewRate builds a Rate, rejecting zero and negative values.
func NewRate(value decimal.Decimal) (Rate, error) {
	if value.LessThanOrEqual(decimal.Zero) {
		return Rate{}, fmt.Errorf("exchange rate must be positive, got %s", value)
	}
	return Rate{value: value}, nil
}

// NewRateFromFloat builds a Rate from a float64 quote.
func NewRateFromFloat(value float64) (Rate, error) {
	return NewRate(decimal.NewFromFloat(value))
}

// MustRate is a test/default helper that panics on an invalid value.
func MustRate(value float64) Rate {
	r, err := NewRateFromFloat(value)
	if err != nil {
		panic(err)
	}
	return r
}

// Invert returns the algebraic reciprocal rate (foreign per native).
func (r Rate) Invert() Rate {
	return Rate{value: decimal.NewFromInt(1).Div(r.value)}
}

// Apply multiplies an amount by the rate.
func (r Rate) Apply(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.value)
}

// Divide divides an amount by the rate.
func (r Rate) Divide(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(r.value)
}

// Decimal returns the underlying scalar.
func (r Rate) Decimal() decimal.Decimal {
	return r.value
}

// Float64 returns the scalar as a float64 for wire/display use.
func (r Rate) Float64() float64 {
	f, _ := r.value.Float64()
	return f
}

// IsZero reports whether the rate is the zero value (never stored).
func (r Rate) IsZero() bool {
	return r.value.IsZero()
}

// MarshalJSON encodes the scalar as a JSON number string, same as decimal.
func (r Rate) MarshalJSON() ([]byte, error) {
	return r.value.MarshalJSON()
}

// UnmarshalJSON decodes and validates the scalar.
func (r *Rate) UnmarshalJSON(data []byte) error {
	var v decimal.Decimal
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	parsed, err := NewRate(v)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ExchangeRate is one observed quote: so many native units buy one unit of
// the foreign currency, for a given market kind.
type ExchangeRate struct {
	Currency   Currency  `json:"currency"`
	Kind       RateKind  `json:"kind"`
	Rate       Rate      `json:"rate"`
	ObservedAt time.Time `json:"observed_at"`
}

// Validate ensures the quote is usable before it enters the cache.
func (e *ExchangeRate) Validate() error {
	if e.Currency.IsNative() {
		return errors.New("exchange rate currency must be a foreign currency")
	}
	if _, err := CurrencyInfoFor(e.Currency); err != nil {
		return err
	}
	if e.Rate.IsZero() {
		return errors.New("exchange rate value is missing")
	}
	if e.ObservedAt.IsZero() {
		return errors.New("exchange rate observation time is missing")
	}
	return nil
}

// RateSnapshot is the last-known quote per kind plus the time the set was
// written. It is the unit of persistence: overwritten whole on every
// successful refresh, never expired by a timer.
type RateSnapshot struct {
	Rates     map[RateKind]ExchangeRate `json:"rates"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// Clone returns a deep-enough copy so callers can hold a snapshot without
// observing later cache writes.
func (s RateSnapshot) Clone() RateSnapshot {
	out := RateSnapshot{UpdatedAt: s.UpdatedAt}
	if s.Rates != nil {
		out.Rates = make(map[RateKind]ExchangeRate, len(s.Rates))
		for k, v := range s.Rates {
			out.Rates[k] = v
		}
	}
	return out
}

// FallbackRates are the documented cold-start constants used when a
// conversion is requested before any rate was ever fetched or restored.
// Real cached data, however stale, always wins over these.
var FallbackRates = map[Currency]Rate{
	USD: MustRate(1000),
}

// Selection is the user's display choice: which currency to render amounts
// in and, when that currency is foreign, which market rate to apply.
type Selection struct {
	DisplayCurrency Currency  `json:"display_currency"`
	RateKind        RateKind  `json:"rate_kind"`
	LastUpdate      time.Time `json:"last_update"`
}

// DefaultSelection is the selection used when storage is empty or corrupt.
func DefaultSelection() Selection {
	return Selection{
		DisplayCurrency: NativeCurrency,
		RateKind:        RateKindOfficial,
	}
}

// Validate checks the selection against the supported enums.
func (s *Selection) Validate() error {
	if _, err := CurrencyInfoFor(s.DisplayCurrency); err != nil {
		return err
	}
	if _, err := ParseRateKind(string(s.RateKind)); err != nil {
		return err
	}
	return nil
}
