package entity

import (
	"fmt"

	"golang.org/x/text/language"
)

// Currency is an ISO 4217 currency code supported by the platform.
type Currency string

const (
	// ARS is the Argentine peso, the native currency all domain amounts
	// are stored in.
	ARS Currency = "ARS"
	// USD is the US dollar, available as a display currency.
	USD Currency = "USD"
)

// NativeCurrency is the unit every domain amount is stored in. Exactly one
// currency is native; all others require an exchange rate to display.
const NativeCurrency = ARS

// CurrencyInfo carries the formatting metadata for a currency. Decimal-place
// count is a property of the currency, not of the amount being rendered.
type CurrencyInfo struct {
	Code     Currency
	Symbol   string
	Name     string
	Decimals int
	Locale   language.Tag
}

var currencies = map[Currency]CurrencyInfo{
	ARS: {
		Code:     ARS,
		Symbol:   "$",
		Name:     "Peso argentino",
		Decimals: 2,
		Locale:   language.MustParse("es-AR"),
	},
	USD: {
		Code:     USD,
		Symbol:   "US$",
		Name:     "US Dollar",
		Decimals: 2,
		Locale:   language.MustParse("en-US"),
	},
}

// CurrencyInfoFor returns the formatting metadata for a currency code.
func CurrencyInfoFor(c Currency) (CurrencyInfo, error) {
	info, ok := currencies[c]
	if !ok {
		return CurrencyInfo{}, fmt.Errorf("unknown currency: %q", c)
	}
	return info, nil
}

// ParseCurrency validates a raw code against the supported set.
func ParseCurrency(raw string) (Currency, error) {
	c := Currency(raw)
	if _, ok := currencies[c]; !ok {
		return "", fmt.Errorf("unknown currency: %q", raw)
	}
	return c, nil
}

// IsNative reports whether the currency is the native storage currency.
func (c Currency) IsNative() bool {
	return c == NativeCurrency
}

// Currencies returns every supported currency, native first.
func Currencies() []Currency {
	out := []Currency{NativeCurrency}
	for c := range currencies {
		if !c.IsNative() {
			out = append(out, c)
		}
	}
	return out
}
