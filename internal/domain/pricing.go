package domain

import (
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// Rates maps ISO 4217 currency codes to the conversion rate from the base
// currency. The table is supplied by an external rates source; this package
// never fetches it.
type Rates map[string]float64

// displaySymbols maps the storefront's display symbols to ISO currency codes.
// The base currency has no entry: an unrecognised symbol converts with
// rate 1.
var displaySymbols = map[string]currency.Unit{
	"€":   mustUnit("EUR"),
	"₽":   mustUnit("RUB"),
	"Ch¥": mustUnit("CNY"),
	"Jp¥": mustUnit("JPY"),
	"₩":   mustUnit("KRW"),
	"₹":   mustUnit("INR"),
}

func mustUnit(code string) currency.Unit {
	unit, err := currency.ParseISO(code)
	if err != nil {
		panic("pricing: invalid currency code " + code)
	}
	return unit
}

// RateFor selects the conversion rate for a display symbol. Unknown symbols
// and codes missing from the table fall back to 1, meaning no conversion.
func RateFor(symbol string, rates Rates) float64 {
	unit, ok := displaySymbols[strings.TrimSpace(symbol)]
	if !ok {
		return 1
	}
	rate, ok := rates[unit.String()]
	if !ok || rate <= 0 {
		return 1
	}
	return rate
}

// DisplayPrice converts a base price using the rate for the display symbol
// and formats it with two decimal places.
func DisplayPrice(price float64, symbol string, rates Rates) string {
	return strconv.FormatFloat(price*RateFor(symbol, rates), 'f', 2, 64)
}
