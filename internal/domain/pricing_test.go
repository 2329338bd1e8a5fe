package domain

import "testing"

func TestDisplayPriceAppliesRate(t *testing.T) {
	rates := Rates{"EUR": 0.9}
	if got := DisplayPrice(10, "€", rates); got != "9.00" {
		t.Fatalf("expected 9.00, got %s", got)
	}
}

func TestDisplayPriceUnknownSymbolKeepsBasePrice(t *testing.T) {
	rates := Rates{"EUR": 0.9}
	if got := DisplayPrice(10, "$", rates); got != "10.00" {
		t.Fatalf("expected 10.00, got %s", got)
	}
}

func TestRateFor(t *testing.T) {
	rates := Rates{"JPY": 151.2, "KRW": 1350.5}
	cases := []struct {
		symbol string
		want   float64
	}{
		{symbol: "Jp¥", want: 151.2},
		{symbol: "₩", want: 1350.5},
		{symbol: "₹", want: 1},  // code known, rate missing
		{symbol: "kr", want: 1}, // symbol unknown
	}
	for _, tc := range cases {
		if got := RateFor(tc.symbol, rates); got != tc.want {
			t.Fatalf("RateFor(%q) = %v, want %v", tc.symbol, got, tc.want)
		}
	}
}

func TestRateForIgnoresNonPositiveRates(t *testing.T) {
	if got := RateFor("€", Rates{"EUR": 0}); got != 1 {
		t.Fatalf("expected fallback 1 for zero rate, got %v", got)
	}
}
