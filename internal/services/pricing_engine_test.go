package services

import (
	"context"
	"errors"
	"testing"

	"github.com/quince-goods/storefront/internal/domain"
)

type failingRates struct{}

func (failingRates) Rates(context.Context) (domain.Rates, error) {
	return nil, errors.New("upstream down")
}

func TestPriceDisplayConverts(t *testing.T) {
	display, err := NewPriceDisplay(PricingEngineDeps{
		Source: StaticRates{"EUR": 0.9, "JPY": 145.2},
	})
	if err != nil {
		t.Fatalf("NewPriceDisplay: %v", err)
	}
	ctx := context.Background()

	if got := display.Display(ctx, 10, "€"); got != "9.00" {
		t.Fatalf("expected 9.00, got %q", got)
	}
	if got := display.Display(ctx, 10, "Jp¥"); got != "1452.00" {
		t.Fatalf("expected 1452.00, got %q", got)
	}
}

func TestPriceDisplayUnknownSymbolFallsBack(t *testing.T) {
	display, err := NewPriceDisplay(PricingEngineDeps{Source: StaticRates{"EUR": 0.9}})
	if err != nil {
		t.Fatalf("NewPriceDisplay: %v", err)
	}

	if got := display.Display(context.Background(), 10, "☆"); got != "10.00" {
		t.Fatalf("expected base price, got %q", got)
	}
}

func TestPriceDisplaySourceFailureFallsBack(t *testing.T) {
	display, err := NewPriceDisplay(PricingEngineDeps{Source: failingRates{}})
	if err != nil {
		t.Fatalf("NewPriceDisplay: %v", err)
	}

	if got := display.Display(context.Background(), 12.5, "€"); got != "12.50" {
		t.Fatalf("expected base price on source failure, got %q", got)
	}
	if rate := display.Rate(context.Background(), "€"); rate != 1 {
		t.Fatalf("expected fallback rate 1, got %v", rate)
	}
}

func TestNewPriceDisplayRequiresSource(t *testing.T) {
	if _, err := NewPriceDisplay(PricingEngineDeps{}); err == nil {
		t.Fatal("expected error for missing source")
	}
}
