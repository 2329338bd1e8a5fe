package services

import (
	"context"
	"errors"

	"github.com/quince-goods/storefront/internal/domain"
)

var errPricingSourceRequired = errors.New("pricing engine: rates source is required")

// PricingEngineDeps wires the exchange-rate source for price display.
type PricingEngineDeps struct {
	Source RatesSource
	Logger func(context.Context, string, map[string]any)
}

// PriceDisplay converts catalog prices into a display currency. A missing or
// failing rates source never breaks rendering; prices fall back to the base
// currency at rate 1.
type PriceDisplay struct {
	source RatesSource
	logger func(context.Context, string, map[string]any)
}

// NewPriceDisplay constructs a PriceDisplay enforcing dependency validation.
func NewPriceDisplay(deps PricingEngineDeps) (*PriceDisplay, error) {
	if deps.Source == nil {
		return nil, errPricingSourceRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &PriceDisplay{source: deps.Source, logger: logger}, nil
}

// Display formats the price converted into the currency identified by its
// display symbol, rounded to two decimals.
func (p *PriceDisplay) Display(ctx context.Context, price float64, symbol string) string {
	rates, err := p.source.Rates(ctx)
	if err != nil {
		p.logger(ctx, "pricing.rates_unavailable", map[string]any{
			"error": err.Error(),
		})
		rates = nil
	}
	return domain.DisplayPrice(price, symbol, rates)
}

// Rate reports the conversion rate that Display would apply for the symbol.
func (p *PriceDisplay) Rate(ctx context.Context, symbol string) float64 {
	rates, err := p.source.Rates(ctx)
	if err != nil {
		rates = nil
	}
	return domain.RateFor(symbol, rates)
}
