package services

import (
	"context"

	"github.com/quince-goods/storefront/internal/domain"
	"github.com/quince-goods/storefront/internal/platform/richtext"
)

// Type aliases expose domain models to the services package without reversing
// dependency direction.
type (
	CartEntry    = domain.CartEntry
	CartList     = domain.CartList
	Review       = domain.Review
	ReviewFields = domain.ReviewFields
	Product      = domain.Product
	PanelView    = domain.PanelView
	Rates        = domain.Rates
)

// CartMembership is the derived cart fact for one product: whether it is in
// the cart and at what quantity.
type CartMembership struct {
	InCart   bool
	Quantity int
}

// CartService keeps cart facts consistent with the persisted slot. Membership
// is always re-derived from the slot, never cached across navigations.
type CartService interface {
	RecomputeMembership(ctx context.Context, productID string) (CartMembership, error)
	AddToCart(ctx context.Context, productID string, quantity, availableStock int) (CartMembership, error)
	CancelAdding(ctx context.Context, productID string) (CartMembership, error)
	TotalQuantity(ctx context.Context) (int, error)
}

// CartEventPublisher broadcasts that cart contents changed. It carries no
// payload; listeners must refresh their cart-derived state on any
// notification. Only the two cart-mutating operations publish.
type CartEventPublisher interface {
	PublishCartChanged(ctx context.Context)
}

// Editor is the opaque rich-text capability the review pipeline depends on:
// bidirectional conversion between the structured draft document and
// transmissible markup.
type Editor interface {
	Render(doc richtext.Document) (string, error)
	Parse(markup string) (richtext.Document, error)
}

// ReviewSubmitter posts validated review fields to the external
// review-creation API and returns the created review record.
type ReviewSubmitter interface {
	CreateReview(ctx context.Context, productID string, fields domain.ReviewFields) (domain.Review, error)
}

// RatesSource supplies the currency conversion table. Fetching the table is
// external; implementations only hand over what was already fetched.
type RatesSource interface {
	Rates(ctx context.Context) (domain.Rates, error)
}

// StaticRates adapts a fixed table to RatesSource.
type StaticRates domain.Rates

// Rates returns the fixed table.
func (r StaticRates) Rates(context.Context) (domain.Rates, error) {
	return domain.Rates(r), nil
}
