package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quince-goods/storefront/internal/repositories"
)

var (
	errCartStoreRequired = errors.New("cart service: store is required")

	// ErrCartInvalidInput indicates the caller supplied invalid input.
	ErrCartInvalidInput = errors.New("cart service: invalid input")
	// ErrCartUnavailable indicates the persisted cart slot cannot be read or
	// written.
	ErrCartUnavailable = errors.New("cart service: unavailable")
)

// CartServiceDeps wires the slot store and the change publisher for cart
// operations.
type CartServiceDeps struct {
	Store  repositories.CartStore
	Events CartEventPublisher
	Logger func(context.Context, string, map[string]any)
}

type cartService struct {
	store  repositories.CartStore
	events CartEventPublisher
	logger func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Store == nil {
		return nil, errCartStoreRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &cartService{
		store:  deps.Store,
		events: deps.Events,
		logger: logger,
	}, nil
}

// RecomputeMembership re-derives the cart fact for the product from the
// persisted slot. It is idempotent and side-effect free; callers invoke it on
// mount and on every navigation because the membership fact depends on the
// route-identified product, not on component lifetime.
func (s *cartService) RecomputeMembership(ctx context.Context, productID string) (CartMembership, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return CartMembership{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}

	list, err := s.load(ctx)
	if err != nil {
		return CartMembership{}, err
	}

	entry, ok := list.Find(productID)
	if !ok {
		return CartMembership{}, nil
	}
	return CartMembership{InCart: true, Quantity: entry.Quantity}, nil
}

// AddToCart replaces (never accumulates) the entry for the product with the
// selected quantity, persists the whole list, and notifies listeners.
func (s *cartService) AddToCart(ctx context.Context, productID string, quantity, availableStock int) (CartMembership, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return CartMembership{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	if quantity < 1 {
		return CartMembership{}, fmt.Errorf("%w: quantity must be at least 1", ErrCartInvalidInput)
	}
	if availableStock <= 0 {
		return CartMembership{}, fmt.Errorf("%w: product is out of stock", ErrCartInvalidInput)
	}
	if quantity > availableStock {
		return CartMembership{}, fmt.Errorf("%w: quantity %d exceeds available stock %d", ErrCartInvalidInput, quantity, availableStock)
	}

	list, err := s.load(ctx)
	if err != nil {
		return CartMembership{}, err
	}

	updated := list.Upsert(CartEntry{ProductID: productID, Quantity: quantity})
	if err := s.save(ctx, updated); err != nil {
		return CartMembership{}, err
	}

	s.logger(ctx, "cart.added", map[string]any{
		"productID": productID,
		"quantity":  quantity,
	})
	s.publish(ctx)
	return CartMembership{InCart: true, Quantity: quantity}, nil
}

// CancelAdding removes the entry for the product (a no-op when absent),
// persists the list, and notifies listeners.
func (s *cartService) CancelAdding(ctx context.Context, productID string) (CartMembership, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return CartMembership{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}

	list, err := s.load(ctx)
	if err != nil {
		return CartMembership{}, err
	}

	if err := s.save(ctx, list.Remove(productID)); err != nil {
		return CartMembership{}, err
	}

	s.logger(ctx, "cart.cancelled", map[string]any{
		"productID": productID,
	})
	s.publish(ctx)
	return CartMembership{}, nil
}

// TotalQuantity sums the selected quantities across the whole cart, for
// badge-style displays elsewhere on the page.
func (s *cartService) TotalQuantity(ctx context.Context) (int, error) {
	list, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return list.TotalQuantity(), nil
}

func (s *cartService) load(ctx context.Context) (CartList, error) {
	list, err := s.store.Load(ctx)
	if err != nil {
		if repositories.IsUnavailable(err) {
			return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
		}
		// Malformed slot content propagates as a parse failure; the absent
		// slot is the only defended case.
		return nil, err
	}
	return list, nil
}

func (s *cartService) save(ctx context.Context, list CartList) error {
	if err := s.store.Save(ctx, list); err != nil {
		s.logger(ctx, "cart.save_failed", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return nil
}

func (s *cartService) publish(ctx context.Context) {
	if s.events == nil {
		return
	}
	s.events.PublishCartChanged(ctx)
}
