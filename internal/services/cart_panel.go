package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quince-goods/storefront/internal/domain"
)

var errCartPanelService = errors.New("cart panel: cart service is required")

// PanelSnapshot is the render-ready view of the add-to-cart block for one
// product.
type PanelSnapshot struct {
	View             PanelView
	SelectedQuantity int
	QuantityInCart   int
	QuantityOptions  []int
}

// CartPanel tracks the add-to-cart block state for a single product: which of
// the three panel views to show and which quantity is selected in the picker.
// The selected quantity is presentation state and is not persisted.
type CartPanel struct {
	cart      CartService
	productID string
	stock     int

	mu       sync.Mutex
	inCart   bool
	quantity int
	selected int
}

// NewCartPanel constructs a panel for the product. The selected quantity
// starts at 1 regardless of stock.
func NewCartPanel(cart CartService, productID string, availableStock int) (*CartPanel, error) {
	if cart == nil {
		return nil, errCartPanelService
	}
	return &CartPanel{
		cart:      cart,
		productID: productID,
		stock:     availableStock,
		selected:  1,
	}, nil
}

// Recompute re-reads the membership fact from the cart. Call it on mount and
// whenever the surrounding page navigates to this product.
func (p *CartPanel) Recompute(ctx context.Context) (PanelSnapshot, error) {
	membership, err := p.cart.RecomputeMembership(ctx, p.productID)
	if err != nil {
		return PanelSnapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inCart = membership.InCart
	p.quantity = membership.Quantity
	return p.snapshotLocked(), nil
}

// SelectQuantity records the picker choice without touching the cart.
func (p *CartPanel) SelectQuantity(quantity int) (PanelSnapshot, error) {
	if quantity < 1 || quantity > p.stock {
		return PanelSnapshot{}, fmt.Errorf("%w: quantity %d is not selectable", ErrCartInvalidInput, quantity)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = quantity
	return p.snapshotLocked(), nil
}

// Add puts the currently selected quantity into the cart and flips the panel
// to its in-cart view.
func (p *CartPanel) Add(ctx context.Context) (PanelSnapshot, error) {
	p.mu.Lock()
	selected := p.selected
	p.mu.Unlock()

	membership, err := p.cart.AddToCart(ctx, p.productID, selected, p.stock)
	if err != nil {
		return PanelSnapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inCart = membership.InCart
	p.quantity = membership.Quantity
	return p.snapshotLocked(), nil
}

// Cancel removes the product from the cart and returns the panel to its
// picker view.
func (p *CartPanel) Cancel(ctx context.Context) (PanelSnapshot, error) {
	if _, err := p.cart.CancelAdding(ctx, p.productID); err != nil {
		return PanelSnapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inCart = false
	p.quantity = 0
	return p.snapshotLocked(), nil
}

// Snapshot returns the current view without re-reading the cart.
func (p *CartPanel) Snapshot() PanelSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *CartPanel) snapshotLocked() PanelSnapshot {
	return PanelSnapshot{
		View:             domain.PanelViewFor(p.stock, p.inCart),
		SelectedQuantity: p.selected,
		QuantityInCart:   p.quantity,
		QuantityOptions:  domain.QuantityOptions(p.stock),
	}
}
