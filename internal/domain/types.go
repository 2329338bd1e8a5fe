package domain

import (
	"sort"
	"time"
)

// CartEntry records a product placed in the cart with the quantity the
// shopper selected. JSON tags match the persisted slot format.
type CartEntry struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"selectedAmount"`
}

// CartList is the full value of the persisted cart slot. It is always written
// whole; partial writes never occur. At most one entry exists per product id.
type CartList []CartEntry

// Find returns the entry for the product id and whether it exists.
func (l CartList) Find(productID string) (CartEntry, bool) {
	for _, entry := range l {
		if entry.ProductID == productID {
			return entry, true
		}
	}
	return CartEntry{}, false
}

// Upsert returns a copy of the list with the entry for the product replaced,
// or appended when absent. Re-adding overwrites the quantity rather than
// accumulating it.
func (l CartList) Upsert(entry CartEntry) CartList {
	out := make(CartList, 0, len(l)+1)
	replaced := false
	for _, existing := range l {
		if existing.ProductID == entry.ProductID {
			out = append(out, entry)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, entry)
	}
	return out
}

// Remove returns a copy of the list without the entry for the product id.
// Removing an absent entry is a no-op.
func (l CartList) Remove(productID string) CartList {
	out := make(CartList, 0, len(l))
	for _, existing := range l {
		if existing.ProductID == productID {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// TotalQuantity sums the selected quantities across all entries.
func (l CartList) TotalQuantity() int {
	total := 0
	for _, entry := range l {
		if entry.Quantity > 0 {
			total += entry.Quantity
		}
	}
	return total
}

// Review is the display entity for a published product review.
type Review struct {
	ID         string
	CreatedAt  time.Time
	Name       string
	ReviewText string
}

// SortReviewsNewestFirst orders reviews by creation time descending. The sort
// is stable so reviews sharing a timestamp keep their relative order.
func SortReviewsNewestFirst(reviews []Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

// ReviewFields carries the scalar form fields of a review submission. Message
// holds the transmissible markup derived from the draft document.
type ReviewFields struct {
	Name    string
	Email   string
	Message string
}

// Product is the host-page data the storefront fragments render against.
type Product struct {
	ID          string
	Title       string
	Company     string
	Description string
	Price       float64
	Available   int
}

// PanelView enumerates the derived display states of the add-to-cart panel.
type PanelView string

const (
	// PanelOutOfStock is terminal: no stock, no actions available.
	PanelOutOfStock PanelView = "out_of_stock"
	// PanelNotInCart offers the quantity selector and the add action.
	PanelNotInCart PanelView = "not_in_cart"
	// PanelInCart shows the in-cart quantity and the cancel action.
	PanelInCart PanelView = "in_cart"
)

// PanelViewFor derives the display state from available stock and membership.
// Stock at or below zero wins regardless of membership.
func PanelViewFor(available int, inCart bool) PanelView {
	switch {
	case available <= 0:
		return PanelOutOfStock
	case inCart:
		return PanelInCart
	default:
		return PanelNotInCart
	}
}

// QuantityOptions lists the selectable quantities 1..available inclusive.
// Non-positive stock yields no options; the panel renders out-of-stock
// instead.
func QuantityOptions(available int) []int {
	if available <= 0 {
		return nil
	}
	options := make([]int, 0, available)
	for i := 1; i <= available; i++ {
		options = append(options, i)
	}
	return options
}
