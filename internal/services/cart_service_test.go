package services

import (
	"context"
	"errors"
	"testing"

	"github.com/quince-goods/storefront/internal/repositories/localstore"
)

func newTestCartService(t *testing.T) (CartService, *localstore.MemoryStore, *recordingPublisher) {
	t.Helper()
	store := localstore.NewMemoryStore()
	events := &recordingPublisher{}
	svc, err := NewCartService(CartServiceDeps{Store: store, Events: events})
	if err != nil {
		t.Fatalf("NewCartService: %v", err)
	}
	return svc, store, events
}

type recordingPublisher struct {
	published int
}

func (p *recordingPublisher) PublishCartChanged(context.Context) {
	p.published++
}

func TestNewCartServiceRequiresStore(t *testing.T) {
	if _, err := NewCartService(CartServiceDeps{}); err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestRecomputeMembershipAbsentProduct(t *testing.T) {
	svc, _, _ := newTestCartService(t)

	got, err := svc.RecomputeMembership(context.Background(), "p1")
	if err != nil {
		t.Fatalf("RecomputeMembership: %v", err)
	}
	if got.InCart || got.Quantity != 0 {
		t.Fatalf("expected not in cart, got %+v", got)
	}
}

func TestAddToCartThenRecompute(t *testing.T) {
	svc, _, events := newTestCartService(t)
	ctx := context.Background()

	added, err := svc.AddToCart(ctx, "p1", 3, 5)
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if !added.InCart || added.Quantity != 3 {
		t.Fatalf("unexpected membership after add: %+v", added)
	}
	if events.published != 1 {
		t.Fatalf("expected 1 publish, got %d", events.published)
	}

	got, err := svc.RecomputeMembership(ctx, "p1")
	if err != nil {
		t.Fatalf("RecomputeMembership: %v", err)
	}
	if !got.InCart || got.Quantity != 3 {
		t.Fatalf("expected in cart with quantity 3, got %+v", got)
	}
}

func TestAddToCartReplacesQuantity(t *testing.T) {
	svc, store, _ := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "p1", 2, 9); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.AddToCart(ctx, "p1", 5, 9); err != nil {
		t.Fatalf("second add: %v", err)
	}

	list, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected a single entry, got %d", len(list))
	}
	if list[0].Quantity != 5 {
		t.Fatalf("expected quantity 5 (replaced, not accumulated), got %d", list[0].Quantity)
	}
}

func TestAddToCartValidation(t *testing.T) {
	svc, _, events := newTestCartService(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		productID string
		quantity  int
		stock     int
	}{
		{"empty product id", "", 1, 5},
		{"zero quantity", "p1", 0, 5},
		{"negative quantity", "p1", -2, 5},
		{"out of stock", "p1", 1, 0},
		{"quantity exceeds stock", "p1", 6, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddToCart(ctx, tc.productID, tc.quantity, tc.stock)
			if !errors.Is(err, ErrCartInvalidInput) {
				t.Fatalf("expected ErrCartInvalidInput, got %v", err)
			}
		})
	}
	if events.published != 0 {
		t.Fatalf("rejected adds must not publish, got %d events", events.published)
	}
}

func TestCancelAddingRemovesEntry(t *testing.T) {
	svc, _, events := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "p1", 2, 5); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := svc.AddToCart(ctx, "p2", 1, 5); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	got, err := svc.CancelAdding(ctx, "p1")
	if err != nil {
		t.Fatalf("CancelAdding: %v", err)
	}
	if got.InCart {
		t.Fatalf("expected not in cart after cancel, got %+v", got)
	}

	after, err := svc.RecomputeMembership(ctx, "p1")
	if err != nil {
		t.Fatalf("RecomputeMembership: %v", err)
	}
	if after.InCart {
		t.Fatal("p1 still in cart after cancel")
	}
	other, err := svc.RecomputeMembership(ctx, "p2")
	if err != nil {
		t.Fatalf("RecomputeMembership: %v", err)
	}
	if !other.InCart {
		t.Fatal("cancel removed an unrelated entry")
	}
	if events.published != 3 {
		t.Fatalf("expected 3 publishes, got %d", events.published)
	}
}

func TestCancelAddingAbsentIsNoop(t *testing.T) {
	svc, _, _ := newTestCartService(t)

	got, err := svc.CancelAdding(context.Background(), "missing")
	if err != nil {
		t.Fatalf("CancelAdding: %v", err)
	}
	if got.InCart {
		t.Fatalf("expected empty membership, got %+v", got)
	}
}

func TestTotalQuantitySumsEntries(t *testing.T) {
	svc, _, _ := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "p1", 2, 5); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := svc.AddToCart(ctx, "p2", 4, 5); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	total, err := svc.TotalQuantity(ctx)
	if err != nil {
		t.Fatalf("TotalQuantity: %v", err)
	}
	if total != 6 {
		t.Fatalf("expected total 6, got %d", total)
	}
}

func TestCartServiceMalformedSlot(t *testing.T) {
	store := localstore.NewMemoryStore()
	store.Corrupt("{not json")
	svc, err := NewCartService(CartServiceDeps{Store: store})
	if err != nil {
		t.Fatalf("NewCartService: %v", err)
	}

	if _, err := svc.RecomputeMembership(context.Background(), "p1"); err == nil {
		t.Fatal("expected error for malformed slot content")
	}
}
