package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/quince-goods/storefront/internal/domain"
	"github.com/quince-goods/storefront/internal/repositories"
	"github.com/quince-goods/storefront/internal/repositories/localstore"
	"github.com/quince-goods/storefront/internal/services"
)

type notFoundErr struct{}

func (notFoundErr) Error() string       { return "not found" }
func (notFoundErr) IsNotFound() bool    { return true }
func (notFoundErr) IsConflict() bool    { return false }
func (notFoundErr) IsUnavailable() bool { return false }

type stubCatalog struct {
	products map[string]domain.Product
	reviews  map[string][]domain.Review
}

func (c *stubCatalog) FindProduct(_ context.Context, id string) (domain.Product, error) {
	product, ok := c.products[id]
	if !ok {
		return domain.Product{}, notFoundErr{}
	}
	return product, nil
}

func (c *stubCatalog) ListProducts(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(c.products))
	for _, product := range c.products {
		out = append(out, product)
	}
	return out, nil
}

func (c *stubCatalog) InitialReviews(_ context.Context, id string) ([]domain.Review, error) {
	return c.reviews[id], nil
}

var _ repositories.ProductCatalog = (*stubCatalog)(nil)

func testCatalog() *stubCatalog {
	return &stubCatalog{
		products: map[string]domain.Product{
			"p1": {ID: "p1", Title: "Teapot", Description: "Cast iron", Price: 10, Available: 4},
			"p2": {ID: "p2", Title: "Cup", Price: 3, Available: 0},
		},
		reviews: map[string][]domain.Review{
			"p1": {
				{ID: "seed", Name: "Mika", ReviewText: "<p>Solid.</p>", CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
	}
}

func newCartFixture(t *testing.T) (services.CartService, *localstore.MemoryStore, *services.Badge) {
	t.Helper()
	store := localstore.NewMemoryStore()
	badge := services.NewBadge()
	cart, err := services.NewCartService(services.CartServiceDeps{Store: store, Events: badge})
	if err != nil {
		t.Fatalf("NewCartService: %v", err)
	}
	return cart, store, badge
}
