package localstore

import (
	"context"
	"testing"

	"github.com/quince-goods/storefront/internal/repositories"
)

const catalogFixture = `{
  "products": [
    {
      "id": "p1",
      "title": "Walnut desk organiser",
      "company": "Quince Goods",
      "description": "Five compartments, oiled finish.",
      "price": 42.5,
      "available": 4,
      "reviews": [
        {"id": "r1", "createdAt": "2023-01-01T00:00:00Z", "name": "Mia", "reviewText": "<p>Lovely grain.</p>"},
        {"id": "r2", "createdAt": "2023-06-01T00:00:00Z", "name": "Noor", "reviewText": "<p>Solid build.</p>"}
      ]
    },
    {"id": "p2", "title": "Brass page holder", "price": 12, "available": 0}
  ]
}`

func TestCatalogFindProduct(t *testing.T) {
	catalog, err := NewCatalog([]byte(catalogFixture))
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	product, err := catalog.FindProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if product.Title != "Walnut desk organiser" || product.Available != 4 {
		t.Fatalf("unexpected product %+v", product)
	}

	_, err = catalog.FindProduct(context.Background(), "nope")
	if !repositories.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCatalogListProductsKeepsSnapshotOrder(t *testing.T) {
	catalog, err := NewCatalog([]byte(catalogFixture))
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	products, err := catalog.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 2 || products[0].ID != "p1" || products[1].ID != "p2" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestCatalogInitialReviewsReturnsCopy(t *testing.T) {
	catalog, err := NewCatalog([]byte(catalogFixture))
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	first, err := catalog.InitialReviews(context.Background(), "p1")
	if err != nil {
		t.Fatalf("initial reviews: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 seed reviews, got %d", len(first))
	}
	first[0].Name = "mutated"

	second, err := catalog.InitialReviews(context.Background(), "p1")
	if err != nil {
		t.Fatalf("initial reviews: %v", err)
	}
	if second[0].Name != "Mia" {
		t.Fatalf("expected catalog copy to be isolated, got %q", second[0].Name)
	}
}

func TestCatalogRejectsDuplicateProducts(t *testing.T) {
	_, err := NewCatalog([]byte(`{"products":[{"id":"p1"},{"id":"p1"}]}`))
	if err == nil {
		t.Fatal("expected duplicate product error")
	}
}
