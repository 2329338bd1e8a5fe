package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quince-goods/storefront/internal/domain"
	"github.com/quince-goods/storefront/internal/repositories"
)

// Catalog serves products and their initial review lists from a static JSON
// snapshot. The CMS that owns this data upstream is out of scope; the
// snapshot stands in for its published state.
type Catalog struct {
	products map[string]domain.Product
	order    []string
	reviews  map[string][]domain.Review
}

var _ repositories.ProductCatalog = (*Catalog)(nil)

type catalogFile struct {
	Products []catalogProduct `json:"products"`
}

type catalogProduct struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Available   int             `json:"available"`
	Reviews     []catalogReview `json:"reviews"`
}

type catalogReview struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Name       string    `json:"name"`
	ReviewText string    `json:"reviewText"`
}

// NewCatalogFromFile loads the catalog snapshot from path.
func NewCatalogFromFile(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("localstore: catalog path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("localstore: read catalog: %w", err)
	}
	return NewCatalog(raw)
}

// NewCatalog parses a catalog snapshot from raw JSON.
func NewCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("localstore: decode catalog: %w", err)
	}

	catalog := &Catalog{
		products: make(map[string]domain.Product, len(file.Products)),
		reviews:  make(map[string][]domain.Review, len(file.Products)),
	}
	for _, p := range file.Products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, errors.New("localstore: catalog product missing id")
		}
		if _, exists := catalog.products[id]; exists {
			return nil, fmt.Errorf("localstore: duplicate catalog product %q", id)
		}
		catalog.products[id] = domain.Product{
			ID:          id,
			Title:       p.Title,
			Company:     p.Company,
			Description: p.Description,
			Price:       p.Price,
			Available:   p.Available,
		}
		catalog.order = append(catalog.order, id)

		reviews := make([]domain.Review, 0, len(p.Reviews))
		for _, r := range p.Reviews {
			reviews = append(reviews, domain.Review{
				ID:         r.ID,
				CreatedAt:  r.CreatedAt,
				Name:       r.Name,
				ReviewText: r.ReviewText,
			})
		}
		catalog.reviews[id] = reviews
	}
	return catalog, nil
}

// FindProduct returns the product for the id or a not-found error.
func (c *Catalog) FindProduct(ctx context.Context, productID string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}
	product, ok := c.products[strings.TrimSpace(productID)]
	if !ok {
		return domain.Product{}, notFoundError("localstore: find product", fmt.Errorf("product %q not in catalog", productID))
	}
	return product, nil
}

// ListProducts returns all products in snapshot order.
func (c *Catalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out, nil
}

// InitialReviews returns a copy of the seed review list for the product.
func (c *Catalog) InitialReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(productID)
	if _, ok := c.products[id]; !ok {
		return nil, notFoundError("localstore: initial reviews", fmt.Errorf("product %q not in catalog", productID))
	}
	reviews := c.reviews[id]
	out := make([]domain.Review, len(reviews))
	copy(out, reviews)
	return out, nil
}
