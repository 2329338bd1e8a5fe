package repositories

import (
	"context"
	"errors"

	"github.com/quince-goods/storefront/internal/domain"
)

// CartStore is the minimal key-value persistence behind the cart: one named
// slot holding the JSON-serialized cart list. An absent slot is an empty
// cart. Writes replace the whole slot value; a read-modify-write cycle is not
// atomic across concurrent writers and the last writer wins silently.
type CartStore interface {
	// Load reads the slot. An absent slot yields an empty list and no error;
	// malformed slot content surfaces as an error.
	Load(ctx context.Context) (domain.CartList, error)
	// Save replaces the entire slot value.
	Save(ctx context.Context, list domain.CartList) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// ProductCatalog supplies the host-page product data and the initial review
// list per product. The upstream CMS is an external collaborator; local
// implementations read a static snapshot.
type ProductCatalog interface {
	FindProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	InitialReviews(ctx context.Context, productID string) ([]domain.Review, error)
}

// RepositoryError wraps low-level persistence failures with categorisation
// used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether err carries not-found repository semantics.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsUnavailable reports whether err carries unavailable repository semantics.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}
