package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quince-goods/storefront/internal/platform/httpx"
	"github.com/quince-goods/storefront/internal/repositories"
	"github.com/quince-goods/storefront/internal/services"
)

const maxCartBodySize = 4 * 1024

// CartHandlers exposes endpoints mutating and inspecting the persisted cart.
type CartHandlers struct {
	cart    services.CartService
	catalog repositories.ProductCatalog
	store   repositories.CartStore
}

// NewCartHandlers constructs a new CartHandlers instance.
func NewCartHandlers(cart services.CartService, catalog repositories.ProductCatalog, store repositories.CartStore) *CartHandlers {
	return &CartHandlers{
		cart:    cart,
		catalog: catalog,
		store:   store,
	}
}

// Routes registers the /cart endpoints.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Put("/{productId}", h.addToCart)
	r.Delete("/{productId}", h.cancelAdding)
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.store == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart storage unavailable", http.StatusServiceUnavailable))
		return
	}

	list, err := h.store.Load(ctx)
	if err != nil {
		if repositories.IsUnavailable(err) {
			httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart storage unavailable", http.StatusServiceUnavailable))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to read cart", http.StatusInternalServerError))
		return
	}

	entries := make([]cartEntryPayload, 0, len(list))
	for _, entry := range list {
		entries = append(entries, cartEntryPayload{
			ProductID: entry.ProductID,
			Quantity:  entry.Quantity,
		})
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{
		Entries:       entries,
		TotalQuantity: list.TotalQuantity(),
	})
}

func (h *CartHandlers) addToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil || h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service unavailable", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	product, err := h.catalog.FindProduct(ctx, productID)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req addToCartRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	membership, err := h.cart.AddToCart(ctx, product.ID, req.Quantity, product.Available)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, membershipResponse{
		ProductID: product.ID,
		InCart:    membership.InCart,
		Quantity:  membership.Quantity,
	})
}

func (h *CartHandlers) cancelAdding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service unavailable", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	membership, err := h.cart.CancelAdding(ctx, productID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, membershipResponse{
		ProductID: productID,
		InCart:    membership.InCart,
		Quantity:  membership.Quantity,
	})
}

type addToCartRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Entries       []cartEntryPayload `json:"entries"`
	TotalQuantity int                `json:"totalQuantity"`
}

type cartEntryPayload struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"selectedAmount"`
}

type membershipResponse struct {
	ProductID string `json:"productId"`
	InCart    bool   `json:"inCart"`
	Quantity  int    `json:"quantity"`
}
