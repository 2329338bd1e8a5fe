package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/quince-goods/storefront/internal/domain"
	"github.com/quince-goods/storefront/internal/platform/httpx"
	"github.com/quince-goods/storefront/internal/repositories"
	"github.com/quince-goods/storefront/internal/services"
)

// ProductHandlers serves product fragments. Fetching a fragment doubles as
// the navigation signal: every GET re-derives the cart membership for the
// requested product before rendering.
type ProductHandlers struct {
	catalog repositories.ProductCatalog
	cart    services.CartService
	prices  *services.PriceDisplay

	mu     sync.Mutex
	panels map[string]*services.CartPanel
}

// NewProductHandlers constructs a new ProductHandlers instance.
func NewProductHandlers(catalog repositories.ProductCatalog, cart services.CartService, prices *services.PriceDisplay) *ProductHandlers {
	return &ProductHandlers{
		catalog: catalog,
		cart:    cart,
		prices:  prices,
		panels:  make(map[string]*services.CartPanel),
	}
}

// Routes registers the /products endpoints.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
	r.Get("/{productId}", h.getProduct)
	r.Put("/{productId}/quantity", h.selectQuantity)
}

func (h *ProductHandlers) panelFor(product services.Product) (*services.CartPanel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if panel, ok := h.panels[product.ID]; ok {
		return panel, nil
	}
	panel, err := services.NewCartPanel(h.cart, product.ID, product.Available)
	if err != nil {
		return nil, err
	}
	h.panels[product.ID] = panel
	return panel, nil
}

func (h *ProductHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "product catalog unavailable", http.StatusServiceUnavailable))
		return
	}

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	symbol := r.URL.Query().Get("currency")
	items := make([]productSummaryPayload, 0, len(products))
	for _, product := range products {
		items = append(items, productSummaryPayload{
			ID:    product.ID,
			Title: product.Title,
			Price: h.displayPrice(ctx, product.Price, symbol),
		})
	}
	writeJSONResponse(w, http.StatusOK, productListResponse{Products: items})
}

func (h *ProductHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil || h.cart == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "product catalog unavailable", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	product, err := h.catalog.FindProduct(ctx, productID)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	panel, err := h.panelFor(product)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to derive cart state", http.StatusInternalServerError))
		return
	}
	snapshot, err := panel.Recompute(ctx)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}

	symbol := r.URL.Query().Get("currency")
	writeJSONResponse(w, http.StatusOK, productFragmentResponse{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       h.displayPrice(ctx, product.Price, symbol),
		Stock:       product.Available,
		Panel:       buildPanelPayload(snapshot),
	})
}

func (h *ProductHandlers) selectQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil || h.cart == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "product catalog unavailable", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	product, err := h.catalog.FindProduct(ctx, productID)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	body, err := readLimitedBody(r, defaultBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req selectQuantityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	panel, err := h.panelFor(product)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to derive cart state", http.StatusInternalServerError))
		return
	}
	snapshot, err := panel.SelectQuantity(req.Quantity)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, panelResponse{Panel: buildPanelPayload(snapshot)})
}

func (h *ProductHandlers) displayPrice(ctx context.Context, price float64, symbol string) string {
	if h.prices == nil {
		return domain.DisplayPrice(price, symbol, nil)
	}
	return h.prices.Display(ctx, price, symbol)
}

type productListResponse struct {
	Products []productSummaryPayload `json:"products"`
}

type productSummaryPayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

type productFragmentResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Price       string       `json:"price"`
	Stock       int          `json:"stock"`
	Panel       panelPayload `json:"panel"`
}

type selectQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type panelResponse struct {
	Panel panelPayload `json:"panel"`
}

type panelPayload struct {
	View             string `json:"view"`
	SelectedQuantity int    `json:"selectedQuantity"`
	QuantityInCart   int    `json:"quantityInCart,omitempty"`
	QuantityOptions  []int  `json:"quantityOptions,omitempty"`
}

func buildPanelPayload(snapshot services.PanelSnapshot) panelPayload {
	return panelPayload{
		View:             panelViewName(snapshot.View),
		SelectedQuantity: snapshot.SelectedQuantity,
		QuantityInCart:   snapshot.QuantityInCart,
		QuantityOptions:  snapshot.QuantityOptions,
	}
}

func panelViewName(view services.PanelView) string {
	switch view {
	case domain.PanelOutOfStock:
		return "outOfStock"
	case domain.PanelInCart:
		return "inCart"
	default:
		return "notInCart"
	}
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case repositories.IsNotFound(err):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case repositories.IsUnavailable(err):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "product catalog unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to read product catalog", http.StatusInternalServerError))
	}
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart storage unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to process cart request", http.StatusInternalServerError))
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errEmptyBody):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}
