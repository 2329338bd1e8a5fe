package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quince-goods/storefront/internal/platform/httpx"
	"github.com/quince-goods/storefront/internal/services"
)

const defaultBadgeWait = 25 * time.Second

// BadgeHandlers exposes the cart badge: the total selected quantity plus a
// revision counter that listeners can long-poll on.
type BadgeHandlers struct {
	cart   services.CartService
	badge  *services.Badge
	stream bool
}

// NewBadgeHandlers constructs a new BadgeHandlers instance. Setting stream to
// false disables the long-poll wait and turns every request into an immediate
// read.
func NewBadgeHandlers(cart services.CartService, badge *services.Badge, stream bool) *BadgeHandlers {
	return &BadgeHandlers{
		cart:   cart,
		badge:  badge,
		stream: stream,
	}
}

// Routes registers the /badge endpoints.
func (h *BadgeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getBadge)
}

// getBadge returns the badge state. With ?since=N and streaming enabled the
// request parks until the revision moves past N or the wait window closes.
func (h *BadgeHandlers) getBadge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil || h.badge == nil {
		httpx.WriteError(ctx, w, httpx.NewError("badge_unavailable", "badge service unavailable", http.StatusServiceUnavailable))
		return
	}

	if since, ok := parseSince(r); ok && h.stream {
		ch, cancel := h.badge.Subscribe()
		defer cancel()

		// Re-check after subscribing so changes between the caller's read
		// and the subscription are not missed.
		if h.badge.Revision() <= since {
			timer := time.NewTimer(defaultBadgeWait)
			defer timer.Stop()
			select {
			case <-ch:
			case <-timer.C:
			case <-ctx.Done():
				return
			}
		}
	}

	total, err := h.cart.TotalQuantity(ctx)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, badgeResponse{
		TotalQuantity: total,
		Revision:      h.badge.Revision(),
	})
}

func parseSince(r *http.Request) (uint64, bool) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, false
	}
	since, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return since, true
}

type badgeResponse struct {
	TotalQuantity int    `json:"totalQuantity"`
	Revision      uint64 `json:"revision"`
}
