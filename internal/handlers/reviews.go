package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/quince-goods/storefront/internal/platform/httpx"
	"github.com/quince-goods/storefront/internal/repositories"
	"github.com/quince-goods/storefront/internal/services"
)

const maxReviewBodySize = 32 * 1024

// ReviewHandlers exposes per-product review listing and submission.
type ReviewHandlers struct {
	catalog   repositories.ProductCatalog
	editor    services.Editor
	submitter services.ReviewSubmitter

	mu     sync.Mutex
	boards map[string]*services.ReviewBoard
	forms  map[string]*services.ReviewForm
}

// NewReviewHandlers constructs a new ReviewHandlers instance.
func NewReviewHandlers(catalog repositories.ProductCatalog, editor services.Editor, submitter services.ReviewSubmitter) *ReviewHandlers {
	return &ReviewHandlers{
		catalog:   catalog,
		editor:    editor,
		submitter: submitter,
		boards:    make(map[string]*services.ReviewBoard),
		forms:     make(map[string]*services.ReviewForm),
	}
}

// Routes registers the review endpoints underneath the products group.
func (h *ReviewHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/{productId}/reviews", h.listReviews)
	r.Post("/{productId}/reviews", h.createReview)
}

func (h *ReviewHandlers) boardFor(ctx context.Context, productID string) (*services.ReviewBoard, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if board, ok := h.boards[productID]; ok {
		return board, nil
	}
	initial, err := h.catalog.InitialReviews(ctx, productID)
	if err != nil {
		return nil, err
	}
	board := services.NewReviewBoard(initial)
	h.boards[productID] = board
	return board, nil
}

func (h *ReviewHandlers) formFor(ctx context.Context, productID string) (*services.ReviewForm, error) {
	board, err := h.boardFor(ctx, productID)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if form, ok := h.forms[productID]; ok {
		return form, nil
	}
	form, err := services.NewReviewForm(productID, services.ReviewFormDeps{
		Editor:    h.editor,
		Submitter: h.submitter,
		Board:     board,
	})
	if err != nil {
		return nil, err
	}
	h.forms[productID] = form
	return form, nil
}

func (h *ReviewHandlers) listReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "product catalog unavailable", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if _, err := h.catalog.FindProduct(ctx, productID); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	board, err := h.boardFor(ctx, productID)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	reviews := board.Sorted()
	items := make([]reviewPayload, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, buildReviewPayload(review))
	}
	writeJSONResponse(w, http.StatusOK, reviewListResponse{Reviews: items})
}

func (h *ReviewHandlers) createReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil || h.submitter == nil {
		httpx.WriteError(ctx, w, httpx.NewError("review_service_unavailable", "review service unavailable", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if _, err := h.catalog.FindProduct(ctx, productID); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	body, err := readLimitedBody(r, maxReviewBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createReviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	form, err := h.formFor(ctx, productID)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	form.SetName(strings.TrimSpace(req.Name))
	form.SetEmail(strings.TrimSpace(req.Email))
	if err := form.SetMessageMarkup(req.ReviewText); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid review markup", http.StatusBadRequest))
		return
	}

	review, err := form.Submit(ctx)
	if err != nil {
		writeReviewError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, createReviewResponse{
		Review: buildReviewPayload(review),
	})
}

type createReviewRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ReviewText string `json:"reviewText"`
}

type createReviewResponse struct {
	Review reviewPayload `json:"review"`
}

type reviewListResponse struct {
	Reviews []reviewPayload `json:"reviews"`
}

type reviewPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ReviewText string `json:"reviewText"`
	CreatedAt  string `json:"createdAt"`
}

func buildReviewPayload(review services.Review) reviewPayload {
	return reviewPayload{
		ID:         review.ID,
		Name:       review.Name,
		ReviewText: review.ReviewText,
		CreatedAt:  formatTime(review.CreatedAt),
	}
}

func writeReviewError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrReviewValidation):
		details := map[string]any{}
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			fields := make(map[string]any, len(verr.Fields))
			for name, message := range verr.Fields {
				fields[name] = message
			}
			details["fields"] = fields
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "review fields failed validation", http.StatusBadRequest).WithDetails(details))
	case errors.Is(err, services.ErrReviewSubmitInFlight):
		httpx.WriteError(ctx, w, httpx.NewError("review_in_flight", "a review submission is already running", http.StatusConflict))
	case errors.Is(err, services.ErrReviewSubmission):
		httpx.WriteError(ctx, w, httpx.NewError("review_submission_failed", "the review service rejected the submission", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("review_error", "failed to process review request", http.StatusInternalServerError))
	}
}
