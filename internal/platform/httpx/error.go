package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/quince-goods/storefront/internal/platform/requestctx"
)

const (
	maxCodeLen    = 80
	maxMessageLen = 512
	maxTraceLen   = 64
)

// Error is the JSON error envelope every storefront endpoint returns on
// failure. Details entries are merged into the top level of the payload.
type Error struct {
	Code      string
	Message   string
	Status    int
	RequestID string
	TraceID   string
	Details   map[string]any
}

// NewError constructs an Error. A zero status renders as 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    clip(code, maxCodeLen),
		Message: clip(message, maxMessageLen),
		Status:  status,
	}
}

// WithRequestID sets the request identifier on the error payload.
func (e Error) WithRequestID(id string) Error {
	e.RequestID = clip(id, maxCodeLen)
	return e
}

// WithTraceID sets the trace identifier on the error payload.
func (e Error) WithTraceID(id string) Error {
	e.TraceID = clip(id, maxTraceLen)
	return e
}

// WithDetails attaches additional JSON-serialisable metadata. The map is
// copied so callers may reuse theirs.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	copied := make(map[string]any, len(details))
	for k, v := range details {
		copied[k] = v
	}
	e.Details = copied
	return e
}

func (e Error) payload(ctx context.Context) (int, map[string]any) {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	requestID := e.RequestID
	if requestID == "" {
		requestID = clip(middleware.GetReqID(ctx), maxCodeLen)
	}
	traceID := e.TraceID
	if traceID == "" {
		traceID = clip(requestctx.TraceID(ctx), maxTraceLen)
	}

	body := map[string]any{
		"error":   e.Code,
		"message": e.Message,
		"status":  status,
	}
	if requestID != "" {
		body["request_id"] = requestID
	}
	if traceID != "" {
		body["trace_id"] = traceID
	}
	for k, v := range e.Details {
		body[k] = v
	}
	return status, body
}

// WriteError renders the error envelope, filling request and trace ids from
// the context when the caller has not set them.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status, body := err.payload(ctx)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func clip(value string, limit int) string {
	if limit <= 0 {
		limit = maxMessageLen
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
