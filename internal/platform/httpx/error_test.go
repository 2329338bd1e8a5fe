package httpx

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestWriteErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	err := NewError("cart_invalid_input", "quantity out of range", 400).
		WithDetails(map[string]any{"fields": []string{"quantity"}})

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	WriteError(ctx, rr, err)

	if rr.Code != 400 {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body map[string]any
	if decodeErr := json.Unmarshal(rr.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("decode body: %v", decodeErr)
	}
	if body["error"] != "cart_invalid_input" {
		t.Fatalf("expected error code, got %v", body["error"])
	}
	if body["message"] != "quantity out of range" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if body["request_id"] != "req-1" {
		t.Fatalf("expected request id from context, got %v", body["request_id"])
	}
	if _, ok := body["fields"]; !ok {
		t.Fatal("expected details merged into the top-level payload")
	}
}

func TestWriteErrorDefaultsStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(context.Background(), rr, Error{Code: "internal", Message: "boom"})

	if rr.Code != 500 {
		t.Fatalf("expected status 500 for zero status, got %d", rr.Code)
	}
}

func TestNewErrorClipsInput(t *testing.T) {
	err := NewError("code\nwith newline", strings.Repeat("m", 600), 503)
	if strings.Contains(err.Code, "\n") {
		t.Fatal("expected newline stripped from code")
	}
	if len(err.Message) != 512 {
		t.Fatalf("expected message clipped to 512, got %d", len(err.Message))
	}
}
