// Package reviewapi implements the HTTP client for the external
// review-creation API. The API itself is an external collaborator; this
// package only speaks its wire contract.
package reviewapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/quince-goods/storefront/internal/domain"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 256 * 1024
)

// StatusError reports a non-success HTTP status from the review API. Any
// status at or above 400 is a failure.
type StatusError struct {
	Status int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("review api: status %d", e.Status)
}

// Client posts review submissions to the external API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient constructs a Client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("review api: base url is required")
	}
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// CreateReview submits the review fields for a product and returns the
// created review record extracted from the response envelope. The review
// text travels percent-encoded in the query string, matching the API's
// contract.
func (c *Client) CreateReview(ctx context.Context, productID string, fields domain.ReviewFields) (domain.Review, error) {
	if strings.TrimSpace(productID) == "" {
		return domain.Review{}, errors.New("review api: product id is required")
	}

	query := url.Values{}
	query.Set("type", "postReview")
	query.Set("productId", productID)
	query.Set("name", fields.Name)
	query.Set("email", fields.Email)
	query.Set("reviewText", fields.Message)

	endpoint := c.baseURL + "/api/data?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Review{}, fmt.Errorf("review api: build request: %w", err)
	}
	req.Header.Set("X-Request-ID", ulid.Make().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Review{}, fmt.Errorf("review api: request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return domain.Review{}, &StatusError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return domain.Review{}, fmt.Errorf("review api: read response: %w", err)
	}

	var envelope createReviewEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return domain.Review{}, fmt.Errorf("review api: decode response: %w", err)
	}

	record := envelope.Data.CreateReview.Data
	if record.ID.value == "" {
		return domain.Review{}, errors.New("review api: response missing review id")
	}

	return domain.Review{
		ID:         record.ID.value,
		CreatedAt:  record.Attributes.CreatedAt,
		Name:       record.Attributes.Name,
		ReviewText: record.Attributes.ReviewText,
	}, nil
}

type createReviewEnvelope struct {
	Data struct {
		CreateReview struct {
			Data reviewRecord `json:"data"`
		} `json:"createReview"`
	} `json:"data"`
}

type reviewRecord struct {
	ID         flexibleID `json:"id"`
	Attributes struct {
		CreatedAt  time.Time `json:"createdAt"`
		Name       string    `json:"name"`
		ReviewText string    `json:"reviewText"`
	} `json:"attributes"`
}

// flexibleID accepts the review id as either a JSON number or string.
type flexibleID struct {
	value string
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexibleID) UnmarshalJSON(raw []byte) error {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		f.value = asString
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return fmt.Errorf("review id must be a string or number: %w", err)
	}
	f.value = asNumber.String()
	return nil
}
