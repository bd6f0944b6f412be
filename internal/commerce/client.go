// Package commerce wraps the external catalog and orders-shim APIs behind an
// authenticated client with normalized JSON responses.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Doer abstracts the underlying HTTP client so tests and the circuit-breaker
// wrapper can be injected interchangeably.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds the upstream endpoints and fixed order parameters.
type Config struct {
	// CatalogURL is the full catalog query endpoint, including query string.
	CatalogURL string

	// OrdersBaseURL is the orders-shim API root, e.g.
	// "https://orders-shim-ext.cp.api.test.godaddy.com/v2".
	OrdersBaseURL string

	Currency string
	MarketID string

	// TermType and TermCount describe the free-trial term requested from the
	// catalog (MONTH x 12).
	TermType  string
	TermCount int
}

// Client calls the upstream commerce APIs. Every call is a POST carrying the
// caller's SSO token; mutating calls additionally carry an Idempotent-Id
// header so the upstream can deduplicate.
type Client struct {
	cfg    Config
	doer   Doer
	logger *slog.Logger
}

// New creates a commerce client.
func New(cfg Config, doer Doer, logger *slog.Logger) *Client {
	return &Client{cfg: cfg, doer: doer, logger: logger}
}

// Result is the normalized outcome of an upstream call. Body is always valid
// JSON: non-JSON upstream bodies are wrapped per the normalization rules.
type Result struct {
	Status int
	Body   json.RawMessage
}

// OK reports whether the upstream returned a 2xx status.
func (r *Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// ErrorMessage extracts a human-readable error from a normalized body.
func (r *Result) ErrorMessage() string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return string(r.Body)
}

type termRequest struct {
	TermType      string `json:"termType"`
	NumberOfTerms int    `json:"numberOfTerms"`
}

type catalogQueryRequest struct {
	Currency       string      `json:"currency"`
	MarketID       string      `json:"marketId"`
	CuratedOfferID string      `json:"curatedOfferId"`
	Term           termRequest `json:"term"`
}

// OrderItem is a single line item in an order creation request.
type OrderItem struct {
	Key  string          `json:"key"`
	Item OrderItemDetail `json:"item"`
}

// OrderItemDetail references the catalog instance being purchased.
type OrderItemDetail struct {
	CatalogInstanceKey string `json:"catalogInstanceKey"`
	Intent             string `json:"intent,omitempty"`
}

type orderRequest struct {
	Currency string      `json:"currency"`
	MarketID string      `json:"marketId"`
	Items    []OrderItem `json:"items"`
}

type fulfillRequest struct {
	Notes string `json:"notes"`
}

// FreeTrialIntent marks order items claimed under the student free trial.
const FreeTrialIntent = "FREE_TRIAL_PURCHASE"

const fulfillNotes = "Student account fulfillfree"

// QueryOffer asks the catalog for the purchasable plans of a curated offer
// under the configured market and term.
func (c *Client) QueryOffer(ctx context.Context, token, offerID string) (*Result, error) {
	payload := catalogQueryRequest{
		Currency:       c.cfg.Currency,
		MarketID:       c.cfg.MarketID,
		CuratedOfferID: offerID,
		Term:           termRequest{TermType: c.cfg.TermType, NumberOfTerms: c.cfg.TermCount},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog query: %w", err)
	}
	return c.post(ctx, "catalog", c.cfg.CatalogURL, token, "", body)
}

// QueryOfferRaw forwards an arbitrary catalog query payload unchanged. Used
// by the catalog proxy endpoint.
func (c *Client) QueryOfferRaw(ctx context.Context, token string, payload []byte) (*Result, error) {
	return c.post(ctx, "catalog", c.cfg.CatalogURL, token, "", payload)
}

// CreateOrder adds items to the order container identified by basketID.
func (c *Client) CreateOrder(ctx context.Context, token, customerID, basketID, idempotentID string, items []OrderItem) (*Result, error) {
	payload := orderRequest{
		Currency: c.cfg.Currency,
		MarketID: c.cfg.MarketID,
		Items:    items,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}
	url := fmt.Sprintf("%s/customers/%s/orders/%s/add", c.cfg.OrdersBaseURL, customerID, basketID)
	return c.post(ctx, "orders", url, token, idempotentID, body)
}

// CreateOrderRaw forwards an arbitrary order payload unchanged. Used by the
// orders proxy endpoint.
func (c *Client) CreateOrderRaw(ctx context.Context, token, customerID, basketID, idempotentID string, payload []byte) (*Result, error) {
	url := fmt.Sprintf("%s/customers/%s/orders/%s/add", c.cfg.OrdersBaseURL, customerID, basketID)
	return c.post(ctx, "orders", url, token, idempotentID, payload)
}

// FulfillFree converts the order identified by orderID into a zero-cost
// fulfillment.
func (c *Client) FulfillFree(ctx context.Context, token, customerID, orderID, idempotentID string) (*Result, error) {
	body, err := json.Marshal(fulfillRequest{Notes: fulfillNotes})
	if err != nil {
		return nil, fmt.Errorf("marshal fulfill request: %w", err)
	}
	url := fmt.Sprintf("%s/customers/%s/orders/%s/fulfillFree", c.cfg.OrdersBaseURL, customerID, orderID)
	return c.post(ctx, "fulfillFree", url, token, idempotentID, body)
}

// post issues an authenticated POST and normalizes the response body.
func (c *Client) post(ctx context.Context, service, url, token, idempotentID string, payload []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", service, err)
	}
	req.Header.Set("Authorization", "sso-jwt "+token)
	req.Header.Set("Content-Type", "application/json")
	if idempotentID != "" {
		req.Header.Set("Idempotent-Id", idempotentID)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call %s service: %w", service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", service, err)
	}

	c.logger.DebugContext(ctx, "upstream response",
		slog.String("service", service),
		slog.Int("status", resp.StatusCode),
	)

	return &Result{Status: resp.StatusCode, Body: normalize(resp.StatusCode, raw)}, nil
}

// normalize makes every upstream body valid JSON. JSON bodies pass through
// unchanged; non-JSON failure bodies become {"error": "API Error (<status>):
// <text>"}; non-JSON success bodies become {"data": "<text>"}.
func normalize(status int, raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return trimmed
	}

	text := string(raw)
	if status < 200 || status >= 300 {
		wrapped, _ := json.Marshal(map[string]string{
			"error": fmt.Sprintf("API Error (%d): %s", status, text),
		})
		return wrapped
	}
	wrapped, _ := json.Marshal(map[string]string{"data": text})
	return wrapped
}

// FirstCatalogInstanceKey extracts the instance key of the first plan from a
// catalog query response. Returns false when the response has no plans or the
// first plan's key is empty.
func FirstCatalogInstanceKey(body json.RawMessage) (string, bool) {
	var resp struct {
		Plans []struct {
			CatalogInstanceKey string `json:"catalogInstanceKey"`
		} `json:"plans"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	if len(resp.Plans) == 0 || resp.Plans[0].CatalogInstanceKey == "" {
		return "", false
	}
	return resp.Plans[0].CatalogInstanceKey, true
}
