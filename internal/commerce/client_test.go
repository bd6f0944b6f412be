package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// httpDoer adapts *http.Client to the Doer interface for tests.
type httpDoer struct{}

func (httpDoer) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req.WithContext(ctx))
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(catalogURL, ordersURL string) *Client {
	return New(Config{
		CatalogURL:    catalogURL,
		OrdersBaseURL: ordersURL,
		Currency:      "USD",
		MarketID:      "en-US",
		TermType:      "MONTH",
		TermCount:     12,
	}, httpDoer{}, newTestLogger())
}

func TestQueryOffer(t *testing.T) {
	var gotBody map[string]any
	var gotAuth, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"plans":[{"catalogInstanceKey":"cik-123"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)

	res, err := client.QueryOffer(context.Background(), "tok-abc", "offer-1")
	require.NoError(t, err)
	assert.True(t, res.OK())

	assert.Equal(t, "sso-jwt tok-abc", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "USD", gotBody["currency"])
	assert.Equal(t, "en-US", gotBody["marketId"])
	assert.Equal(t, "offer-1", gotBody["curatedOfferId"])
	term := gotBody["term"].(map[string]any)
	assert.Equal(t, "MONTH", term["termType"])
	assert.Equal(t, float64(12), term["numberOfTerms"])

	key, ok := FirstCatalogInstanceKey(res.Body)
	require.True(t, ok)
	assert.Equal(t, "cik-123", key)
}

func TestCreateOrder(t *testing.T) {
	var gotPath, gotIdempotentID string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotIdempotentID = r.Header.Get("Idempotent-Id")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orderId":"order-1"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)

	res, err := client.CreateOrder(context.Background(), "tok", "cust-1", "order-1", "idem-1", []OrderItem{
		{Key: "item-key", Item: OrderItemDetail{CatalogInstanceKey: "cik-123", Intent: FreeTrialIntent}},
	})
	require.NoError(t, err)
	assert.True(t, res.OK())

	assert.Equal(t, "/customers/cust-1/orders/order-1/add", gotPath)
	assert.Equal(t, "idem-1", gotIdempotentID)

	items := gotBody["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "item-key", item["key"])
	detail := item["item"].(map[string]any)
	assert.Equal(t, "cik-123", detail["catalogInstanceKey"])
	assert.Equal(t, "FREE_TRIAL_PURCHASE", detail["intent"])
}

func TestCreateOrderIdempotency(t *testing.T) {
	// Upstream keyed on Idempotent-Id: a replayed token returns the stored
	// order, a fresh token creates a new one.
	created := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("Idempotent-Id")
		require.NotEmpty(t, id)

		orderID, ok := created[id]
		if !ok {
			orderID = fmt.Sprintf("order-%d", len(created)+1)
			created[id] = orderID
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"orderId":%q}`, orderID)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	items := []OrderItem{
		{Key: "item-1", Item: OrderItemDetail{CatalogInstanceKey: "cik-1", Intent: FreeTrialIntent}},
	}

	first, err := client.CreateOrder(context.Background(), "tok", "cust-1", "basket-1", "idem-a", items)
	require.NoError(t, err)
	require.True(t, first.OK())

	replay, err := client.CreateOrder(context.Background(), "tok", "cust-1", "basket-1", "idem-a", items)
	require.NoError(t, err)
	require.True(t, replay.OK())

	// Same token resolves to the same order without a second creation.
	assert.JSONEq(t, string(first.Body), string(replay.Body))
	assert.Len(t, created, 1)

	fresh, err := client.CreateOrder(context.Background(), "tok", "cust-1", "basket-1", "idem-b", items)
	require.NoError(t, err)
	require.True(t, fresh.OK())

	// A distinct token is a distinct creation attempt.
	assert.Len(t, created, 2)
	assert.NotEqual(t, string(first.Body), string(fresh.Body))
}

func TestFulfillFree(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"fulfilled"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)

	res, err := client.FulfillFree(context.Background(), "tok", "cust-1", "order-1", "idem-2")
	require.NoError(t, err)
	assert.True(t, res.OK())

	assert.Equal(t, "/customers/cust-1/orders/order-1/fulfillFree", gotPath)
	assert.Equal(t, "Student account fulfillfree", gotBody["notes"])
}

func TestResponseNormalization(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantBody   string
		wantErrMsg string
	}{
		{
			name:     "json body passes through",
			status:   http.StatusBadRequest,
			body:     `{"error":"invalid offer"}`,
			wantBody: `{"error":"invalid offer"}`,
		},
		{
			name:     "non-json failure body is wrapped",
			status:   http.StatusBadGateway,
			body:     "upstream exploded",
			wantBody: `{"error":"API Error (502): upstream exploded"}`,
		},
		{
			name:     "non-json success body is wrapped",
			status:   http.StatusOK,
			body:     "OK",
			wantBody: `{"data":"OK"}`,
		},
		{
			name:     "empty failure body",
			status:   http.StatusServiceUnavailable,
			body:     "",
			wantBody: `{"error":"API Error (503): "}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, srv.URL)
			res, err := client.QueryOfferRaw(context.Background(), "tok", []byte(`{}`))
			require.NoError(t, err)

			assert.Equal(t, tt.status, res.Status)
			assert.JSONEq(t, tt.wantBody, string(res.Body))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error field", body: `{"error":"boom"}`, want: "boom"},
		{name: "message field", body: `{"message":"nope"}`, want: "nope"},
		{name: "error preferred over message", body: `{"error":"boom","message":"nope"}`, want: "boom"},
		{name: "unrecognized shape falls back to raw body", body: `{"code":42}`, want: `{"code":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &Result{Status: 400, Body: json.RawMessage(tt.body)}
			assert.Equal(t, tt.want, res.ErrorMessage())
		})
	}
}

func TestFirstCatalogInstanceKey(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantKey string
		wantOK  bool
	}{
		{name: "first plan key", body: `{"plans":[{"catalogInstanceKey":"cik-1"},{"catalogInstanceKey":"cik-2"}]}`, wantKey: "cik-1", wantOK: true},
		{name: "empty plans", body: `{"plans":[]}`, wantOK: false},
		{name: "missing plans", body: `{}`, wantOK: false},
		{name: "empty key", body: `{"plans":[{"catalogInstanceKey":""}]}`, wantOK: false},
		{name: "not json", body: `nope`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := FirstCatalogInstanceKey(json.RawMessage(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := newTestClient(srv.URL, srv.URL)

	_, err := client.QueryOffer(context.Background(), "tok", "offer-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call catalog service")
}
