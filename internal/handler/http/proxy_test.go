package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkansal-godaddy/GoStudents/internal/commerce"
)

// --- Fake upstream ---

type fakeCall struct {
	URL           string
	Authorization string
	IdempotentID  string
	Body          string
}

type fakeResponse struct {
	status int
	body   string
	err    error
}

// fakeDoer records outbound requests and plays back canned responses.
type fakeDoer struct {
	calls     []fakeCall
	responses []fakeResponse
}

func (d *fakeDoer) Do(_ context.Context, req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	d.calls = append(d.calls, fakeCall{
		URL:           req.URL.String(),
		Authorization: req.Header.Get("Authorization"),
		IdempotentID:  req.Header.Get("Idempotent-Id"),
		Body:          string(body),
	})

	if len(d.responses) == 0 {
		return nil, errors.New("fakeDoer: no response scripted")
	}
	next := d.responses[0]
	d.responses = d.responses[1:]

	if next.err != nil {
		return nil, next.err
	}
	return &http.Response{
		StatusCode: next.status,
		Body:       io.NopCloser(strings.NewReader(next.body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

// --- Test helpers ---

const (
	testCatalogURL = "https://catalog.test/v2/catalog/offers"
	testOrdersBase = "https://orders.test/v2"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCommerceClient(doer *fakeDoer) *commerce.Client {
	return commerce.New(commerce.Config{
		CatalogURL:    testCatalogURL,
		OrdersBaseURL: testOrdersBase,
		Currency:      "USD",
		MarketID:      "en-US",
		TermType:      "MONTH",
		TermCount:     12,
	}, doer, testLogger())
}

// setupProxyRouter mirrors the production proxy route layout.
func setupProxyRouter(h *ProxyHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/catalog", h.Catalog)
		r.Post("/orders/{basketId}", h.Orders)
		r.Post("/fulfill", h.Fulfill)
	})
	return r
}

func testToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func errorField(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestCatalogProxy(t *testing.T) {
	t.Run("requires authorization token before any outbound call", func(t *testing.T) {
		doer := &fakeDoer{}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "SSO authorization token is required", errorField(t, rec))
		assert.Empty(t, doer.calls)
	})

	t.Run("forwards upstream status and body verbatim", func(t *testing.T) {
		doer := &fakeDoer{responses: []fakeResponse{
			{status: http.StatusServiceUnavailable, body: `{"error":"catalog down"}`},
		}}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog", strings.NewReader(`{"curatedOfferId":"x"}`))
		req.Header.Set("Authorization", "sso-jwt tok-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"error":"catalog down"}`, rec.Body.String())

		require.Len(t, doer.calls, 1)
		assert.Equal(t, testCatalogURL, doer.calls[0].URL)
		assert.Equal(t, "sso-jwt tok-123", doer.calls[0].Authorization)
		assert.JSONEq(t, `{"curatedOfferId":"x"}`, doer.calls[0].Body)
	})

	t.Run("accepts a bare token without scheme prefix", func(t *testing.T) {
		doer := &fakeDoer{responses: []fakeResponse{{status: http.StatusOK, body: `{}`}}}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "tok-456")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, doer.calls, 1)
		assert.Equal(t, "sso-jwt tok-456", doer.calls[0].Authorization)
	})

	t.Run("transport failure reports connect error", func(t *testing.T) {
		doer := &fakeDoer{responses: []fakeResponse{{err: errors.New("connection refused")}}}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "sso-jwt tok")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Failed to connect to catalog service", body["details"])
	})
}

func TestOrdersProxy(t *testing.T) {
	t.Run("requires authorization token", func(t *testing.T) {
		doer := &fakeDoer{}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/basket-1", strings.NewReader(`{}`))
		req.Header.Set("Idempotent-Id", "idem-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "SSO authorization token is required", errorField(t, rec))
		assert.Empty(t, doer.calls)
	})

	t.Run("requires idempotent id header", func(t *testing.T) {
		doer := &fakeDoer{}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/basket-1", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "sso-jwt "+testToken(t, jwt.MapClaims{"sub": "cust-1"}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Idempotent ID is required", errorField(t, rec))
		assert.Empty(t, doer.calls)
	})

	t.Run("rejects token without customer id", func(t *testing.T) {
		doer := &fakeDoer{}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/basket-1", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "sso-jwt not-a-jwt")
		req.Header.Set("Idempotent-Id", "idem-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "unable to extract customer id from token", errorField(t, rec))
		assert.Empty(t, doer.calls)
	})

	t.Run("forwards to the customer order URL", func(t *testing.T) {
		doer := &fakeDoer{responses: []fakeResponse{
			{status: http.StatusOK, body: `{"orderId":"basket-9"}`},
		}}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		token := testToken(t, jwt.MapClaims{"sub": "cust-42"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/basket-9", strings.NewReader(`{"items":[]}`))
		req.Header.Set("Authorization", "sso-jwt "+token)
		req.Header.Set("Idempotent-Id", "idem-9")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"orderId":"basket-9"}`, rec.Body.String())

		require.Len(t, doer.calls, 1)
		assert.Equal(t, testOrdersBase+"/customers/cust-42/orders/basket-9/add", doer.calls[0].URL)
		assert.Equal(t, "idem-9", doer.calls[0].IdempotentID)
		assert.JSONEq(t, `{"items":[]}`, doer.calls[0].Body)
	})
}

func TestFulfillProxy(t *testing.T) {
	t.Run("requires authorization token", func(t *testing.T) {
		doer := &fakeDoer{}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/fulfill", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, doer.calls)
	})

	t.Run("validates required fields", func(t *testing.T) {
		doer := &fakeDoer{}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/fulfill", strings.NewReader(`{"customerId":"cust-1"}`))
		req.Header.Set("Authorization", "sso-jwt tok")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, doer.calls)
	})

	t.Run("forwards to the fulfillFree URL", func(t *testing.T) {
		doer := &fakeDoer{responses: []fakeResponse{
			{status: http.StatusOK, body: `{"status":"fulfilled"}`},
		}}
		router := setupProxyRouter(NewProxyHandler(testCommerceClient(doer), testLogger()))

		payload := `{"customerId":"cust-1","orderId":"order-7","idempotentId":"idem-7"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fulfill", strings.NewReader(payload))
		req.Header.Set("Authorization", "sso-jwt tok")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, doer.calls, 1)
		assert.Equal(t, testOrdersBase+"/customers/cust-1/orders/order-7/fulfillFree", doer.calls[0].URL)
		assert.Equal(t, "idem-7", doer.calls[0].IdempotentID)
		assert.Contains(t, doer.calls[0].Body, "Student account fulfillfree")
	})
}
