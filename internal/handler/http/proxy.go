package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nkansal-godaddy/GoStudents/internal/commerce"
	"github.com/nkansal-godaddy/GoStudents/internal/sso"
	"github.com/nkansal-godaddy/GoStudents/pkg/httputil"
	"github.com/nkansal-godaddy/GoStudents/pkg/validator"
)

// ProxyHandler forwards requests to the upstream commerce APIs on behalf of
// the browser, which cannot call them directly (CORS). Upstream status codes
// and bodies pass through verbatim; the only locally produced responses are
// input-validation failures (no token, no idempotency id) and transport
// errors.
type ProxyHandler struct {
	commerce *commerce.Client
	logger   *slog.Logger
}

// NewProxyHandler creates a new proxy HTTP handler.
func NewProxyHandler(client *commerce.Client, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		commerce: client,
		logger:   logger,
	}
}

// Catalog handles POST /api/v1/catalog. The request body is forwarded to the
// catalog query API unchanged.
func (h *ProxyHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	token := ssoToken(r)
	if token == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "SSO authorization token is required",
		})
		return
	}

	payload, ok := readBody(w, r)
	if !ok {
		return
	}

	res, err := h.commerce.QueryOfferRaw(r.Context(), token, payload)
	if err != nil {
		h.writeConnectError(w, r, err, "catalog")
		return
	}

	httputil.WriteRaw(w, res.Status, res.Body)
}

// Orders handles POST /api/v1/orders/{basketId}. The customer id comes from
// the SSO token; the Idempotent-Id header is forwarded to the orders shim.
func (h *ProxyHandler) Orders(w http.ResponseWriter, r *http.Request) {
	token := ssoToken(r)
	if token == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "SSO authorization token is required",
		})
		return
	}

	idempotentID := r.Header.Get("Idempotent-Id")
	if idempotentID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Idempotent ID is required",
		})
		return
	}

	basketID := chi.URLParam(r, "basketId")
	if basketID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "basket id is required",
		})
		return
	}

	claims, err := sso.Decode(token)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unable to extract customer id from token",
		})
		return
	}

	payload, ok := readBody(w, r)
	if !ok {
		return
	}

	res, err := h.commerce.CreateOrderRaw(r.Context(), token, claims.CustomerID, basketID, idempotentID, payload)
	if err != nil {
		h.writeConnectError(w, r, err, "orders")
		return
	}

	httputil.WriteRaw(w, res.Status, res.Body)
}

// FulfillRequest is the JSON request body for the fulfillment proxy.
type FulfillRequest struct {
	CustomerID   string `json:"customerId" validate:"required"`
	OrderID      string `json:"orderId" validate:"required"`
	IdempotentID string `json:"idempotentId" validate:"required"`
}

// Fulfill handles POST /api/v1/fulfill.
func (h *ProxyHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	token := ssoToken(r)
	if token == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "SSO authorization token is required",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req FulfillRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.commerce.FulfillFree(r.Context(), token, req.CustomerID, req.OrderID, req.IdempotentID)
	if err != nil {
		h.writeConnectError(w, r, err, "fulfillFree")
		return
	}

	httputil.WriteRaw(w, res.Status, res.Body)
}

// writeConnectError reports a transport-level failure reaching an upstream.
func (h *ProxyHandler) writeConnectError(w http.ResponseWriter, r *http.Request, err error, service string) {
	h.logger.ErrorContext(r.Context(), "upstream call failed",
		slog.String("service", service),
		slog.String("error", err.Error()),
	)
	httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   err.Error(),
		"details": "Failed to connect to " + service + " service",
	})
}

// ssoToken extracts the SSO token from the Authorization header. The
// "sso-jwt" scheme prefix is optional; a bare token is accepted too.
func ssoToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if rest, found := strings.CutPrefix(header, "sso-jwt "); found {
		return strings.TrimSpace(rest)
	}
	return header
}

// readBody reads the request body with a 1MB limit. On failure it writes a
// 400 response and returns false.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body: " + err.Error(),
		})
		return nil, false
	}
	return body, true
}
