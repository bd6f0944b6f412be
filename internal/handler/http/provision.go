package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nkansal-godaddy/GoStudents/internal/domain"
	"github.com/nkansal-godaddy/GoStudents/internal/service"
	"github.com/nkansal-godaddy/GoStudents/internal/sso"
	"github.com/nkansal-godaddy/GoStudents/pkg/httputil"
	"github.com/nkansal-godaddy/GoStudents/pkg/logger"
	"github.com/nkansal-godaddy/GoStudents/pkg/validator"
)

// ProvisionHandler handles the one-call provisioning endpoint.
type ProvisionHandler struct {
	service *service.ProvisionService
	logger  *slog.Logger
}

// NewProvisionHandler creates a new provisioning HTTP handler.
func NewProvisionHandler(svc *service.ProvisionService, logger *slog.Logger) *ProvisionHandler {
	return &ProvisionHandler{
		service: svc,
		logger:  logger,
	}
}

// ProvisionRequest is the JSON request body for starting a provision run.
type ProvisionRequest struct {
	OfferID string `json:"offerId" validate:"required"`
}

// ProvisionErrorResponse reports which pipeline step aborted the run.
type ProvisionErrorResponse struct {
	Step  string `json:"step"`
	Error string `json:"error"`
}

// Provision handles POST /api/v1/provision. It runs the full catalog → order
// → fulfillment pipeline for the authenticated student.
func (h *ProvisionHandler) Provision(w http.ResponseWriter, r *http.Request) {
	token := ssoToken(r)
	if token == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "SSO authorization token is required",
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

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req ProvisionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ctx := logger.WithCustomerID(r.Context(), claims.CustomerID)

	result, err := h.service.Provision(ctx, token, claims.CustomerID, req.OfferID)
	if err != nil {
		var stepErr *domain.StepError
		if errors.As(err, &stepErr) {
			status := stepErr.Status
			if status == 0 {
				status = http.StatusInternalServerError
			}
			h.logger.ErrorContext(ctx, "provisioning aborted",
				slog.String("step", string(stepErr.Step)),
				slog.Int("upstream_status", stepErr.Status),
				slog.String("message", stepErr.Message),
			)
			httputil.WriteJSON(w, status, ProvisionErrorResponse{
				Step:  string(stepErr.Step),
				Error: stepErr.Message,
			})
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
