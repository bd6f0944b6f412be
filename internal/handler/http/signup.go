package http

import (
	"log/slog"
	"net/http"

	"github.com/nkansal-godaddy/GoStudents/internal/service"
	"github.com/nkansal-godaddy/GoStudents/pkg/httputil"
	"github.com/nkansal-godaddy/GoStudents/pkg/validator"
)

// SignupHandler handles student registrations and curriculum selections.
type SignupHandler struct {
	service *service.SignupService
	logger  *slog.Logger
}

// NewSignupHandler creates a new signup HTTP handler.
func NewSignupHandler(svc *service.SignupService, logger *slog.Logger) *SignupHandler {
	return &SignupHandler{
		service: svc,
		logger:  logger,
	}
}

// SignupRequest is the JSON request body for registering a student.
type SignupRequest struct {
	SchoolID string `json:"schoolId" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Signup handles POST /api/v1/signup.
func (h *SignupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SignupRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	signup, err := h.service.Signup(r.Context(), service.SignupInput{
		SchoolID: req.SchoolID,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: signup})
}

// CurriculumRequest is the JSON request body for recording a curriculum
// selection.
type CurriculumRequest struct {
	OfferID    string `json:"offerId" validate:"required"`
	SchoolID   string `json:"schoolId" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	CustomerID string `json:"customerId,omitempty"`
	ShopperID  string `json:"shopperId,omitempty"`
}

// Curriculum handles POST /api/v1/curriculum.
func (h *SignupHandler) Curriculum(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CurriculumRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sel, err := h.service.SelectCurriculum(r.Context(), service.SelectionInput{
		OfferID:    req.OfferID,
		SchoolID:   req.SchoolID,
		Email:      req.Email,
		CustomerID: req.CustomerID,
		ShopperID:  req.ShopperID,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sel})
}
