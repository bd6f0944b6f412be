package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkansal-godaddy/GoStudents/internal/domain"
	"github.com/nkansal-godaddy/GoStudents/internal/event"
	"github.com/nkansal-godaddy/GoStudents/internal/password"
	"github.com/nkansal-godaddy/GoStudents/internal/repository"
	apperrors "github.com/nkansal-godaddy/GoStudents/pkg/errors"
	"github.com/nkansal-godaddy/GoStudents/pkg/logger"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// SignupService handles student registrations and curriculum selections.
type SignupService struct {
	repo   repository.SignupRepository
	events *event.Producer
	logger *slog.Logger
}

// NewSignupService creates a new signup service.
func NewSignupService(repo repository.SignupRepository, events *event.Producer, log *slog.Logger) *SignupService {
	return &SignupService{
		repo:   repo,
		events: events,
		logger: log,
	}
}

// SignupInput carries the fields for a new student registration.
type SignupInput struct {
	SchoolID string
	Email    string
	Password string
}

// Signup registers a student with a partner school. The password must score
// at least 3 of 4 on the strength scale before it is accepted.
func (s *SignupService) Signup(ctx context.Context, input SignupInput) (*domain.Signup, error) {
	if _, ok := domain.SchoolByID(input.SchoolID); !ok {
		return nil, apperrors.InvalidInput("invalid school selected")
	}

	if score := password.Score(input.Password); score < password.MinScore {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("password too weak: scored %d of 4, need at least %d", score, password.MinScore),
		)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	signup := &domain.Signup{
		ID:           uuid.New(),
		SchoolID:     input.SchoolID,
		Email:        input.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateSignup(ctx, signup); err != nil {
		return nil, err
	}

	// Post-success side effect: publish failures are logged, never surfaced.
	if err := s.events.PublishSignupCompleted(ctx, event.SignupCompletedData{
		SignupID: signup.ID.String(),
		SchoolID: signup.SchoolID,
		Email:    signup.Email,
	}); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "failed to publish signup.completed event",
			slog.String("signup_id", signup.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	return signup, nil
}

// SelectionInput carries the fields for a curriculum selection.
type SelectionInput struct {
	OfferID    string
	SchoolID   string
	Email      string
	CustomerID string
	ShopperID  string
}

// SelectCurriculum records a student's curated-offer choice. The offer
// determines the curriculum.
func (s *SignupService) SelectCurriculum(ctx context.Context, input SelectionInput) (*domain.CurriculumSelection, error) {
	offer, ok := domain.OfferByID(input.OfferID)
	if !ok {
		return nil, apperrors.InvalidInput("invalid offer selected")
	}

	if _, ok := domain.SchoolByID(input.SchoolID); !ok {
		return nil, apperrors.InvalidInput("invalid school selected")
	}

	sel := &domain.CurriculumSelection{
		ID:           uuid.New(),
		OfferID:      input.OfferID,
		SchoolID:     input.SchoolID,
		Email:        input.Email,
		CurriculumID: offer.Curriculum.ID,
		CustomerID:   input.CustomerID,
		ShopperID:    input.ShopperID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateCurriculumSelection(ctx, sel); err != nil {
		return nil, err
	}

	if err := s.events.PublishCurriculumSelected(ctx, event.CurriculumSelectedData{
		SelectionID:  sel.ID.String(),
		OfferID:      sel.OfferID,
		SchoolID:     sel.SchoolID,
		CurriculumID: sel.CurriculumID,
		Email:        sel.Email,
		CustomerID:   sel.CustomerID,
	}); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "failed to publish curriculum.selected event",
			slog.String("selection_id", sel.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	return sel, nil
}

// Schools returns the partner school catalog.
func (s *SignupService) Schools() []domain.School {
	return domain.Schools
}

// Offers returns the curated offers available to students.
func (s *SignupService) Offers() []domain.CuratedOffer {
	return domain.CuratedOffers
}
