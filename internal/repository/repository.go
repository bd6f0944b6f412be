package repository

import (
	"context"

	"github.com/nkansal-godaddy/GoStudents/internal/domain"
)

// SignupRepository defines the interface for student signup persistence.
type SignupRepository interface {
	// CreateSignup inserts a new signup record.
	CreateSignup(ctx context.Context, signup *domain.Signup) error

	// GetSignupByEmail retrieves a signup by student email.
	GetSignupByEmail(ctx context.Context, email string) (*domain.Signup, error)

	// CreateCurriculumSelection records a curated-offer selection.
	CreateCurriculumSelection(ctx context.Context, sel *domain.CurriculumSelection) error
}
