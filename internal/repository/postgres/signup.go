package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkansal-godaddy/GoStudents/internal/domain"
	"github.com/nkansal-godaddy/GoStudents/pkg/database"
	apperrors "github.com/nkansal-godaddy/GoStudents/pkg/errors"
)

const uniqueViolationCode = "23505"

// SignupRepository implements repository.SignupRepository using PostgreSQL.
type SignupRepository struct {
	pool database.DBTX
}

// NewSignupRepository creates a new PostgreSQL-backed signup repository.
func NewSignupRepository(pool database.DBTX) *SignupRepository {
	return &SignupRepository{pool: pool}
}

// CreateSignup inserts a new signup record.
func (r *SignupRepository) CreateSignup(ctx context.Context, signup *domain.Signup) error {
	query := `
		INSERT INTO signups (id, school_id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		signup.ID,
		signup.SchoolID,
		signup.Email,
		signup.PasswordHash,
		signup.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.AlreadyExists("signup", "email", signup.Email)
		}
		return fmt.Errorf("insert signup: %w", err)
	}

	return nil
}

// GetSignupByEmail retrieves a signup by student email.
func (r *SignupRepository) GetSignupByEmail(ctx context.Context, email string) (*domain.Signup, error) {
	query := `
		SELECT id, school_id, email, password_hash, created_at
		FROM signups
		WHERE email = $1`

	var s domain.Signup
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&s.ID,
		&s.SchoolID,
		&s.Email,
		&s.PasswordHash,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("signup", email)
		}
		return nil, fmt.Errorf("get signup by email: %w", err)
	}

	return &s, nil
}

// CreateCurriculumSelection records a curated-offer selection.
func (r *SignupRepository) CreateCurriculumSelection(ctx context.Context, sel *domain.CurriculumSelection) error {
	query := `
		INSERT INTO curriculum_selections (
			id, offer_id, school_id, email, curriculum_id,
			customer_id, shopper_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		sel.ID,
		sel.OfferID,
		sel.SchoolID,
		sel.Email,
		sel.CurriculumID,
		nullableString(sel.CustomerID),
		nullableString(sel.ShopperID),
		sel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert curriculum selection: %w", err)
	}

	return nil
}

// nullableString converts empty strings to nil for nullable columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
