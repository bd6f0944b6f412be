package domain

import (
	"time"

	"github.com/google/uuid"
)

// Signup records a student registering with a partner school.
type Signup struct {
	ID           uuid.UUID `json:"id"`
	SchoolID     string    `json:"school_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CurriculumSelection records a student picking a curated offer after signup.
type CurriculumSelection struct {
	ID           uuid.UUID `json:"id"`
	OfferID      string    `json:"offer_id"`
	SchoolID     string    `json:"school_id"`
	Email        string    `json:"email"`
	CurriculumID string    `json:"curriculum_id"`
	CustomerID   string    `json:"customer_id,omitempty"`
	ShopperID    string    `json:"shopper_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
