package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator mints identifiers for the provisioning pipeline. Injected so
// tests can substitute a deterministic sequence.
type IDGenerator func() string

// NewUUIDGenerator returns the production generator: random v4 UUIDs.
func NewUUIDGenerator() IDGenerator {
	return uuid.NewString
}

// ProvisionStep identifies which pipeline stage an error occurred in.
type ProvisionStep string

const (
	StepCatalogQuery  ProvisionStep = "catalog_query"
	StepOrderCreation ProvisionStep = "order_creation"
	StepFulfillment   ProvisionStep = "fulfillment"
)

// StepError reports a provisioning failure tagged with the step that aborted
// the pipeline, the upstream HTTP status (0 for transport failures), and the
// upstream message.
type StepError struct {
	Step    ProvisionStep
	Status  int
	Message string
	Err     error
}

func (e *StepError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s failed (status %d): %s", e.Step, e.Status, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ProvisionResult is returned after all three pipeline steps succeed.
type ProvisionResult struct {
	OrderID            string `json:"orderId"`
	CatalogInstanceKey string `json:"catalogInstanceKey"`
	RedirectURL        string `json:"redirectUrl"`
}
