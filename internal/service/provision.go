package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nkansal-godaddy/GoStudents/internal/commerce"
	"github.com/nkansal-godaddy/GoStudents/internal/domain"
	"github.com/nkansal-godaddy/GoStudents/internal/event"
	"github.com/nkansal-godaddy/GoStudents/pkg/logger"
)

// StepTimeouts bounds each provisioning step individually so one slow
// upstream cannot consume the whole request budget.
type StepTimeouts struct {
	CatalogQuery  time.Duration
	OrderCreation time.Duration
	Fulfillment   time.Duration
}

// DefaultStepTimeouts returns the per-step deadlines used in production.
func DefaultStepTimeouts() StepTimeouts {
	return StepTimeouts{
		CatalogQuery:  10 * time.Second,
		OrderCreation: 15 * time.Second,
		Fulfillment:   15 * time.Second,
	}
}

// ProvisionService chains the three upstream calls that turn a curated offer
// into a fulfilled zero-cost subscription: catalog query, order creation,
// free fulfillment.
//
// The pipeline is strictly sequential and aborts on the first failure. There
// is no retry, no compensation, and no resume: a re-invocation starts from
// the beginning with freshly minted identifiers. Duplicate suppression is the
// upstream's job, driven by the Idempotent-Id headers sent on mutating calls.
type ProvisionService struct {
	commerce    *commerce.Client
	events      *event.Producer
	generateID  domain.IDGenerator
	timeouts    StepTimeouts
	redirectURL string
	logger      *slog.Logger
}

// NewProvisionService creates the provisioning pipeline service.
func NewProvisionService(
	client *commerce.Client,
	events *event.Producer,
	generateID domain.IDGenerator,
	timeouts StepTimeouts,
	redirectURL string,
	log *slog.Logger,
) *ProvisionService {
	return &ProvisionService{
		commerce:    client,
		events:      events,
		generateID:  generateID,
		timeouts:    timeouts,
		redirectURL: redirectURL,
		logger:      log,
	}
}

// Provision runs the three-step pipeline for the given customer and offer.
// The caller's SSO token is passed through to every upstream call.
//
// Failures return a *domain.StepError tagged with the step that aborted the
// run. A 2xx catalog response without a usable plan is a catalog_query
// failure: order creation must never be attempted without an instance key.
func (s *ProvisionService) Provision(ctx context.Context, token, customerID, offerID string) (*domain.ProvisionResult, error) {
	log := logger.FromContext(ctx)

	// Step 1: catalog query.
	catalogCtx, cancel := context.WithTimeout(ctx, s.timeouts.CatalogQuery)
	catalogRes, err := s.commerce.QueryOffer(catalogCtx, token, offerID)
	cancel()
	if err != nil {
		return nil, &domain.StepError{
			Step:    domain.StepCatalogQuery,
			Message: "Failed to connect to catalog service",
			Err:     err,
		}
	}
	if !catalogRes.OK() {
		return nil, &domain.StepError{
			Step:    domain.StepCatalogQuery,
			Status:  catalogRes.Status,
			Message: catalogRes.ErrorMessage(),
		}
	}

	instanceKey, ok := commerce.FirstCatalogInstanceKey(catalogRes.Body)
	if !ok {
		return nil, &domain.StepError{
			Step:    domain.StepCatalogQuery,
			Status:  catalogRes.Status,
			Message: "No catalog instance key found in response",
		}
	}

	// One order identifier for the whole run: it names the basket during
	// order creation and the order during fulfillment.
	orderID := s.generateID()
	itemKey := s.generateID()

	log.InfoContext(ctx, "catalog query succeeded",
		slog.String("offer_id", offerID),
		slog.String("order_id", orderID),
	)

	// Step 2: order creation. Fresh idempotency token for this call.
	orderCtx, cancel := context.WithTimeout(ctx, s.timeouts.OrderCreation)
	orderRes, err := s.commerce.CreateOrder(orderCtx, token, customerID, orderID, s.generateID(), []commerce.OrderItem{
		{
			Key: itemKey,
			Item: commerce.OrderItemDetail{
				CatalogInstanceKey: instanceKey,
				Intent:             commerce.FreeTrialIntent,
			},
		},
	})
	cancel()
	if err != nil {
		return nil, &domain.StepError{
			Step:    domain.StepOrderCreation,
			Message: "Failed to connect to orders service",
			Err:     err,
		}
	}
	if !orderRes.OK() {
		return nil, &domain.StepError{
			Step:    domain.StepOrderCreation,
			Status:  orderRes.Status,
			Message: orderRes.ErrorMessage(),
		}
	}

	log.InfoContext(ctx, "order created",
		slog.String("order_id", orderID),
		slog.String("customer_id", customerID),
	)

	// Step 3: free fulfillment of the order created above, under its own
	// idempotency token.
	fulfillCtx, cancel := context.WithTimeout(ctx, s.timeouts.Fulfillment)
	fulfillRes, err := s.commerce.FulfillFree(fulfillCtx, token, customerID, orderID, s.generateID())
	cancel()
	if err != nil {
		return nil, &domain.StepError{
			Step:    domain.StepFulfillment,
			Message: "Failed to connect to fulfillFree service",
			Err:     err,
		}
	}
	if !fulfillRes.OK() {
		return nil, &domain.StepError{
			Step:    domain.StepFulfillment,
			Status:  fulfillRes.Status,
			Message: fulfillRes.ErrorMessage(),
		}
	}

	log.InfoContext(ctx, "order fulfilled",
		slog.String("order_id", orderID),
	)

	// Post-success notification. Publish failures are logged and never
	// surfaced: the subscription is already provisioned.
	if err := s.events.PublishProvisionCompleted(ctx, event.ProvisionCompletedData{
		OrderID:            orderID,
		CustomerID:         customerID,
		OfferID:            offerID,
		CatalogInstanceKey: instanceKey,
	}); err != nil {
		log.ErrorContext(ctx, "failed to publish provision.completed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	return &domain.ProvisionResult{
		OrderID:            orderID,
		CatalogInstanceKey: instanceKey,
		RedirectURL:        s.redirectURL,
	}, nil
}
