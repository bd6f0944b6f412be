package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/nkansal-godaddy/GoStudents/pkg/kafka"
	"github.com/nkansal-godaddy/GoStudents/pkg/logger"
)

// Kafka topic constants for student-program domain events.
const (
	TopicProvisionCompleted = "gostudents.provision.completed"
	TopicSignupCompleted    = "gostudents.signup.completed"
	TopicCurriculumSelected = "gostudents.curriculum.selected"
)

// Aggregate type constants.
const (
	AggregateTypeOrder  = "order"
	AggregateTypeSignup = "signup"
)

// Source identifier for events originating from this service.
const SourceGoStudents = "gostudents-service"

// Publisher is the subset of the Kafka producer used by this package.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// ProvisionCompletedData is the payload for a provision.completed event.
type ProvisionCompletedData struct {
	OrderID            string `json:"order_id"`
	CustomerID         string `json:"customer_id"`
	OfferID            string `json:"offer_id"`
	CatalogInstanceKey string `json:"catalog_instance_key"`
}

// SignupCompletedData is the payload for a signup.completed event.
type SignupCompletedData struct {
	SignupID string `json:"signup_id"`
	SchoolID string `json:"school_id"`
	Email    string `json:"email"`
}

// CurriculumSelectedData is the payload for a curriculum.selected event.
type CurriculumSelectedData struct {
	SelectionID  string `json:"selection_id"`
	OfferID      string `json:"offer_id"`
	SchoolID     string `json:"school_id"`
	CurriculumID string `json:"curriculum_id"`
	Email        string `json:"email"`
	CustomerID   string `json:"customer_id,omitempty"`
}

// Producer publishes student-program domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProvisionCompleted publishes a provision.completed event.
func (p *Producer) PublishProvisionCompleted(ctx context.Context, data ProvisionCompletedData) error {
	return p.publish(ctx, TopicProvisionCompleted, data.OrderID, AggregateTypeOrder, data)
}

// PublishSignupCompleted publishes a signup.completed event.
func (p *Producer) PublishSignupCompleted(ctx context.Context, data SignupCompletedData) error {
	return p.publish(ctx, TopicSignupCompleted, data.SignupID, AggregateTypeSignup, data)
}

// PublishCurriculumSelected publishes a curriculum.selected event.
func (p *Producer) PublishCurriculumSelected(ctx context.Context, data CurriculumSelectedData) error {
	return p.publish(ctx, TopicCurriculumSelected, data.SelectionID, AggregateTypeSignup, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceGoStudents, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
