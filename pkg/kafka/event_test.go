package kafka

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	OrderID string `json:"order_id"`
	OfferID string `json:"offer_id"`
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("gostudents.provision.completed", "order-1", "order", "gostudents-service", testPayload{
		OrderID: "order-1",
		OfferID: "offer-1",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(event.EventID)
	assert.NoError(t, err)
	assert.Equal(t, "gostudents.provision.completed", event.EventType)
	assert.Equal(t, "order-1", event.AggregateID)
	assert.Equal(t, "order", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, "gostudents-service", event.Source)
	assert.False(t, event.Timestamp.IsZero())
}

func TestNewEventUnmarshalableData(t *testing.T) {
	_, err := NewEvent("type", "id", "aggregate", "source", make(chan int))
	assert.Error(t, err)
}

func TestWithCorrelationID(t *testing.T) {
	event, err := NewEvent("type", "id", "aggregate", "source", testPayload{})
	require.NoError(t, err)

	event.WithCorrelationID("corr-1")
	assert.Equal(t, "corr-1", event.CorrelationID)
}

func TestMarshalRoundTrip(t *testing.T) {
	original, err := NewEvent("gostudents.signup.completed", "signup-1", "signup", "gostudents-service", testPayload{
		OrderID: "order-9",
	})
	require.NoError(t, err)
	original.WithCorrelationID("corr-2")

	raw, err := original.Marshal()
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original.EventID, decoded.EventID)
	assert.Equal(t, "corr-2", decoded.CorrelationID)

	var payload testPayload
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, "order-9", payload.OrderID)
}
