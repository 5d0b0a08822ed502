package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

const (
	producerName = "freshcart-api"
	eventVersion = 1
)

// Envelope is the wire format of every event written to the order topic.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	UserID        int64           `json:"user_id"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps event for transport. The order number is the
// correlation id, the active span, if any, provides the trace id.
func NewEnvelope(ctx context.Context, event model.Event) (Envelope, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", event.Kind, err)
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     string(event.Kind),
		EventVersion:  eventVersion,
		OccurredAt:    event.OccurredAt.UTC(),
		Producer:      producerName,
		CorrelationID: event.OrderNumber,
		UserID:        event.UserID,
		Payload:       payload,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		env.TraceID = sc.TraceID().String()
	}
	return env, nil
}

// message keys records by order number so that one order's events stay ordered.
func message(env Envelope) (kafka.Message, error) {
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_version", Value: []byte(strconv.Itoa(env.EventVersion))},
		},
	}, nil
}

// UnwrapPayload decodes the payload of an envelope into T.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
