package events

import (
	"context"
	"log/slog"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// LogPublisher writes events to the application log. It is used when no
// broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs event together with its envelope metadata.
func (p *LogPublisher) Publish(ctx context.Context, event model.Event) error {
	env, err := NewEnvelope(ctx, event)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "order event",
		slog.String("event_id", env.EventID),
		slog.String("event_type", env.EventType),
		slog.String("order", env.CorrelationID),
		slog.Int64("user_id", env.UserID),
		slog.String("payload", string(env.Payload)),
	)
	return nil
}
