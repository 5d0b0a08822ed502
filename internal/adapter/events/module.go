package events

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/config"
	"github.com/polkiloo/freshcart/internal/usecase"
)

const inboxSize = 256

// Module provides the event publisher. Kafka is used when brokers are
// configured, the log publisher otherwise.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPublisher(p publisherParams) usecase.EventPublisher {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("kafka brokers not configured, events go to the log")
		return NewLogPublisher(p.Logger)
	}

	pub := NewKafkaPublisher(p.Config.KafkaBrokers, p.Config.KafkaTopic, inboxSize, p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			pub.Start()
			return nil
		},
		OnStop: pub.Close,
	})
	return pub
}
