package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/config"
	"github.com/polkiloo/freshcart/internal/usecase"
)

// Module provides the webhook deduplicator.
var Module = fx.Provide(newDeduplicator)

type dedupParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newDeduplicator(p dedupParams) usecase.Deduplicator {
	if p.Config.RedisAddress == "" {
		p.Logger.Info("redis not configured, webhook deduplication disabled")
		return NoopDeduplicator{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         p.Config.RedisAddress,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisDeduplicator(client, DefaultTTL)
}
