package telemetry

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/config"
)

// Module installs tracing at construction and flushes it on stop.
var Module = fx.Invoke(registerTracer)

func registerTracer(lc fx.Lifecycle, ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdown, err := SetupTracer(ctx, cfg.TracingExporter, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	logger.Info("tracing configured", slog.String("exporter", cfg.TracingExporter))
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return nil
}
