package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/adapter/cache"
	"github.com/polkiloo/freshcart/internal/adapter/events"
	"github.com/polkiloo/freshcart/internal/adapter/payment"
	"github.com/polkiloo/freshcart/internal/app"
	"github.com/polkiloo/freshcart/internal/config"
	"github.com/polkiloo/freshcart/internal/logger"
	"github.com/polkiloo/freshcart/internal/pkg/auth"
	"github.com/polkiloo/freshcart/internal/server/http/handlers"
	"github.com/polkiloo/freshcart/internal/server/http/router"
	"github.com/polkiloo/freshcart/internal/storage/postgres"
	"github.com/polkiloo/freshcart/internal/telemetry"
	"github.com/polkiloo/freshcart/internal/usecase"
)

// Module assembles the full application graph. opts are appended last so
// tests can replace any component.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		telemetry.Module,
		auth.Module,
		postgres.Module,
		fx.Provide(func(s *postgres.Storage) handlers.Pinger { return s }),
		payment.Module,
		events.Module,
		cache.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
