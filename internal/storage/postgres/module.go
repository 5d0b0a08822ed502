package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/config"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// Module provides *Storage as the unit of work together with one repository
// adapter per aggregate.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(newStorage, fx.As(fx.Self()), fx.As(new(repository.UnitOfWork))),
		(*Storage).Users,
		(*Storage).Products,
		(*Storage).Carts,
		(*Storage).Addresses,
		(*Storage).Coupons,
		(*Storage).Orders,
		(*Storage).Wallets,
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

// registerLifecycle refuses to start without a reachable database and
// closes the pool on stop.
func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := storage.Ping(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			storage.Close()
			return nil
		},
	})
}
