package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/server/http/handlers"
)

// Module builds the gin engine from the application facade.
var Module = fx.Provide(newRouter)

type routerParams struct {
	fx.In

	Facade handlers.StoreFacade
	Pinger handlers.Pinger
	Logger *slog.Logger
}

func newRouter(p routerParams) *gin.Engine {
	return Setup(p.Facade, p.Pinger, p.Logger)
}
