package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/server/http/handlers"
	"github.com/polkiloo/freshcart/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StoreFacade, db handlers.Pinger, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	cartHandler := handlers.NewCartHandler(facade, facade)
	couponHandler := handlers.NewCouponHandler(facade)
	walletHandler := handlers.NewWalletHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)

	engine.GET("/healthz", handlers.Health(db))

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	api.GET("/products", catalogHandler.List)
	api.GET("/products/:id", catalogHandler.Get)
	api.POST("/payments/webhook", paymentHandler.Webhook)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	authed.GET("/cart", cartHandler.View)
	authed.PUT("/cart/items", cartHandler.PutItem)
	authed.DELETE("/cart/items/:productId", cartHandler.RemoveItem)
	authed.GET("/addresses", cartHandler.Addresses)
	authed.POST("/addresses", cartHandler.CreateAddress)
	authed.POST("/coupons/check", couponHandler.Check)
	authed.GET("/wallet", walletHandler.Balance)
	authed.GET("/wallet/transactions", walletHandler.Transactions)
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:number", orderHandler.Get)
	authed.POST("/orders/:number/cancel", orderHandler.Cancel)
	authed.POST("/orders/:number/payment", paymentHandler.Initiate)
	authed.POST("/payments/verify", paymentHandler.Verify)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/users", authHandler.CreateUser)
	admin.POST("/products", catalogHandler.Create)
	admin.PATCH("/products/:id/stock", catalogHandler.Restock)
	admin.DELETE("/products/:id", catalogHandler.Retire)
	admin.POST("/coupons", couponHandler.Create)
	admin.GET("/coupons", couponHandler.List)
	admin.DELETE("/coupons/:code", couponHandler.Retire)
	admin.POST("/wallets/:userId/credit", walletHandler.Credit)
	admin.GET("/orders", orderHandler.ListAll)
	admin.PATCH("/orders/:number/status", orderHandler.UpdateStatus)
	admin.POST("/orders/:number/assign", orderHandler.Assign)

	delivery := authed.Group("/delivery")
	delivery.Use(middleware.RequireRole(model.RoleDelivery))
	delivery.PATCH("/orders/:number/status", orderHandler.UpdateStatus)
	delivery.POST("/orders/:number/location", orderHandler.UpdateLocation)

	return engine
}
