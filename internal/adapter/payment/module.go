package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/config"
	"github.com/polkiloo/freshcart/internal/usecase"
)

// Module exposes the payment provider client and signature verifier.
var Module = fx.Provide(newProvider, newVerifier)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newProvider(p clientParams) (usecase.PaymentProvider, error) {
	return NewHTTPClient(p.Config.PaymentAPIAddress, p.Config.PaymentKeyID, p.Config.PaymentKeySecret, p.Logger)
}

func newVerifier(c *config.Config) (usecase.PaymentVerifier, error) {
	return NewVerifier(c.PaymentKeySecret, c.PaymentWebhookSecret)
}
