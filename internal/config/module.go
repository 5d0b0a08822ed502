package config

import (
	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// Module exposes configuration and the pricing rules derived from it.
var Module = fx.Provide(
	Load,
	func(c *Config) model.PricingRules { return c.Pricing },
)
