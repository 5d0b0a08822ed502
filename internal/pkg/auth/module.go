package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/config"
)

// Module provides the bcrypt hasher and the HMAC token strategy.
var Module = fx.Provide(
	func() PasswordHasher { return NewBcryptHasher(0) },
	func(c *config.Config) Strategy {
		return NewHMACStrategy(c.AuthSecret, Options{TTL: c.AuthTokenTTL})
	},
)
