package auth

import (
	"testing"
	"time"

	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"

	"github.com/polkiloo/freshcart/internal/config"
)

func resolve(t *testing.T, cfg *config.Config) (PasswordHasher, Strategy) {
	t.Helper()
	var (
		hasher   PasswordHasher
		strategy Strategy
	)
	app := fx.New(fx.NopLogger, fx.Supply(cfg), Module, fx.Populate(&hasher, &strategy))
	if err := app.Err(); err != nil {
		t.Fatalf("fx app failed: %v", err)
	}
	return hasher, strategy
}

func TestModuleProvidesBcryptHasher(t *testing.T) {
	hasher, _ := resolve(t, &config.Config{AuthSecret: "top-secret"})
	bcryptHasher, ok := hasher.(*BcryptHasher)
	if !ok {
		t.Fatalf("expected *BcryptHasher, got %T", hasher)
	}
	if bcryptHasher.cost != bcrypt.DefaultCost {
		t.Fatalf("unexpected cost: %d", bcryptHasher.cost)
	}
}

func TestModuleProvidesHMACStrategy(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		wantTTL time.Duration
	}{
		{name: "configured ttl", ttl: time.Hour, wantTTL: time.Hour},
		{name: "unset ttl", wantTTL: 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, strategy := resolve(t, &config.Config{AuthSecret: "top-secret", AuthTokenTTL: tt.ttl})
			hmacStrategy, ok := strategy.(*HMACStrategy)
			if !ok {
				t.Fatalf("expected *HMACStrategy, got %T", strategy)
			}
			if string(hmacStrategy.secret) != "top-secret" || hmacStrategy.ttl != tt.wantTTL {
				t.Fatalf("unexpected strategy: %q %s", string(hmacStrategy.secret), hmacStrategy.ttl)
			}
		})
	}
}
