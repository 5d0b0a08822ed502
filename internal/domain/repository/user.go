package repository

import (
	"context"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// UserRepository stores accounts. Logins are unique: Create reports
// errors.ErrAlreadyExists for a taken login, lookups report ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
}
