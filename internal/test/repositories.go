package test

import (
	"context"

	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// UserRepositoryStub is an in-memory user table whose every call fails with
// Err once it is set.
type UserRepositoryStub struct {
	repository.UserRepository
	Err error
}

// NewUserRepositoryStub returns a stub over an empty MemoryStore.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{UserRepository: NewMemoryStore().Users()}
}

func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.UserRepository.Create(ctx, login, passwordHash, role)
}

func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.UserRepository.GetByLogin(ctx, login)
}

func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.UserRepository.GetByID(ctx, id)
}
