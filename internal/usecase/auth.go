package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/repository"
	pkgAuth "github.com/polkiloo/freshcart/internal/pkg/auth"
)

// AuthUseCase owns accounts and the tokens that identify them.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// Register signs a new customer up and logs them in.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.User, string, error) {
	usr, err := u.CreateUser(ctx, login, password, model.RoleCustomer)
	if err != nil {
		return nil, "", err
	}
	return u.issue(usr)
}

// CreateUser stores an account with the given role. Administrators use it
// for staff accounts.
func (u *AuthUseCase) CreateUser(ctx context.Context, login, password string, role model.Role) (*model.User, error) {
	login, ok := credentials(login, password)
	if !ok {
		return nil, domainErrors.ErrInvalidCredentials
	}
	if !role.Valid() {
		return nil, fmt.Errorf("role %q: %w", role, domainErrors.ErrInvalidInput)
	}

	hash, err := u.hasher.Hash(password)
	switch {
	case errors.Is(err, pkgAuth.ErrWeakPassword):
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrInvalidInput, err)
	case err != nil:
		return nil, fmt.Errorf("hash password: %w", err)
	}

	usr, err := u.users.Create(ctx, login, hash, role)
	switch {
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		return nil, domainErrors.ErrAlreadyExists
	case err != nil:
		return nil, err
	}
	return usr, nil
}

// Authenticate exchanges a login and password for a token. Unknown logins and
// wrong passwords are indistinguishable to the caller.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login, ok := credentials(login, password)
	if !ok {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return nil, "", domainErrors.ErrInvalidCredentials
	case err != nil:
		return nil, "", err
	}

	if u.hasher.Compare(usr.PasswordHash, password) != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	return u.issue(usr)
}

func (u *AuthUseCase) ParseToken(token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

func (u *AuthUseCase) issue(usr *model.User) (*model.User, string, error) {
	token, err := u.tokens.IssueToken(model.Identity{UserID: usr.ID, Role: usr.Role})
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return usr, token, nil
}

// credentials trims the login and reports whether both parts are present.
func credentials(login, password string) (string, bool) {
	login = strings.TrimSpace(login)
	return login, login != "" && password != ""
}
