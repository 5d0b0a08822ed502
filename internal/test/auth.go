package test

import (
	"errors"

	"github.com/polkiloo/freshcart/internal/domain/model"
	pkgAuth "github.com/polkiloo/freshcart/internal/pkg/auth"
)

// StubHashPrefix marks passwords "hashed" by HasherStub.
const StubHashPrefix = "hash:"

// ErrPasswordMismatch is returned by HasherStub.Compare on a wrong password.
var ErrPasswordMismatch = errors.New("password mismatch")

var (
	_ pkgAuth.PasswordHasher = HasherStub{}
	_ pkgAuth.Strategy       = StrategyStub{}
)

// HasherStub stores passwords as StubHashPrefix+password unless HashFn or
// CompareFn take over.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn == nil {
		return StubHashPrefix + password, nil
	}
	return h.HashFn(password)
}

func (h HasherStub) Compare(hash string, password string) error {
	switch {
	case h.CompareFn != nil:
		return h.CompareFn(hash, password)
	case hash == StubHashPrefix+password:
		return nil
	default:
		return ErrPasswordMismatch
	}
}

// StrategyStub hands out the literal token "token" and resolves every token
// to customer 1. IssueFn and ParseFn replace either half.
type StrategyStub struct {
	IssueFn func(model.Identity) (string, error)
	ParseFn func(string) (model.Identity, error)
	NameVal string
}

func (s StrategyStub) IssueToken(identity model.Identity) (string, error) {
	if s.IssueFn == nil {
		return "token", nil
	}
	return s.IssueFn(identity)
}

func (s StrategyStub) ParseToken(token string) (model.Identity, error) {
	if s.ParseFn == nil {
		return model.Identity{UserID: 1, Role: model.RoleCustomer}, nil
	}
	return s.ParseFn(token)
}

func (s StrategyStub) Name() string {
	if s.NameVal == "" {
		return "stub"
	}
	return s.NameVal
}

// TokenParserStub feeds a fixed identity or error to the auth middleware.
type TokenParserStub struct {
	Identity model.Identity
	Err      error
	ParseFn  func(string) (model.Identity, error)
}

func (s TokenParserStub) ParseToken(token string) (model.Identity, error) {
	switch {
	case s.ParseFn != nil:
		return s.ParseFn(token)
	case s.Err != nil:
		return model.Identity{}, s.Err
	default:
		return s.Identity, nil
	}
}
