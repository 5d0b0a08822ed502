package test

import (
	"context"
	"fmt"
	"sync"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
)

// PaymentProviderStub simulates the remote payment API.
type PaymentProviderStub struct {
	CreateFn   func(context.Context, model.ProviderOrderRequest) (*model.ProviderOrder, error)
	PaymentsFn func(context.Context, string) ([]model.ProviderPayment, error)
	Key        string

	mu       sync.Mutex
	Requests []model.ProviderOrderRequest
}

// CreateOrder records the request and returns a provider order named after the receipt.
func (s *PaymentProviderStub) CreateOrder(ctx context.Context, req model.ProviderOrderRequest) (*model.ProviderOrder, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &model.ProviderOrder{ID: "order_" + req.Receipt, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

// FetchPayments returns configured payments for a provider order.
func (s *PaymentProviderStub) FetchPayments(ctx context.Context, providerOrderID string) ([]model.ProviderPayment, error) {
	if s.PaymentsFn != nil {
		return s.PaymentsFn(ctx, providerOrderID)
	}
	return nil, nil
}

// KeyID returns the public key id.
func (s *PaymentProviderStub) KeyID() string {
	if s.Key != "" {
		return s.Key
	}
	return "key_test"
}

// RequestCount reports how many provider orders were requested.
func (s *PaymentProviderStub) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// VerifierStub accepts signatures equal to Valid and decodes with DecodeFn.
type VerifierStub struct {
	Valid    string
	DecodeFn func([]byte) (*model.WebhookEvent, error)
}

// VerifyPayment compares signature with the configured value.
func (s VerifierStub) VerifyPayment(_, _, signature string) error {
	if signature != s.Valid {
		return domainErrors.ErrInvalidSignature
	}
	return nil
}

// VerifyWebhook compares signature with the configured value.
func (s VerifierStub) VerifyWebhook(_ []byte, signature string) error {
	if signature != s.Valid {
		return domainErrors.ErrInvalidSignature
	}
	return nil
}

// DecodeWebhook delegates to DecodeFn.
func (s VerifierStub) DecodeWebhook(body []byte) (*model.WebhookEvent, error) {
	if s.DecodeFn != nil {
		return s.DecodeFn(body)
	}
	return nil, fmt.Errorf("webhook body: %w", domainErrors.ErrInvalidInput)
}

// DedupStub claims keys in memory.
type DedupStub struct {
	ClaimErr error

	mu        sync.Mutex
	claimed   map[string]bool
	Confirmed []string
	Released  []string
}

// Claim returns true the first time a key is seen.
func (s *DedupStub) Claim(_ context.Context, key string) (bool, error) {
	if s.ClaimErr != nil {
		return false, s.ClaimErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed == nil {
		s.claimed = make(map[string]bool)
	}
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

// Confirm records a handled key.
func (s *DedupStub) Confirm(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Confirmed = append(s.Confirmed, key)
	return nil
}

// Release forgets a key.
func (s *DedupStub) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, key)
	s.Released = append(s.Released, key)
	return nil
}

// EventRecorder collects published events.
type EventRecorder struct {
	Err error

	mu     sync.Mutex
	events []model.Event
}

// Publish records event and returns Err.
func (r *EventRecorder) Publish(_ context.Context, event model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// Events returns a copy of recorded events.
func (r *EventRecorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

// Kinds returns the kinds of recorded events in order.
func (r *EventRecorder) Kinds() []model.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]model.EventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// Reset drops recorded events.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
