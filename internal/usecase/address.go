package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// AddressUseCase manages address book entries.
type AddressUseCase struct {
	addresses repository.AddressRepository
	now       func() time.Time
}

// NewAddressUseCase constructs AddressUseCase.
func NewAddressUseCase(addresses repository.AddressRepository) *AddressUseCase {
	return &AddressUseCase{addresses: addresses, now: time.Now}
}

// Create stores a new address of userID.
func (u *AddressUseCase) Create(ctx context.Context, userID int64, addr model.Address) (*model.Address, error) {
	addr.ID = 0
	addr.UserID = userID
	addr.Label = strings.TrimSpace(addr.Label)
	if !addr.Snapshot().Complete() {
		return nil, fmt.Errorf("address: %w", domainErrors.ErrInvalidInput)
	}
	addr.CreatedAt = u.now()
	if err := u.addresses.Create(ctx, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

// List returns the address book of userID.
func (u *AddressUseCase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	return u.addresses.ListByUser(ctx, userID)
}
