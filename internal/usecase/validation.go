package usecase

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"
	"unicode"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
)

const (
	orderNumberPrefix = "ORD"
	orderNumberLayout = "20060102150405"
	orderNumberSuffix = 6

	defaultPageSize = 20
	maxPageSize     = 100
)

// NewOrderNumber builds a human readable order number from the creation time.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s%s%0*d", orderNumberPrefix, now.UTC().Format(orderNumberLayout), orderNumberSuffix, rand.IntN(1_000_000))
}

// ValidateOrderNumber checks the shape produced by NewOrderNumber.
func ValidateOrderNumber(number string) bool {
	if len(number) != len(orderNumberPrefix)+len(orderNumberLayout)+orderNumberSuffix {
		return false
	}
	if number[:len(orderNumberPrefix)] != orderNumberPrefix {
		return false
	}
	for _, r := range number[len(orderNumberPrefix):] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// mergeLines folds duplicate products and orders lines by product id so that
// concurrent checkouts lock product rows in the same order.
func mergeLines(lines []model.CartLine) ([]model.CartLine, error) {
	if len(lines) == 0 {
		return nil, domainErrors.ErrEmptyCart
	}
	qty := make(map[int64]int, len(lines))
	for _, line := range lines {
		if line.ProductID <= 0 || line.Quantity < 1 {
			return nil, fmt.Errorf("cart line %d x%d: %w", line.ProductID, line.Quantity, domainErrors.ErrInvalidInput)
		}
		qty[line.ProductID] += line.Quantity
	}
	merged := make([]model.CartLine, 0, len(qty))
	for id, q := range qty {
		merged = append(merged, model.CartLine{ProductID: id, Quantity: q})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ProductID < merged[j].ProductID })
	return merged, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
