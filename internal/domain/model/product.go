package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry together with its stock counter.
type Product struct {
	ID        int64
	Name      string
	Category  string
	Unit      string
	Price     decimal.Decimal
	SalePrice decimal.NullDecimal
	Stock     int
	State     Lifecycle
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectivePrice returns the sale price when it undercuts the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.LessThan(p.Price) && !p.SalePrice.Decimal.IsNegative() {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Query    string
	Limit    int
	Offset   int
}

// CartLine is a product reference with requested quantity.
type CartLine struct {
	ProductID int64
	Quantity  int
}
