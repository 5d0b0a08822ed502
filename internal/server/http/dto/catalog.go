package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest creates a catalog entry.
type ProductRequest struct {
	Name      string              `json:"name"`
	Category  string              `json:"category"`
	Unit      string              `json:"unit"`
	Price     decimal.Decimal     `json:"price"`
	SalePrice decimal.NullDecimal `json:"salePrice"`
	Stock     int                 `json:"stock"`
}

// StockRequest adds units to a product.
type StockRequest struct {
	Quantity int `json:"quantity"`
}

// ProductResponse describes a catalog entry.
type ProductResponse struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Category  string              `json:"category"`
	Unit      string              `json:"unit"`
	Price     decimal.Decimal     `json:"price"`
	SalePrice decimal.NullDecimal `json:"salePrice"`
	Stock     int                 `json:"stock"`
	State     string              `json:"state"`
	UpdatedAt time.Time           `json:"updatedAt"`
}
