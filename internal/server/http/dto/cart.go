package dto

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// CartItemRequest sets the quantity of one product.
type CartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CartItemResponse is a cart line priced against the catalog.
type CartItemResponse struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Quantity  int             `json:"quantity"`
	Available bool            `json:"available"`
}

// CartResponse is the cart with its price preview.
type CartResponse struct {
	Items        []CartItemResponse `json:"items"`
	PriceSummary model.PriceSummary `json:"priceSummary"`
}
