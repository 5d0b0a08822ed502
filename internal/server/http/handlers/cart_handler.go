package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/server/http/dto"
)

// CartHandler manages the caller's cart and address book.
type CartHandler struct {
	carts     CartFacade
	addresses AddressFacade
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(carts CartFacade, addresses AddressFacade) *CartHandler {
	return &CartHandler{carts: carts, addresses: addresses}
}

// View handles GET /api/cart.
func (h *CartHandler) View(c *gin.Context) {
	view, err := h.carts.Cart(c.Request.Context(), CurrentIdentity(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := dto.CartResponse{
		Items:        make([]dto.CartItemResponse, 0, len(view.Entries)),
		PriceSummary: view.Summary,
	}
	for _, e := range view.Entries {
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ProductID: e.Item.ProductID,
			Name:      e.Item.Name,
			Unit:      e.Item.Unit,
			Price:     e.Item.Price,
			SalePrice: e.Item.SalePrice,
			Quantity:  e.Item.Quantity,
			Available: e.Available,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// PutItem handles PUT /api/cart/items.
func (h *CartHandler) PutItem(c *gin.Context) {
	var req dto.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	line := model.CartLine{ProductID: req.ProductID, Quantity: req.Quantity}
	if err := h.carts.PutCartItem(c.Request.Context(), CurrentIdentity(c).UserID, line); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveItem handles DELETE /api/cart/items/:productId.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := int64Param(c, "productId")
	if !ok {
		return
	}
	if err := h.carts.RemoveCartItem(c.Request.Context(), CurrentIdentity(c).UserID, productID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Addresses handles GET /api/addresses.
func (h *CartHandler) Addresses(c *gin.Context) {
	addrs, err := h.addresses.Addresses(c.Request.Context(), CurrentIdentity(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := make([]dto.AddressResponse, 0, len(addrs))
	for _, a := range addrs {
		resp = append(resp, toAddressResponse(a))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateAddress handles POST /api/addresses.
func (h *CartHandler) CreateAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	addr, err := h.addresses.CreateAddress(c.Request.Context(), CurrentIdentity(c).UserID, model.Address{
		Label:      req.Label,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAddressResponse(*addr))
}

func toAddressResponse(a model.Address) dto.AddressResponse {
	return dto.AddressResponse{
		ID: a.ID,
		AddressRequest: dto.AddressRequest{
			Label:      a.Label,
			FullName:   a.FullName,
			Phone:      a.Phone,
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
		},
		CreatedAt: a.CreatedAt,
	}
}
