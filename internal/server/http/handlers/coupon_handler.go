package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/server/http/dto"
)

// CouponHandler manages coupon administration and previews.
type CouponHandler struct {
	facade CouponFacade
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(facade CouponFacade) *CouponHandler {
	return &CouponHandler{facade: facade}
}

// Create handles POST /api/admin/coupons.
func (h *CouponHandler) Create(c *gin.Context) {
	var req dto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	coupon, err := h.facade.CreateCoupon(c.Request.Context(), &model.Coupon{
		Code:             req.Code,
		Description:      req.Description,
		Type:             model.DiscountType(req.DiscountType),
		Value:            req.DiscountValue,
		MaxDiscount:      req.MaxDiscount,
		MinOrderValue:    req.MinOrderValue,
		ValidFrom:        req.ValidFrom,
		ValidUntil:       req.ValidUntil,
		UsageLimit:       req.UsageLimit,
		PerUserLimit:     req.PerUserLimit,
		Categories:       req.Categories,
		Products:         req.Products,
		ExcludedProducts: req.ExcludedProducts,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCouponResponse(*coupon))
}

// List handles GET /api/admin/coupons.
func (h *CouponHandler) List(c *gin.Context) {
	coupons, err := h.facade.Coupons(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := make([]dto.CouponResponse, 0, len(coupons))
	for _, cp := range coupons {
		resp = append(resp, toCouponResponse(cp))
	}
	c.JSON(http.StatusOK, resp)
}

// Retire handles DELETE /api/admin/coupons/:code.
func (h *CouponHandler) Retire(c *gin.Context) {
	if err := h.facade.RetireCoupon(c.Request.Context(), c.Param("code")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Check handles POST /api/coupons/check.
func (h *CouponHandler) Check(c *gin.Context) {
	var req dto.CouponCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	check, err := h.facade.CheckCoupon(c.Request.Context(), req.Code, req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CouponCheckResponse{
		Code:         check.Coupon.Code,
		DiscountType: string(check.Coupon.Type),
		Discount:     check.Discount,
	})
}

func toCouponResponse(cp model.Coupon) dto.CouponResponse {
	return dto.CouponResponse{
		ID: cp.ID,
		CouponRequest: dto.CouponRequest{
			Code:             cp.Code,
			Description:      cp.Description,
			DiscountType:     string(cp.Type),
			DiscountValue:    cp.Value,
			MaxDiscount:      cp.MaxDiscount,
			MinOrderValue:    cp.MinOrderValue,
			ValidFrom:        cp.ValidFrom,
			ValidUntil:       cp.ValidUntil,
			UsageLimit:       cp.UsageLimit,
			PerUserLimit:     cp.PerUserLimit,
			Categories:       cp.Categories,
			Products:         cp.Products,
			ExcludedProducts: cp.ExcludedProducts,
		},
		UsedCount: cp.UsedCount,
		State:     string(cp.State),
	}
}
