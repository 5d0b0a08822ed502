package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/server/http/dto"
)

const (
	// SignatureHeader carries the provider HMAC of a webhook body.
	SignatureHeader = "X-Payment-Signature"
	// MaxWebhookBody bounds the webhook payload read before its signature is checked.
	MaxWebhookBody = 1 << 20
)

// PaymentHandler serves payment initiation, verification and webhooks.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Initiate handles POST /api/orders/:number/payment.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	intent, err := h.facade.InitiatePayment(c.Request.Context(), CurrentIdentity(c), c.Param("number"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentIntentResponse{
		OrderID:         intent.OrderNumber,
		ProviderOrderID: intent.ProviderOrderID,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		KeyID:           intent.KeyID,
	})
}

// Verify handles POST /api/payments/verify.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	order, err := h.facade.VerifyPayment(c.Request.Context(), CurrentIdentity(c).UserID, model.PaymentVerification{
		ProviderOrderID:   req.ProviderOrderID,
		ProviderPaymentID: req.ProviderPaymentID,
		Signature:         req.Signature,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Webhook handles POST /api/payments/webhook. The signature covers the raw
// body, so it is read before any decoding.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusBadRequest)
		return
	}
	if err := h.facade.HandlePaymentWebhook(c.Request.Context(), body, c.GetHeader(SignatureHeader)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
