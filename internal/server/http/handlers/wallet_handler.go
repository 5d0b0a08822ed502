package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/server/http/dto"
)

// WalletHandler manages wallet-related endpoints.
type WalletHandler struct {
	facade WalletFacade
}

// NewWalletHandler constructs WalletHandler.
func NewWalletHandler(facade WalletFacade) *WalletHandler {
	return &WalletHandler{facade: facade}
}

// Balance handles GET /api/wallet.
func (h *WalletHandler) Balance(c *gin.Context) {
	wallet, err := h.facade.Wallet(c.Request.Context(), CurrentIdentity(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WalletResponse{Balance: wallet.Balance, UpdatedAt: wallet.UpdatedAt})
}

// Transactions handles GET /api/wallet/transactions.
func (h *WalletHandler) Transactions(c *gin.Context) {
	page, err := h.facade.WalletTransactions(c.Request.Context(), CurrentIdentity(c).UserID, queryInt(c, "page"), queryInt(c, "pageSize"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := dto.TransactionPageResponse{
		Items:    make([]dto.TransactionResponse, 0, len(page.Items)),
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
	for _, tx := range page.Items {
		resp.Items = append(resp.Items, toTransactionResponse(tx))
	}
	c.JSON(http.StatusOK, resp)
}

// Credit handles POST /api/admin/wallets/:userId/credit.
func (h *WalletHandler) Credit(c *gin.Context) {
	userID, ok := int64Param(c, "userId")
	if !ok {
		return
	}
	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	tx, err := h.facade.CreditWallet(c.Request.Context(), userID, model.WalletEntry{
		Type:        model.TransactionCredit,
		Amount:      req.Amount,
		Description: req.Description,
		Reference:   req.Reference,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(*tx))
}

func toTransactionResponse(tx model.WalletTransaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:           tx.ID,
		Type:         string(tx.Type),
		Amount:       tx.Amount,
		BalanceAfter: tx.BalanceAfter,
		Description:  tx.Description,
		Reference:    tx.Reference,
		OrderID:      tx.OrderNumber,
		CreatedAt:    tx.CreatedAt,
	}
}
