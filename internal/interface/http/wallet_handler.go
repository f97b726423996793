package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coinquest/coinquest-api/internal/application"
	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
	"github.com/coinquest/coinquest-api/pkg/response"
	"github.com/coinquest/coinquest-api/pkg/validation"
)

type WalletHandler struct {
	Svc    *application.WalletService
	Logger *logrus.Logger
}

func NewWalletHandler(svc *application.WalletService, logger *logrus.Logger) *WalletHandler {
	return &WalletHandler{Svc: svc, Logger: logger}
}

type amountRequest struct {
	Amount      int    `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"omitempty,max=200"`
}

type expensesRequest struct {
	Tax       int `json:"tax" binding:"gte=0"`
	Rent      int `json:"rent" binding:"gte=0"`
	Food      int `json:"food" binding:"gte=0"`
	Utilities int `json:"utilities" binding:"gte=0"`
	Other     int `json:"other" binding:"gte=0"`
}

// Get GET /api/wallet
func (h *WalletHandler) Get(c *gin.Context) {
	uid := c.GetString("userID")
	state, err := h.Svc.Get(c.Request.Context(), uid)
	if err != nil {
		h.writeWalletError(c, err)
		return
	}
	response.Success(c, http.StatusOK, state, "wallet", nil)
}

// Earn POST /api/wallet/earn
func (h *WalletHandler) Earn(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	desc := req.Description
	if desc == "" {
		desc = "Earned lucre"
	}

	uid := c.GetString("userID")
	res, err := h.Svc.Earn(c.Request.Context(), uid, req.Amount, desc)
	if err != nil {
		h.writeWalletError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "lucre earned", nil)
}

// AddDiscretionary POST /api/wallet/discretionary/add
func (h *WalletHandler) AddDiscretionary(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	desc := req.Description
	if desc == "" {
		desc = "Discretionary deposit"
	}

	uid := c.GetString("userID")
	w, tx, err := h.Svc.AddDiscretionary(c.Request.Context(), uid, req.Amount, desc)
	if err != nil {
		h.writeWalletError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"wallet": w, "transaction": tx}, "balance added", nil)
}

// DeductDiscretionary POST /api/wallet/discretionary/deduct
func (h *WalletHandler) DeductDiscretionary(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	desc := req.Description
	if desc == "" {
		desc = "Discretionary spend"
	}

	uid := c.GetString("userID")
	w, tx, err := h.Svc.DeductDiscretionary(c.Request.Context(), uid, req.Amount, desc)
	if err != nil {
		h.writeWalletError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"wallet": w, "transaction": tx}, "balance deducted", nil)
}

// Payout POST /api/wallet/payout
func (h *WalletHandler) Payout(c *gin.Context) {
	uid := c.GetString("userID")
	w, tx, err := h.Svc.Payout(c.Request.Context(), uid)
	if err != nil {
		h.writeWalletError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"wallet": w, "transaction": tx}, "payout complete", nil)
}

// UpdateExpenses PUT /api/wallet/expenses
func (h *WalletHandler) UpdateExpenses(c *gin.Context) {
	var req expensesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	uid := c.GetString("userID")
	w, err := h.Svc.UpdateExpenses(c.Request.Context(), uid, entity.Expenses{
		Tax:       req.Tax,
		Rent:      req.Rent,
		Food:      req.Food,
		Utilities: req.Utilities,
		Other:     req.Other,
	})
	if err != nil {
		h.writeWalletError(c, err)
		return
	}
	response.Success(c, http.StatusOK, w, "expenses updated", nil)
}

func (h *WalletHandler) writeWalletError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidAmount):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, repository.ErrInsufficientBalance):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	default:
		h.Logger.WithError(err).Error("wallet request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
