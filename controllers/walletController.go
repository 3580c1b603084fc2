package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/services"
	"github.com/Kariqs/amexan-wallet/utils"
)

type WalletService interface {
	Balance(ctx context.Context, userID uint) (models.Wallet, error)
	TopUp(ctx context.Context, userID uint, amount decimal.Decimal) (models.Wallet, error)
}

type WalletController struct {
	wallets WalletService
}

func NewWalletController(wallets WalletService) *WalletController {
	return &WalletController{wallets: wallets}
}

func (c *WalletController) GetBalance(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	wallet, err := c.wallets.Balance(ctx.Request.Context(), user.ID)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"balance": wallet.Balance})
}

// TopUp credits a user's wallet. Admin only; the amount is always added.
func (c *WalletController) TopUp(ctx *gin.Context) {
	userID, ok := parseID(ctx, "userId")
	if !ok {
		return
	}
	amount, ok := utils.ParseAmount(ctx.Param("amount"))
	if !ok {
		sendErrorResponse(ctx, http.StatusBadRequest, services.ErrInvalidAmount.Message, services.ErrInvalidAmount.Code)
		return
	}

	wallet, err := c.wallets.TopUp(ctx.Request.Context(), userID, amount)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": msgBalanceAdded,
		"balance": wallet.Balance,
	})
}
