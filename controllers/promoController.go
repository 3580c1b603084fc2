package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/services"
)

type PromoService interface {
	Create(ctx context.Context, in services.PromoInput) (models.PromoCode, error)
	List(ctx context.Context) ([]services.PromoView, error)
}

type PromoSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type PromoController struct {
	promos  PromoService
	sweeper PromoSweeper
}

func NewPromoController(promos PromoService, sweeper PromoSweeper) *PromoController {
	return &PromoController{promos: promos, sweeper: sweeper}
}

func (c *PromoController) CreatePromoCode(ctx *gin.Context) {
	var input services.PromoInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput, services.ErrPromoInvalid.Code)
		return
	}

	promo, err := c.promos.Create(ctx.Request.Context(), input)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message":   msgPromoCreated,
		"promoCode": promo,
	})
}

func (c *PromoController) GetPromoCodes(ctx *gin.Context) {
	promos, err := c.promos.List(ctx.Request.Context())
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	if len(promos) == 0 {
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgNoPromoCodes})
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"promoCodes": promos})
}

func (c *PromoController) DeactivateExpired(ctx *gin.Context) {
	n, err := c.sweeper.Sweep(ctx.Request.Context())
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message":     msgPromoSweepDone,
		"deactivated": n,
	})
}
