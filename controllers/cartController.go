package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/services"
)

type CartService interface {
	AddItem(ctx context.Context, userID, productID uint, qty int) (string, error)
	RemoveItem(ctx context.Context, userID, productID uint) (string, error)
	View(ctx context.Context, userID uint) (services.CartView, error)
}

type CartController struct {
	carts CartService
}

func NewCartController(carts CartService) *CartController {
	return &CartController{carts: carts}
}

func (c *CartController) AddToCart(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	productID, ok := parseID(ctx, "productId")
	if !ok {
		return
	}
	quantity, err := strconv.Atoi(ctx.Param("quantity"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, services.ErrInvalidQuantity.Message, services.ErrInvalidQuantity.Code)
		return
	}

	message, err := c.carts.AddItem(ctx.Request.Context(), user.ID, productID, quantity)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": message})
}

func (c *CartController) RemoveFromCart(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	productID, ok := parseID(ctx, "productId")
	if !ok {
		return
	}

	message, err := c.carts.RemoveItem(ctx.Request.Context(), user.ID, productID)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": message})
}

func (c *CartController) GetCart(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	cart, err := c.carts.View(ctx.Request.Context(), user.ID)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	if len(cart.Items) == 0 {
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgCartEmpty})
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"cartItems": cart.Items,
		"subtotal":  cart.Subtotal,
	})
}
