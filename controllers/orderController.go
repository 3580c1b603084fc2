package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/services"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uint, promoCode string) (services.OrderResult, error)
	CancelOrder(ctx context.Context, userID, orderID uint) (services.OrderResult, error)
	ListOrders(ctx context.Context, userID uint) ([]services.OrderSummary, error)
	GetOrder(ctx context.Context, userID, orderID uint) (services.OrderDetail, error)
}

type OrderController struct {
	orders OrderService
}

func NewOrderController(orders OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// PlaceOrder accepts the promo code either as a path segment or as the
// promoCode query value.
func (c *OrderController) PlaceOrder(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	promoCode := ctx.Param("promoCode")
	if promoCode == "" {
		promoCode = ctx.Query("promoCode")
	}

	result, err := c.orders.PlaceOrder(ctx.Request.Context(), user.ID, promoCode)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": result.Message,
		"orderId": result.OrderID,
	})
}

func (c *OrderController) CancelOrder(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	orderID, ok := parseID(ctx, "orderId")
	if !ok {
		return
	}

	result, err := c.orders.CancelOrder(ctx.Request.Context(), user.ID, orderID)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": result.Message,
		"orderId": result.OrderID,
	})
}

func (c *OrderController) GetOrders(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	orders, err := c.orders.ListOrders(ctx.Request.Context(), user.ID)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	if len(orders) == 0 {
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgNoOrders})
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

func (c *OrderController) GetOrderById(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	orderID, ok := parseID(ctx, "orderId")
	if !ok {
		return
	}

	detail, err := c.orders.GetOrder(ctx.Request.Context(), user.ID, orderID)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"order": detail.Order,
		"audit": detail.Audit,
	})
}
