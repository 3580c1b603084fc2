package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

func GetHome(ctx *gin.Context) {
	message := `Welcome to Amexan API ❤️. Pay for your cart straight from your wallet.

The following are the endpoints for this API:

PRODUCT
- GET "/product" - Get all products
- GET "/product/{id}" - Get product by ID

CART
- POST "/cart/add/:productId/:quantity" - Add a product to your cart
- DELETE "/cart/remove/:productId" - Remove a product from your cart
- GET "/cart/view" - View your cart

ORDER
- POST "/order/place" - Place an order for your cart
- POST "/order/place/:promoCode" - Place an order with a promo code
- DELETE "/order/cancel/:orderId" - Cancel an order and refund your wallet
- GET "/order/history" - Get your orders
- GET "/order/:orderId" - Get order by ID

WALLET
- GET "/wallet" - Get your wallet balance
- PUT "/wallet/:userId/:amount" - Add balance to a wallet (admin)

PROMO CODE
- GET "/promocode" - Get all promo codes
- POST "/promocode" - Create promo code (admin)
- POST "/promocode/deactivate-expired" - Deactivate expired promo codes (admin)`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

// Healthz reports whether the database answers.
func Healthz(db Pinger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := db.PingContext(ctx.Request.Context()); err != nil {
			_ = ctx.Error(err)
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
