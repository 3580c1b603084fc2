package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/controllers"
)

func CartRoutes(server *gin.Engine, auth gin.HandlerFunc, carts *controllers.CartController) {
	cart := server.Group("/cart", auth)
	{
		cart.POST("/add/:productId/:quantity", carts.AddToCart)
		cart.DELETE("/remove/:productId", carts.RemoveFromCart)
		cart.GET("/view", carts.GetCart)
	}
}
