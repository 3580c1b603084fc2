package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/controllers"
)

func OrderRoutes(server *gin.Engine, auth gin.HandlerFunc, orders *controllers.OrderController) {
	order := server.Group("/order", auth)
	{
		order.POST("/place", orders.PlaceOrder)
		order.POST("/place/:promoCode", orders.PlaceOrder)
		order.DELETE("/cancel/:orderId", orders.CancelOrder)
		order.GET("/history", orders.GetOrders)
		order.GET("/:orderId", orders.GetOrderById)
	}
}
