package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/controllers"
	"github.com/Kariqs/amexan-wallet/middlewares"
)

func PromoRoutes(server *gin.Engine, auth gin.HandlerFunc, promos *controllers.PromoController) {
	promo := server.Group("/promocode", auth)
	{
		promo.GET("", promos.GetPromoCodes)
		promo.POST("", middlewares.RequireAdmin(), promos.CreatePromoCode)
		promo.POST("/deactivate-expired", middlewares.RequireAdmin(), promos.DeactivateExpired)
	}
}
