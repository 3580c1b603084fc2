package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/controllers"
	"github.com/Kariqs/amexan-wallet/middlewares"
)

func WalletRoutes(server *gin.Engine, auth gin.HandlerFunc, wallets *controllers.WalletController) {
	wallet := server.Group("/wallet", auth)
	{
		wallet.GET("", wallets.GetBalance)
		wallet.PUT("/:userId/:amount", middlewares.RequireAdmin(), wallets.TopUp)
	}
}
