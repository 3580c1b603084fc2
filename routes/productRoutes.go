package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/controllers"
)

func ProductRoutes(server *gin.Engine, products *controllers.ProductController) {
	server.GET("/product", products.GetProducts)
	server.GET("/product/:id", products.GetProduct)
}
