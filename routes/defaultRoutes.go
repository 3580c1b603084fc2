package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/controllers"
)

func DefaultRoutes(server *gin.Engine, db controllers.Pinger, metricsHandler http.Handler) {
	server.GET("/", controllers.GetHome)
	server.GET("/healthz", controllers.Healthz(db))
	server.GET("/metrics", gin.WrapH(metricsHandler))
}
