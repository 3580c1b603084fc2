package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/services"
)

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, exists := CurrentUser(ctx)
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "User not found in context",
				"code":    services.ErrUnauthenticated.Code,
			})
			return
		}

		if !user.IsAdmin() {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": services.ErrForbidden.Message,
				"code":    services.ErrForbidden.Code,
			})
			return
		}

		ctx.Next()
	}
}
