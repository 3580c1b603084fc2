package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/services"
)

const userKey = "user"

// IdentityResolver turns an Authorization header into a live user.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (models.User, error)
}

func RequireAuth(identity IdentityResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header is required",
				"code":    services.ErrUnauthenticated.Code,
			})
			return
		}

		user, err := identity.Resolve(ctx.Request.Context(), header)
		if err != nil {
			status := http.StatusUnauthorized
			if services.KindOf(err) == services.KindInternal {
				status = http.StatusInternalServerError
			}
			ctx.AbortWithStatusJSON(status, gin.H{
				"message": services.MessageOf(err),
				"code":    services.CodeOf(err),
			})
			return
		}

		ctx.Set(userKey, user)
		ctx.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(ctx *gin.Context) (models.User, bool) {
	v, exists := ctx.Get(userKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
