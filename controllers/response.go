package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/middlewares"
	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/services"
)

const (
	msgInvalidID        = "Invalid identifier"
	msgInvalidInput     = "Invalid input"
	msgUserNotInContext = "User not found in context"
	msgNoOrders         = "No orders found!"
	msgCartEmpty        = "Cart is empty."
	msgNoPromoCodes     = "No promo codes found."
	msgPromoCreated     = "Promo code created successfully"
	msgBalanceAdded     = "Balance added successfully!"
	msgPromoSweepDone   = "Expired promo codes deactivated."
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message, code string) {
	sendJSONResponse(ctx, status, gin.H{"message": message, "code": code})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInvalid:
		return http.StatusBadRequest
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindUnauthorized:
		return http.StatusForbidden
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes err using its taxonomy. Internal details are
// attached to the gin context for the access log, never to the body.
func respondWithError(ctx *gin.Context, err error) {
	kind := services.KindOf(err)
	if kind == services.KindInternal {
		_ = ctx.Error(err)
	}
	sendErrorResponse(ctx, statusFor(kind), services.MessageOf(err), services.CodeOf(err))
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidID, "INVALID_ID")
		return 0, false
	}
	return uint(id), true
}

func currentUser(ctx *gin.Context) (models.User, bool) {
	user, ok := middlewares.CurrentUser(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgUserNotInContext, services.ErrUnauthenticated.Code)
		return models.User{}, false
	}
	return user, true
}
