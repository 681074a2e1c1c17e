// Exposes all of the REST APIs related to M-Pesa payments in Welzyne.

package mpesa

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package mpesa onto the gin server.
func APIHandlers(router *gin.Engine, service Service, authWithToken gin.HandlerFunc, adminOrUser gin.HandlerFunc, logger log.Logger) {
	mpesagroup := router.Group("/mpesa", authWithToken, adminOrUser)
	{
		mpesagroup.POST("/stkpush", stkPush(service, logger))
		mpesagroup.POST("/status", status(service, logger))
	}
}

// stkPush returns a handler which prompts the customer's phone to pay for an order.
// Gateway failures are surfaced to the operator as {success:false}, never a 5xx.
func stkPush(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var req entity.STKPushRequest
		if binderr := gctx.ShouldBindJSON(&req); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with STKPushRequest struct.")
			gctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}
		resp, err := service.stkPush(gctx, req)
		if err != nil {
			abortPaymentError(gctx, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    resp,
		})
	}
}

// status returns a handler which reports the verdict on a checkout request.
// Inconclusive gateway answers become {success:false} so pollers keep trying.
func status(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var req entity.STKStatusRequest
		if binderr := gctx.ShouldBindJSON(&req); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with STKStatusRequest struct.")
			gctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}
		resp, err := service.status(gctx, req)
		if err != nil {
			abortPaymentError(gctx, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    resp,
		})
	}
}

// abortPaymentError maps service errors onto the payment response contract:
// gateway trouble is an operator alert carried in a 200 body, the rest keep
// their HTTP status.
func abortPaymentError(gctx *gin.Context, err error) {
	resp, ok := err.(errors.ErrorResponse)
	if !ok {
		// Type assertion error
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
		return
	}
	if resp.Status == http.StatusBadGateway {
		gctx.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": resp.Message,
		})
		return
	}
	gctx.AbortWithStatusJSON(resp.Status, resp)
}
