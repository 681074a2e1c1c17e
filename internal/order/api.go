// Exposes all of the REST APIs related to courier Orders in Welzyne.

package order

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package order onto the gin server.
func APIHandlers(router *gin.Engine, service Service, authWithToken gin.HandlerFunc, adminOnly, adminOrUser gin.HandlerFunc, logger log.Logger) {
	ordergroup := router.Group("/api/orders", authWithToken)
	{
		ordergroup.GET("", adminOrUser, getOrders(service, logger))
		ordergroup.POST("", adminOrUser, createOrder(service, logger))
		ordergroup.PATCH("/:id/status", adminOnly, updateOrderStatus(service, logger))
		ordergroup.DELETE("/:id", adminOnly, deleteOrder(service, logger))
	}
}

// createOrder returns a handler which books a new courier order.
// Broadcasts NEW_ORDER to connected dashboards on success.
func createOrder(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var oe entity.Order

		// Serialize received data into Order struct
		if binderr := gctx.ShouldBindJSON(&oe); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with Order struct.")
			gctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		booked, err := service.createOrder(gctx, oe)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusCreated, booked)
	}
}

// getOrders returns a handler which lists every courier order in Welzyne.
func getOrders(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		orders, err := service.getAllOrders(gctx)
		if err != nil {
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, orders)
	}
}

// updateOrderStatus returns a handler which moves an order along its delivery lifecycle, admin only.
// Broadcasts ORDER_UPDATED to connected dashboards on success.
func updateOrderStatus(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var body struct {
			Status string `json:"status"`
		}
		if binderr := gctx.ShouldBindJSON(&body); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with status body.")
			gctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}
		oe, err := service.updateStatus(gctx, gctx.Param("id"), body.Status)
		if err != nil {
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, oe)
	}
}

// deleteOrder returns a handler which removes a courier order, admin only.
// Broadcasts ORDER_DELETED to connected dashboards on success.
func deleteOrder(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		if err := service.deleteOrder(gctx, gctx.Param("id")); err != nil {
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}
