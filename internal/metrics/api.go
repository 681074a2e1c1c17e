// Exposes the REST API related to dashboard Metrics in Welzyne.

package metrics

import (
	"Welzyne/internal/errors"
	"Welzyne/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package metrics onto the gin server.
func APIHandlers(router *gin.Engine, service Service, authWithToken, adminOnly gin.HandlerFunc, logger log.Logger) {
	metricsgroup := router.Group("/api/metrics", authWithToken)
	{
		metricsgroup.GET("", adminOnly, getMetrics(service, logger))
	}
}

// getMetrics returns a handler which serves the dashboard counters, admin only.
func getMetrics(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		metrics, err := service.getMetrics(gctx)
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
		gctx.JSON(http.StatusOK, metrics)
	}
}
