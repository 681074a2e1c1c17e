// Exposes all of the REST APIs related to User Model in Welzyne.

package user

import (
	"Welzyne/internal/errors"
	"Welzyne/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package user onto the gin server.
// Routes are gated by an allow-list of roles as denoted by the middleware arguments.
func APIHandlers(router *gin.Engine, service Service, authWithToken gin.HandlerFunc, adminOnly, adminOrUser, anyRole gin.HandlerFunc, logger log.Logger) {
	usergroup := router.Group("/api/users", authWithToken)
	{
		usergroup.GET("", adminOnly, getUsers(service, logger))
		usergroup.PATCH("/:id/status", adminOnly, updateUserStatus(service, logger))
		usergroup.DELETE("/:id", adminOnly, deleteUser(service, logger))
		// Role-gated welcome routes
		usergroup.GET("/admin", adminOnly, welcome("Welcome Admin"))
		usergroup.GET("/user", adminOrUser, welcome("Welcome User"))
		usergroup.GET("/guest", anyRole, welcome("Welcome Guest"))
	}
}

// getUsers returns a handler which lists every user in Welzyne, admin only.
func getUsers(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		users, err := service.getAllUsers(gctx)
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
		gctx.JSON(http.StatusOK, users)
	}
}

// updateUserStatus returns a handler which toggles an user's account status, admin only.
// Broadcasts USER_UPDATED to connected dashboards on success.
func updateUserStatus(service Service, logger log.Logger) gin.HandlerFunc {
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
		ue, err := service.updateStatus(gctx, gctx.Param("id"), body.Status)
		if err != nil {
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, ue)
	}
}

// deleteUser returns a handler which removes an user account, admin only.
// Broadcasts USER_DELETED to connected dashboards on success.
func deleteUser(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		if err := service.deleteUser(gctx, gctx.Param("id")); err != nil {
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}

// welcome returns a trivial handler used by the role-gated demo routes.
func welcome(message string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		gctx.JSON(http.StatusOK, gin.H{"message": message})
	}
}
