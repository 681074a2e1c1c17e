// Exposes all of the REST APIs related to User authentication in Welzyne.

package auth

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package auth onto the gin server.
func APIHandlers(router *gin.Engine, authService Service, authWithToken gin.HandlerFunc, logger log.Logger) {
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", register(authService, logger))
		authGroup.POST("/login", login(authService, logger))
		authGroup.GET("/validate", authWithToken, validate(logger))
		authGroup.POST("/logout", authWithToken, logout(authService, logger))
	}
}

// register returns a handler which takes care of user registration in Welzyne.
func register(authService Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var ue entity.User

		// Serialize received data into User struct
		if binderr := gctx.ShouldBindJSON(&ue); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with User struct.")
			gctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}
		// Self-registration never grants elevated roles
		ue.Role = entity.RoleUser

		// Apply the service logic for User registration in Welzyne
		token, registered, err := authService.register(gctx, ue)
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

		gctx.JSON(http.StatusCreated, gin.H{
			"token": token,
			"user":  registered,
		})
	}
}

// login returns a handler which takes care of user login in Welzyne.
func login(authService Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var creds entity.UserLogin

		// Serialize received data into UserLogin struct
		if binderr := gctx.ShouldBindJSON(&creds); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with UserLogin struct.")
			gctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		// Apply the service logic for User login in Welzyne
		token, ue, err := authService.login(gctx, creds)
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

		gctx.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  ue,
		})
	}
}

// validate returns the user decoded from a valid bearer token.
// AuthMiddleware has already populated User in the request's context.
func validate(logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ue, ok := gctx.Value("User").(entity.User)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in validate")
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		gctx.JSON(http.StatusOK, ue.CloneWithoutPassword())
	}
}

// logout returns a handler which revokes the bearer token used in the request.
func logout(authService Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		if err := authService.logout(gctx); err != nil {
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.AbortWithStatusJSON(err.Status, err)
			return
		}
		gctx.Status(http.StatusOK)
	}
}
