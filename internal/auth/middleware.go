// Auth middleware is used to validate the JWT bearer token sent via the Authorization header.
// This verification is needed for endpoints which needs authenticated users.

package auth

import (
	"Welzyne/internal/entity"
	"Welzyne/internal/errors"
	"Welzyne/internal/user"
	"Welzyne/pkg/log"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// This middleware is used to verify and validate the incoming JWT.
// Secret is the shared signing key used to parse the bearer token.
// Blocks the request to go further into other handlers if token is invalid.
func AuthMiddleware(logger log.Logger, authRepo Repository, userRepo user.Repository, secret string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		// Extract token from the Authorization header
		token := fetchTokenFromHeader(gctx)
		if token == "" {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, errors.Unauthorized("No token provided"))
			return
		}
		// Parse the token with secret if the token is valid
		vrftoken, valerr := parseIntoJWT(gctx, logger, secret, token)
		if valerr != nil || !vrftoken.Valid {
			// Abort the call chain for the request here as the user is unauthenticated
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, errors.Unauthorized("Invalid token"))
			return
		}
		// Extract TokenUUID and UserID from token claims
		tokenclaims, ok := vrftoken.Claims.(jwt.MapClaims)
		if !ok {
			// Type assertion error
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		tokenUUID, ok := tokenclaims["token_uuid"].(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in AuthMiddleware")
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		userID, ok := tokenclaims["user_id"].(string)
		if !ok {
			// Type assertion error
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		// Verify if TokenUUID:UserID is available in DB, expired or revoked tokens won't be
		valid, dberr := authRepo.TokenExists(gctx, logger, tokenUUID, userID)
		if dberr != nil {
			// Error in TokenExists
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		} else if !valid {
			// token missing in DB or mismatch with UserID
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, errors.Unauthorized("Invalid token"))
			return
		}
		// Fetch a fresh user record so role changes take effect without re-login
		ue, dberr := userRepo.GetUser(gctx, logger, userID)
		if dberr != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, errors.Unauthorized("Invalid token"))
			return
		}
		// Set User in request's context
		// This pair will be used further down in the handler chain
		gctx.Set("User", ue)
		// Set User's token UUID which might be useful during logout
		gctx.Set("token_uuid", tokenUUID)
		gctx.Next()
	}
}

// RoleMiddleware gates a route behind an allow-list of roles.
// Must run after AuthMiddleware which populates User in the request's context.
func RoleMiddleware(logger log.Logger, roles ...string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ue, ok := gctx.Value("User").(entity.User)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in RoleMiddleware")
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		for _, role := range roles {
			if ue.Role == role {
				gctx.Next()
				return
			}
		}
		gctx.AbortWithStatusJSON(http.StatusForbidden, errors.Forbidden("Access denied"))
	}
}

// Helper to fetch the bearer token string from the Authorization header.
func fetchTokenFromHeader(gctx *gin.Context) string {
	header := gctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Helper to parse and return token string fetched from header.
func parseIntoJWT(gctx *gin.Context, logger log.Logger, secret string, token string) (*jwt.Token, error) {
	return jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Check the signing method
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			err := errors.New(fmt.Sprintf("Unexpected signing method found: %s", t.Header["alg"]))
			logger.WithCtx(gctx).Error().Err(err).Msg("Rejected token with unexpected signing method")
			return nil, err
		}
		return []byte(secret), nil
	})
}
