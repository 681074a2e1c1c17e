// List of all REST API endpoints being used by Welzyne can be found here.

package main

import (
	"Welzyne/internal/auth"
	"Welzyne/internal/entity"
	"Welzyne/internal/mailer"
	"Welzyne/internal/metrics"
	"Welzyne/internal/mpesa"
	"Welzyne/internal/order"
	"Welzyne/internal/user"
	"Welzyne/internal/ws"
	"Welzyne/pkg/db"
	"Welzyne/pkg/log"
	"Welzyne/pkg/middlewares"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Router wires every repository, service and API group onto the gin server.
func Router(router *gin.Engine, dbConnWrp *db.RedisDB, userRepo user.Repository, registry *ws.Registry, logger log.Logger) {
	router.Use(middlewares.CORSMiddleware(os.Getenv("CLIENT_ORIGIN")))
	router.Use(middlewares.CorrelationMiddleware())

	// Repositories
	authRepo := auth.NewRepository(dbConnWrp)
	orderRepo := order.NewRepository(dbConnWrp)
	mpesaRepo := mpesa.NewRepository(dbConnWrp)

	// Services
	mailerService := mailer.NewService()
	secret := os.Getenv("SECRET_KEY")
	authService := auth.NewService(secret, userRepo, authRepo, registry, logger)
	userService := user.NewService(userRepo, registry, logger)
	orderService := order.NewService(orderRepo, registry, mailerService, logger)
	mpesaService := mpesa.NewService(mpesa.NewClient(mpesaConfigFromEnv()), mpesaRepo, orderRepo, registry, mailerService, logger)
	metricsService := metrics.NewService(userRepo, orderRepo, logger)

	// Middleware chain shared across the protected groups
	authWithToken := auth.AuthMiddleware(logger, authRepo, userRepo, secret)
	adminOnly := auth.RoleMiddleware(logger, entity.RoleAdmin)
	adminOrUser := auth.RoleMiddleware(logger, entity.RoleAdmin, entity.RoleUser)
	anyRole := auth.RoleMiddleware(logger, entity.RoleAdmin, entity.RoleUser, entity.RoleGuest)

	// This is the route to default path
	router.GET("/", func(gctx *gin.Context) {
		gctx.String(http.StatusOK, "Welcome to Welzyne Courier Services!")
	})
	router.GET("/api/health", func(gctx *gin.Context) {
		gctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth.APIHandlers(router, authService, authWithToken, logger)
	user.APIHandlers(router, userService, authWithToken, adminOnly, adminOrUser, anyRole, logger)
	order.APIHandlers(router, orderService, authWithToken, adminOnly, adminOrUser, logger)
	mpesa.APIHandlers(router, mpesaService, authWithToken, adminOrUser, logger)
	metrics.APIHandlers(router, metricsService, authWithToken, adminOnly, logger)
	ws.APIHandlers(router, registry, logger)
}
