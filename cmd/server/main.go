// The main file of Welzyne.

package main

import (
	"Welzyne/internal/config"
	"Welzyne/internal/entity"
	"Welzyne/internal/mpesa"
	"Welzyne/internal/user"
	"Welzyne/internal/ws"
	"Welzyne/pkg/cleanup"
	"Welzyne/pkg/db"
	"Welzyne/pkg/log"
	"Welzyne/pkg/logger"
	"Welzyne/pkg/validations"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// Indicates the current version of Welzyne.
	Version = "1.0.0"
	// Address and Port to be used by gin.
	srvaddr, srvport string
)

func main() {
	// Fetching ENV first to load DEV config before anything reads it.
	environment := os.Getenv("ENV")
	if len(environment) == 0 {
		fmt.Println("os couldn't load ENV.")
		os.Exit(1)
	}
	if environment == "DEV" {
		config.LoadDevConfig()
	}
	logger.Setup(environment)

	logger := log.New(Version)
	logger.Info().Msg(fmt.Sprintf("Welcome to Welzyne: v%s", Version))
	logger.Info().Msg(fmt.Sprintf("Welzyne Environment: %s", environment))

	ctx := context.Background()

	// Opening a connection and sending a PING request to DB for connection status check.
	dbConnWrp := db.NewDbConnection(ctx, logger)
	dbConnWrp.CheckDbConnection(ctx, logger)

	// Custom govalidator tags used by the entity valid annotations.
	validations.RegisterCustomValidations(ctx, logger)

	// Fetching addr and port depending upon env flag.
	srvaddr, srvport = os.Getenv("SRV_ADDR"), os.Getenv("SRV_PORT")
	// This is the preferred mode used by gin server in DEV environment.
	if environment == "DEV" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// The WebSocket registry fans every mutation event out to connected dashboards.
	registry := ws.NewRegistry(logger)
	go registry.StartHeartbeat()

	// Seeding the admin account used to operate the dashboard.
	userRepo := user.NewRepository(dbConnWrp)
	initAdmin(ctx, userRepo, logger)

	// Initializing the gin server.
	server := gin.New()

	// Forcing gin to use custom Logger instead of the default one.
	server.Use(log.LoggerGinExtension(logger))
	server.Use(gin.Recovery())

	// Running Router() which routes all of the REST API groups and paths.
	Router(server, dbConnWrp, userRepo, registry, logger)

	// Running the server with defined addr and port.
	srv := &http.Server{
		Addr:    srvaddr + ":" + srvport,
		Handler: server,
	}

	// ListenAndServe is a blocking operation, putting it a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Welzyne server couldn't ListenAndServe")
		}
	}()

	// Graceful shutdown of Welzyne server triggered due to system interruptions.
	wait := cleanup.GracefulShutdown(context.Background(), 5*time.Second, map[string]cleanup.Operation{
		"WebSocket-hub": func(ctx context.Context) error {
			return registry.Close()
		},
		"Gin": func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
		"Redis-server": func(ctx context.Context) error {
			return dbConnWrp.CloseDbConnection(ctx)
		},
	})
	<-wait
}

// initAdmin seeds the admin account on a fresh DB so the dashboard
// is reachable without manual setup. Idempotent across restarts.
func initAdmin(ctx context.Context, userRepo user.Repository, logger log.Logger) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if len(username) == 0 || len(password) == 0 {
		logger.Warn().Msg("ADMIN_USERNAME or ADMIN_PASSWORD not set, skipping admin seeding")
		return
	}
	exists, dberr := userRepo.HasUsername(ctx, logger, username)
	if dberr != nil {
		logger.Fatal().Err(dberr).Msg("DB error during admin seeding")
	} else if exists {
		return
	}
	hash, hasherr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if hasherr != nil {
		logger.Fatal().Err(hasherr).Msg("Error occured during hashing the admin password")
	}
	admin := entity.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: string(hash),
		Role:     entity.RoleAdmin,
		Status:   entity.StatusActive,
	}
	if dberr := userRepo.SetUser(ctx, logger, admin); dberr != nil {
		logger.Fatal().Err(dberr).Msg("DB error during admin seeding")
	}
	logger.Info().Msgf("Seeded admin account %s", username)
}

// mpesaConfigFromEnv assembles the Daraja credentials used by the payment gateway client.
func mpesaConfigFromEnv() mpesa.Config {
	return mpesa.Config{
		BaseURL:        os.Getenv("MPESA_BASE_URL"),
		ConsumerKey:    os.Getenv("MPESA_CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("MPESA_CONSUMER_SECRET"),
		ShortCode:      os.Getenv("MPESA_SHORTCODE"),
		PassKey:        os.Getenv("MPESA_PASSKEY"),
		CallbackURL:    os.Getenv("MPESA_CALLBACK_URL"),
	}
}
