// @title Event Lifecycle API
// @version 1.0
// @description Event lifecycle backend: event CRUD, support/invite links, and status sweeping.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/xuantoan98/event-ticketing-backend/config"
	_ "github.com/xuantoan98/event-ticketing-backend/docs"
	"github.com/xuantoan98/event-ticketing-backend/internal/adapters/auth"
	"github.com/xuantoan98/event-ticketing-backend/internal/adapters/notify"
	delivery "github.com/xuantoan98/event-ticketing-backend/internal/delivery/http"
	"github.com/xuantoan98/event-ticketing-backend/internal/delivery/http/controllers"
	"github.com/xuantoan98/event-ticketing-backend/internal/delivery/http/middleware"
	"github.com/xuantoan98/event-ticketing-backend/internal/repository/postgres"
	"github.com/xuantoan98/event-ticketing-backend/internal/services"
	"github.com/xuantoan98/event-ticketing-backend/internal/worker"
)

const serviceTimeout = 5 * time.Second

func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	supportRepo := postgres.NewEventSupportRepository(db)
	inviteRepo := postgres.NewEventInviteRepository(db)
	identities := postgres.NewIdentityResolver(db)
	categories := postgres.NewCategoryResolver(db)
	invites := postgres.NewInviteResolver(db)

	notifier, err := notify.NewNotifier(notify.NotifierConfig{
		Provider:    cfg.Notifier.Provider,
		FromAddress: cfg.Notifier.FromAddress,
		FromName:    cfg.Notifier.FromName,
		SES: notify.SESConfig{
			Region:          cfg.Notifier.SESRegion,
			AccessKeyID:     cfg.Notifier.SESAccessKeyID,
			SecretAccessKey: cfg.Notifier.SESSecretAccess,
		},
	}, postgres.NewAddressLookup(db), logger)
	if err != nil {
		logger.Error("failed to create notifier", "err", err)
		os.Exit(1)
	}

	eventService := services.NewEventService(
		eventRepo, supportRepo, inviteRepo,
		identities, categories, invites,
		notifier, logger, serviceTimeout,
	)
	eventController := controllers.NewEventController(logger, eventService)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	mux := delivery.NewRouter(eventController, verifier, identities, logger)

	var handler http.Handler = middleware.Logging(logger, mux)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := worker.NewStatusSweeper(eventRepo, logger, cfg.SweepInterval)
	go sweeper.Start(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "err", err)
	}
	sweeper.Stop()
	logger.Info("shutdown complete")
}
