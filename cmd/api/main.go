package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/lorrc/queue-backend/internal/adapters/primary/http"
	ws "github.com/lorrc/queue-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/queue-backend/internal/adapters/secondary/postgres"
	"github.com/lorrc/queue-backend/internal/adapters/secondary/qr"
	"github.com/lorrc/queue-backend/internal/adapters/secondary/sms"
	"github.com/lorrc/queue-backend/internal/auth"
	"github.com/lorrc/queue-backend/internal/config"
	"github.com/lorrc/queue-backend/internal/core/services"
	"github.com/lorrc/queue-backend/internal/infrastructure/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewLogger(logging.DefaultConfig()).Error("loading configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "queue-backend",
		Environment: cfg.Server.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := postgres.RunMigrations(cfg.Database.MigrationsURL, cfg.Database.URL); err != nil {
		logger.Error("running migrations", "error", err)
		os.Exit(1)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("connecting to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	timezone, err := time.LoadLocation(cfg.Queue.Timezone)
	if err != nil {
		logger.Error("loading queue timezone", "timezone", cfg.Queue.Timezone, "error", err)
		os.Exit(1)
	}

	// Secondary adapters.
	ticketRepo := postgres.NewTicketRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	qrGenerator := qr.NewGenerator()
	notifier := sms.NewLogNotifier(logger)

	// Real-time hub.
	hub := ws.NewHub(logger)
	go hub.Run()

	// Core services.
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	queueService := services.NewQueueService(ticketRepo, serviceRepo, hub, notifier, logger, services.QueueConfig{
		DailyReset:      cfg.Queue.DailyReset,
		Timezone:        timezone,
		AllocMaxRetries: cfg.Queue.AllocMaxRetries,
	})
	catalogService := services.NewCatalogService(serviceRepo, ticketRepo, qrGenerator, logger, cfg.FrontendBaseURL)
	authService := services.NewAuthService(userRepo, tokenManager, logger)

	if cfg.Auth.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			logger.Error("seeding admin user", "error", err)
			os.Exit(1)
		}
	}

	router := httpadapter.NewRouter(httpadapter.RouterConfig{
		Logger:         logger,
		TokenManager:   tokenManager,
		AllowedOrigins: cfg.AllowedOrigins,
		Queue:          httpadapter.NewQueueHandler(queueService, logger),
		Services:       httpadapter.NewServiceHandler(catalogService, logger),
		Auth:           httpadapter.NewAuthHandler(authService, logger),
		Health:         httpadapter.NewHealthHandler(pool),
		Hub:            hub,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
