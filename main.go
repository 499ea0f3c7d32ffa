package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/splitz-app/splitz-backend/config"
	"github.com/splitz-app/splitz-backend/db"
	"github.com/splitz-app/splitz-backend/handlers"
	"github.com/splitz-app/splitz-backend/internal/store/postgres"
	"github.com/splitz-app/splitz-backend/logger"
	"github.com/splitz-app/splitz-backend/router"
	"github.com/splitz-app/splitz-backend/services"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	pool, err := db.ConnectPool(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis client with TLS in production
	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warnw("Failed to close redis client", "error", err)
		}
	}()

	// Stores
	expenseStore := postgres.NewExpenseStore(pool)
	groupStore := postgres.NewGroupStore(pool)
	invitationStore := postgres.NewInvitationStore(pool)
	userStore := postgres.NewUserStore(pool)
	digestStore := postgres.NewDigestStore(pool)

	// Services
	expenseService := services.NewExpenseService(expenseStore, groupStore)
	groupService := services.NewGroupService(groupStore, userStore)
	invitationService := services.NewInvitationService(invitationStore, &cfg.Invitation)
	emailService := services.NewEmailService(&cfg.Email)
	digestService := services.NewDigestService(digestStore, emailService, &cfg.Digest)
	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version)

	// Router
	r := router.SetupRouter(router.Dependencies{
		Config:            cfg,
		RedisClient:       redisClient,
		ExpenseHandler:    handlers.NewExpenseHandler(expenseService),
		GroupHandler:      handlers.NewGroupHandler(groupService),
		InvitationHandler: handlers.NewInvitationHandler(invitationService),
		UserHandler:       handlers.NewUserHandler(userStore),
		DigestHandler:     handlers.NewDigestHandler(digestService, &cfg.Digest),
		HealthHandler:     handlers.NewHealthHandler(healthService),
		Logger:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	log.Info("Server exited")
}
