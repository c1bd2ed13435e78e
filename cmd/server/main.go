package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/api"
	"github.com/vresta/chatbot/internal/auth"
	"github.com/vresta/chatbot/internal/bot"
	"github.com/vresta/chatbot/internal/cache"
	"github.com/vresta/chatbot/internal/chat"
	"github.com/vresta/chatbot/internal/config"
	"github.com/vresta/chatbot/internal/database"
	"github.com/vresta/chatbot/internal/logger"
	"github.com/vresta/chatbot/internal/repository"
)

func main() {
	// Load configuration
	cfg, warnings, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	for _, w := range warnings {
		zlog.Warn(w)
	}

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	// Initialize database connections
	db, err := database.InitDB(cfg, zlog.Named("database"))
	if err != nil {
		return err
	}
	redisClient := database.InitRedis(cfg, zlog.Named("redis"))
	if redisClient != nil {
		defer redisClient.Close()
	}

	creds, err := auth.NewCredentials(cfg.JWTSecret)
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	guard := chat.NewGuard(repository.NewSessionRepository(db))
	history := cache.NewHistory(redisClient, cfg.HistoryCacheTTL, zlog.Named("cache"))
	pipeline := chat.NewPipeline(guard, repository.NewMessageRepository(db), bot.NewDefault(), history, zlog.Named("chat"))

	gin.SetMode(cfg.GinMode)
	router := api.NewRouter(api.Dependencies{
		Accounts:    auth.NewAccounts(users, creds, cfg.AccessTokenTTL, zlog.Named("accounts")),
		Resolver:    auth.NewResolver(creds, users),
		Guard:       guard,
		Pipeline:    pipeline,
		FrontendURL: cfg.FrontendURL,
		Logger:      zlog,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
