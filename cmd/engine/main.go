package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gator-post/internal/config"
	"gator-post/internal/database"
	"gator-post/internal/engine"
	"gator-post/internal/handlers"
	"gator-post/internal/middleware"
	"gator-post/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
)

func newStore(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, error) {
	switch cfg.Type {
	case "postgres":
		pg, err := database.NewPostgresDB(cfg.URI)
		if err != nil {
			return nil, err
		}
		if err := pg.InitializeTables(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return database.NewMongoDB(cfg.URI, cfg.Name)
	}
}

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := newStore(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to store", "type", cfg.Database.Type, "error", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	metrics := utils.NewMetricsCollector()

	// Initialize actor system and engine
	system := actor.NewActorSystem()
	gatorEngine := engine.NewEngine(system, store, metrics, cfg.Auth.BcryptCost)

	tokens := middleware.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	server := handlers.NewServer(system, gatorEngine, metrics, store, tokens)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HandleHealth())
	mux.HandleFunc("/user/register", server.HandleUserRegistration())
	mux.HandleFunc("/user/login", server.HandleUserLogin())
	mux.HandleFunc("/user/profile", server.HandleUserProfile())
	mux.HandleFunc("/users", server.HandleListUsers())
	mux.HandleFunc("/messages", server.HandleDirectMessages())
	mux.HandleFunc("/messages/read", server.HandleMarkMessageRead())
	mux.HandleFunc("/messages/from", server.HandleMessagesFrom())
	mux.HandleFunc("/messages/to", server.HandleMessagesTo())
	if cfg.Server.MetricsEnabled {
		mux.HandleFunc("/metrics", server.HandleMetrics())
	}

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	handler := middleware.CORSMiddleware(corsConfig)(tokens.AuthMiddleware(mux))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", serverAddr, "db", cfg.Database.Type)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
