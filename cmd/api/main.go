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

	"go.uber.org/zap"

	"github.com/xelth-com/tradetrack/internal/applog"
	"github.com/xelth-com/tradetrack/internal/buildinfo"
	"github.com/xelth-com/tradetrack/internal/config"
	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/handlers"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/notify"
	"github.com/xelth-com/tradetrack/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applog.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database, logger.Named("db"))
	if err != nil {
		logger.Fatal("database connect", zap.Error(err))
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Fatal("schema migration", zap.Error(err))
	}
	logger.Info("schema synchronized")

	// 4. Notification bus and its websocket stream
	ctx, stop := context.WithCancel(context.Background())
	hub := websocket.NewHub(logger.Named("ws"))
	go hub.Run(ctx)
	bus := notify.New(hub, logger.Named("notify"))

	// 5. Set up HTTP router
	router := handlers.NewRouter(db, cfg, bus, hub, logger.Named("http"))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("commit", buildinfo.CommitHash),
			zap.Bool("embedded_db", cfg.Database.Embedded()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}

	// Detach subscribers, then stop the hub loop
	bus.Close()
	stop()

	// Close database (this also stops embedded PostgreSQL)
	if err := db.Close(); err != nil {
		logger.Error("database close", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
