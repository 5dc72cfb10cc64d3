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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"flamewars/internal/config"
	"flamewars/internal/db"
	"flamewars/internal/handlers"
	"flamewars/internal/logging"
	"flamewars/internal/metrics"
	"flamewars/internal/middleware"
	"flamewars/internal/router"
	"flamewars/internal/services"
	"flamewars/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	backend, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer backend.Close()

	auth, err := middleware.NewJWTAuthenticator(cfg.AuthSecret, cfg.AuthIssuer)
	if err != nil {
		logger.Fatal("Failed to configure authentication", zap.Error(err))
	}

	commentService := services.NewCommentService(store.Instrument(backend, m), logger, m, services.Options{
		BaseURL:          cfg.BaseURL,
		MaxCommentLength: cfg.MaxCommentLength,
		MaxFieldLength:   cfg.MaxFieldLength,
		MaxCountURLs:     cfg.MaxCountURLs,
	})

	engine := router.New(router.Deps{
		Comments:    handlers.NewCommentHandler(commentService, auth),
		Health:      handlers.NewHealthHandler(backend),
		Auth:        auth,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("Flamewars server starting", zap.String("addr", server.Addr), zap.String("store", cfg.StoreBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func openStore(cfg config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendPebble:
		if err := os.MkdirAll(cfg.PebblePath, 0o755); err != nil {
			return nil, err
		}
		return store.OpenPebble(cfg.PebblePath)
	case config.BackendPostgres:
		gdb, err := db.Open(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(gdb), nil
	default:
		return nil, errors.New("unknown STORE_BACKEND " + cfg.StoreBackend)
	}
}
