package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/campoverde/currency-sync-service/internal/application/service"
	"github.com/campoverde/currency-sync-service/internal/config"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/api"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/bus"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/cache"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/db"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/handler"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/logger"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/metrics"
	"github.com/campoverde/currency-sync-service/internal/infrastructure/middleware"
	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	zapLogger, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting currency sync service",
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.HTTPServer.Addr))

	// Durable client storage
	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		zapLogger.Fatal("failed to create storage directory", zap.Error(err))
	}

	badgerOpts := badger.DefaultOptions(cfg.Storage.Dir)
	badgerOpts.Logger = nil

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		zapLogger.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := badgerDB.Close(); err != nil {
			zapLogger.Error("error closing storage", zap.Error(err))
		}
	}()

	// Core wiring: store -> cache -> engine -> facade
	registry := prometheus.NewRegistry()
	currencyMetrics := metrics.NewCurrencyMetrics(registry)

	store := db.NewBadgerStateStore(badgerDB, zapLogger)
	rateCache := cache.NewRateCache(store, zapLogger)
	invalidationBus := bus.NewInvalidationBus(zapLogger)
	engine := service.NewConversionEngine(rateCache, currencyMetrics, zapLogger)

	rateSource := api.NewDolarAPIClient(cfg.RateAPI.BaseURL, &http.Client{
		Timeout: cfg.RateAPI.Timeout,
	}, zapLogger)

	currencyService := service.NewCurrencyService(
		rateSource, store, rateCache, engine, invalidationBus, currencyMetrics, zapLogger)

	if err := currencyService.Hydrate(context.Background()); err != nil {
		zapLogger.Fatal("failed to hydrate state", zap.Error(err))
	}

	// Best effort warm-up; the service renders from the hydrated cache or
	// the fallback until the provider answers.
	if err := currencyService.UpdateRates(context.Background()); err != nil {
		zapLogger.Warn("initial rate refresh failed, serving last-known rates", zap.Error(err))
	}

	currencyHandler := handler.NewCurrencyHandler(currencyService, zapLogger)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(zapLogger))
	currencyHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	zapLogger.Info("server listening", zap.String("addr", cfg.HTTPServer.Addr))
	if err := http.ListenAndServe(cfg.HTTPServer.Addr, router); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
