package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
	"github.com/lineasupply/storefront-api/internal/application/service"
	"github.com/lineasupply/storefront-api/internal/config"
	"github.com/lineasupply/storefront-api/internal/infrastructure/api"
	"github.com/lineasupply/storefront-api/internal/infrastructure/cache"
	"github.com/lineasupply/storefront-api/internal/infrastructure/db"
	"github.com/lineasupply/storefront-api/internal/infrastructure/handler"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
	"github.com/lineasupply/storefront-api/internal/infrastructure/middleware"
	"github.com/lineasupply/storefront-api/internal/infrastructure/scheduler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(log)

	log.Info("Starting storefront API", map[string]interface{}{
		"addr":     cfg.HTTPAddr,
		"data_dir": cfg.DataDir,
	})

	// Setup BadgerDB
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal("Failed to create data directory", map[string]interface{}{
			"dir":   cfg.DataDir,
			"error": err.Error(),
		})
	}

	badgerOpts := badger.DefaultOptions(cfg.DataDir)
	badgerOpts.Logger = nil // Disable Badger's default logger

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := badgerDB.Close(); err != nil {
			log.Error("Error closing BadgerDB", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Initialize repositories
	snapshotRepo := db.NewBadgerSnapshotRepository(badgerDB)

	categoryRepo, err := db.NewBadgerCategoryRepository(badgerDB)
	if err != nil {
		log.Fatal("Failed to initialize category repository", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer categoryRepo.Close()

	productRepo, err := db.NewBadgerProductRepository(badgerDB)
	if err != nil {
		log.Fatal("Failed to initialize product repository", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer productRepo.Close()

	optionRepo, err := db.NewBadgerDeliveryOptionRepository(badgerDB)
	if err != nil {
		log.Fatal("Failed to initialize delivery option repository", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer optionRepo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.SeedCatalog(ctx, categoryRepo, productRepo, optionRepo, log); err != nil {
		log.Fatal("Failed to seed catalog", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize the rate provider and services
	provider := api.NewFrankfurterClient(cfg.FX.ProviderURL, cfg.FX.ProviderTimeout, log)

	fxService := service.NewFxService(cache.NewSnapshotCache(), snapshotRepo, provider, cfg.FX.TTL, log)
	convertService := service.NewConvertService(fxService, log)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, optionRepo, log)
	cartService := service.NewCartService(convertService, fxService, log)

	// Initialize handlers
	fxHandler := handler.NewFxHandler(fxService, convertService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	cartHandler := handler.NewCartHandler(cartService, log)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.MetricsMiddleware)

	fxHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Warm the cache so the first request does not pay the provider latency.
	// A failure here is fine: the read path fetches lazily.
	if err := fxService.Refresh(ctx, false); err != nil {
		log.Warn("Initial rate refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	refreshScheduler := scheduler.NewRefreshScheduler(fxService, log)
	if err := refreshScheduler.Start(ctx, cfg.FX.RefreshSpec); err != nil {
		log.Fatal("Failed to start rate refresh scheduler", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer refreshScheduler.Stop()

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr": cfg.HTTPAddr,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Server stopped", nil)
}
