// Package main is the entry point for the tillbook API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tillbook/internal/config"
	"tillbook/internal/domain/cashflow"
	"tillbook/internal/domain/catalog"
	"tillbook/internal/domain/creditbook"
	"tillbook/internal/domain/order"
	"tillbook/internal/domain/party"
	"tillbook/internal/domain/session"
	"tillbook/internal/infrastructure/cache"
	v1 "tillbook/internal/infrastructure/http/v1"
	"tillbook/internal/infrastructure/store"
	"tillbook/internal/infrastructure/store/mongo"
	"tillbook/internal/infrastructure/store/postgres"
	"tillbook/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting tillbook server", "mode", cfg.App.Mode, "env", cfg.App.Env)

	// --- Document store (mode decides the backend) ---
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open document store", "error", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warnw("store close failed", "error", err)
		}
	}()

	if err := st.Ping(ctx); err != nil {
		log.Fatalw("failed to ping document store", "error", err)
	}
	log.Info("document store connection established")

	// --- Optional Redis item cache ---
	var itemCache catalog.ItemCache
	healthChecks := map[string]func() error{
		"store": func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return st.Ping(pingCtx)
		},
	}
	if cfg.Redis.Enabled {
		redisCache := cache.NewItemCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.ItemTTL)
		if err := redisCache.Ping(ctx); err != nil {
			log.Fatalw("failed to ping redis", "error", err)
		}
		defer redisCache.Close()
		itemCache = redisCache
		healthChecks["cache"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisCache.Ping(pingCtx)
		}
		log.Infow("redis item cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.ItemTTL)
	}

	// --- Services ---
	catalogService := catalog.NewService(st, itemCache)
	creditBooks := creditbook.NewService(st)
	cashFlow := cashflow.NewService(st)
	orders := order.NewService(st, creditBooks, catalogService, cashFlow)
	parties := party.NewService(st)
	sessions := session.NewManager(catalogService, cfg.Session.IdleTTL)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		Version:      version,
		HealthChecks: healthChecks,
		Sessions:     sessions,
		Catalog:      catalogService,
		Orders:       orders,
		CreditBooks:  creditBooks,
		Parties:      parties,
		CashFlow:     cashFlow,
		Debug:        cfg.App.Debug,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Stale sessions hold stock; sweep them in-process since the
	// session table lives in this process's memory.
	sweepCtx, stopSweep := context.WithCancel(logger.WithLogger(ctx, log))
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.Session.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := sessions.SweepIdle(sweepCtx); n > 0 {
					log.Infow("swept idle sessions", "count", n)
				}
			}
		}
	}()

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Abandoned sessions release their reservations before the store closes.
	swept := sessions.SweepAll(shutdownCtx)
	if swept > 0 {
		log.Infow("released stock for open sessions", "count", swept)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// openStore picks the persistence backend for the configured mode.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.App.Mode {
	case config.ModeOnline:
		return mongo.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	case config.ModeOffline:
		return postgres.New(ctx, cfg.Postgres.DSN)
	default:
		return nil, fmt.Errorf("unknown persistence mode %q", cfg.App.Mode)
	}
}
