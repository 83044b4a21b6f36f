// Package main is the entry point for the tillbook background worker.
// It materializes daily cash-flow summaries on a schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"tillbook/internal/config"
	"tillbook/internal/domain/cashflow"
	"tillbook/internal/infrastructure/store"
	"tillbook/internal/infrastructure/store/mongo"
	"tillbook/internal/infrastructure/store/postgres"
	"tillbook/pkg/logger"
)

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
	log = log.WithComponent("worker")

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting tillbook worker", "mode", cfg.App.Mode)

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

	cashFlow := cashflow.NewService(st)

	scheduler := cron.New()

	// Summarize the previous day shortly after midnight. Re-running is
	// safe: Summarize overwrites the summary for the bucket.
	_, err = scheduler.AddFunc(cfg.Worker.SummarySchedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		summary, err := cashFlow.Summarize(jobCtx, yesterday)
		if err != nil {
			log.Errorw("daily summary failed", "error", err)
			return
		}
		log.Infow("daily summary written",
			"bucket", summary.Bucket,
			"cash_in", summary.CashIn,
			"cash_out", summary.CashOut,
			"net", summary.Net,
			"entries", summary.EntryCount,
		)
	})
	if err != nil {
		log.Fatalw("invalid summary schedule", "schedule", cfg.Worker.SummarySchedule, "error", err)
	}

	scheduler.Start()
	log.Infow("scheduler started", "summary_schedule", cfg.Worker.SummarySchedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	log.Info("worker stopped")
}

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
