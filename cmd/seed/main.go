// Package main provides a CLI tool for seeding the store with demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"tillbook/internal/config"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/catalog"
	"tillbook/internal/domain/creditbook"
	"tillbook/internal/domain/party"
	"tillbook/internal/infrastructure/store"
	"tillbook/internal/infrastructure/store/mongo"
	"tillbook/internal/infrastructure/store/postgres"
	"tillbook/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open document store", "error", err)
	}
	defer st.Close(context.Background())

	log.Infow("connected", "mode", cfg.App.Mode)

	if err := seedItems(ctx, st); err != nil {
		log.Fatalw("failed to seed items", "error", err)
	}
	if err := seedParties(ctx, st); err != nil {
		log.Fatalw("failed to seed parties", "error", err)
	}
	if err := seedCreditBooks(ctx, st); err != nil {
		log.Fatalw("failed to seed credit books", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedItems(ctx context.Context, st store.Store) error {
	svc := catalog.NewService(st, nil)

	existing, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info(ctx, "items already present, skipping", "count", len(existing))
		return nil
	}

	espresso := catalog.NewItem("Espresso", 18000, 6000)
	espresso.Barcode = "8991002530019"

	beans := catalog.NewItem("Arabica Beans 1kg", 250000, 180000)
	beans.TrackStock = true
	beans.Stock = types.NewQuantityFromInt(40)
	beans.Tiers = []catalog.PriceTier{
		{Threshold: types.NewQuantityFromInt(5), UnitPrice: 230000},
		{Threshold: types.NewQuantityFromInt(10), UnitPrice: 210000},
	}

	sugar := catalog.NewItem("Sugar (100g)", 3000, 1500)
	sugar.TrackStock = true
	sugar.Stock = types.NewQuantityFromInt(500)
	sugar.UnitSize = types.NewQuantityFromFloat64(0.1) // sold by the 100g

	combo := catalog.NewItem("Breakfast Combo", 35000, 0)
	combo.Components = []catalog.Component{
		{ItemID: espresso.ID, Quantity: types.One},
		{ItemID: sugar.ID, Quantity: types.One},
	}

	for _, item := range []*catalog.Item{espresso, beans, sugar, combo} {
		if err := svc.Create(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func seedParties(ctx context.Context, st store.Store) error {
	svc := party.NewService(st)

	customers, err := svc.List(ctx, party.KindCustomer)
	if err != nil {
		return err
	}
	if len(customers) > 0 {
		logger.Info(ctx, "parties already present, skipping", "count", len(customers))
		return nil
	}

	walkIn := party.NewParty(party.KindCustomer, "Walk-in")
	regular := party.NewParty(party.KindCustomer, "Pak Budi")
	regular.Phone = "+62812000111"

	roastery := party.NewParty(party.KindSupplier, "Java Roastery")
	roastery.Address = "Jl. Kopi 12, Bandung"

	for _, p := range []*party.Party{walkIn, regular, roastery} {
		if err := svc.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func seedCreditBooks(ctx context.Context, st store.Store) error {
	svc := creditbook.NewService(st)

	books, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(books) > 0 {
		logger.Info(ctx, "credit books already present, skipping", "count", len(books))
		return nil
	}

	return svc.Create(ctx, creditbook.NewBook("Pak Budi", "monthly tab"))
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
