package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"weather_syncer/internal/config"
	"weather_syncer/internal/source/ipma"
	"weather_syncer/internal/storage/postgres"
)

// Seeds the city catalog from the provider's district/island list. All
// seeded cities start active; deactivation is a manual operation on the
// cities table.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	source := ipma.New(ipma.Config{
		ForecastURL: cfg.Provider.ForecastURL,
		CatalogURL:  cfg.Provider.CatalogURL,
		Timeout:     cfg.Provider.Timeout,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	cities, err := source.FetchCatalog(ctx)
	if err != nil {
		logger.Error("failed to fetch city catalog", "error", err)
		os.Exit(1)
	}

	cityStore := postgres.NewCityStore(db)
	txManager := postgres.NewTransactionManager(db)

	// All-or-nothing: a partial catalog is worse than a stale one.
	err = txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for i := range cities {
			if err := cityStore.Upsert(ctx, &cities[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to seed cities", "error", err)
		os.Exit(1)
	}

	logger.Info("city catalog seeded", "cities", len(cities))
}
