package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"weather_syncer/internal/config"
	"weather_syncer/internal/metrics"
	"weather_syncer/internal/publisher"
	"weather_syncer/internal/service"
	"weather_syncer/internal/source/ipma"
	"weather_syncer/internal/storage/postgres"
)

// One-shot sync pass: run once, report, exit. Meant for cron jobs and
// manual reconciliation; the server binary carries the schedule.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

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

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled() {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	collector := metrics.NewCollector("weather_syncer", prometheus.NewRegistry())

	syncService := service.NewSyncService(
		source,
		postgres.NewCityStore(db),
		postgres.NewForecastStore(db),
		postgres.NewSyncRunStore(db),
		pub,
		collector,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Sync.Timeout)
	defer cancel()

	outcome, err := syncService.Run(ctx)
	if err != nil {
		logger.Error("sync failed", "error", err)
		os.Exit(1)
	}

	logger.Info("sync finished",
		"status", outcome.Status,
		"fetched", outcome.Fetched,
		"upserted", outcome.Upserted,
	)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
