package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"weather_syncer/internal/api"
	"weather_syncer/internal/config"
	"weather_syncer/internal/metrics"
	"weather_syncer/internal/publisher"
	"weather_syncer/internal/scheduler"
	"weather_syncer/internal/service"
	"weather_syncer/internal/source/ipma"
	"weather_syncer/internal/storage/postgres"
)

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
	logger.Info("connected to database")

	cityStore := postgres.NewCityStore(db)
	forecastStore := postgres.NewForecastStore(db)
	syncRunStore := postgres.NewSyncRunStore(db)
	watchlistStore := postgres.NewWatchlistStore(db)

	source := ipma.New(ipma.Config{
		ForecastURL: cfg.Provider.ForecastURL,
		CatalogURL:  cfg.Provider.CatalogURL,
		Timeout:     cfg.Provider.Timeout,
	}, logger)

	// The publisher is optional: without a broker URL forecast events
	// are simply not emitted.
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
	} else {
		logger.Info("rabbitmq disabled, forecast events will not be published")
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector("weather_syncer", registry)

	syncService := service.NewSyncService(
		source,
		cityStore,
		forecastStore,
		syncRunStore,
		pub,
		collector,
		logger,
	)

	sched := scheduler.NewScheduler(syncService, cfg.Sync.CronSpec, cfg.Sync.Timeout, logger)

	server := api.NewServer(
		api.Config{
			Port:      cfg.Server.Port,
			APIKey:    cfg.Server.APIKey,
			SyncRPS:   cfg.Server.SyncRPS,
			SyncBurst: cfg.Server.SyncBurst,
		},
		cityStore,
		forecastStore,
		syncRunStore,
		watchlistStore,
		syncService,
		collector,
		registry,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	go func() {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler error", "error", err)
			cancel()
		}
	}()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	logger.Info("shut down cleanly")
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
