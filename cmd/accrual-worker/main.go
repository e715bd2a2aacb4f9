package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/investrahq/investra-backend/internal/accrual"
	"github.com/investrahq/investra-backend/internal/cron"
	"github.com/investrahq/investra-backend/internal/ledgers"
	"github.com/investrahq/investra-backend/internal/participants"
	"github.com/investrahq/investra-backend/pkg/config"
	"github.com/investrahq/investra-backend/pkg/db"
	"github.com/investrahq/investra-backend/pkg/logger"
	"github.com/investrahq/investra-backend/pkg/metrics"
	"github.com/investrahq/investra-backend/pkg/migrate"
	"github.com/investrahq/investra-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "accrual-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "accrual-worker"

	logg = logger.New(logger.Options{
		ServiceName: "accrual-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	accrualService, err := accrual.NewService(
		dbClient,
		participants.NewRepository(dbClient.DB()),
		ledgers.NewMonthlyRepository(dbClient.DB()),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create accrual service", err)
		os.Exit(1)
	}

	accrualJob, err := accrual.NewJob(accrualService)
	if err != nil {
		logg.Error(context.Background(), "failed to create accrual job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("accrual"), cfg.Accrual.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(accrualJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Accrual.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting accrual worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "accrual worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "accrual worker shutting down gracefully")
}
