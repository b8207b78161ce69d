package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rishtahub/rishta-backend/internal/bookings"
	"github.com/rishtahub/rishta-backend/internal/cron"
	"github.com/rishtahub/rishta-backend/internal/listings"
	"github.com/rishtahub/rishta-backend/internal/moderation"
	"github.com/rishtahub/rishta-backend/internal/notifications"
	"github.com/rishtahub/rishta-backend/internal/onboarding"
	"github.com/rishtahub/rishta-backend/internal/photos"
	"github.com/rishtahub/rishta-backend/internal/plans"
	"github.com/rishtahub/rishta-backend/internal/subscriptions"
	"github.com/rishtahub/rishta-backend/pkg/config"
	"github.com/rishtahub/rishta-backend/pkg/db"
	"github.com/rishtahub/rishta-backend/pkg/events"
	"github.com/rishtahub/rishta-backend/pkg/logger"
	"github.com/rishtahub/rishta-backend/pkg/metrics"
	"github.com/rishtahub/rishta-backend/pkg/migrate"
	"github.com/rishtahub/rishta-backend/pkg/redis"
	"github.com/rishtahub/rishta-backend/pkg/storage"
)

const (
	lockKeyFormat = "rh:cron-worker:lock:%s"

	completionBatchSize       = 500
	expiryBatchSize           = 500
	notificationRetentionDays = 90
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	gormDB := dbClient.DB()
	bus := events.NewBus(logg)

	bookingsService, err := bookings.NewService(bookings.ServiceParams{
		Repo:     bookings.NewRepository(gormDB),
		Services: listings.NewRepository(gormDB),
		Profiles: onboarding.NewRepository(gormDB),
		Blocks:   moderation.NewRepository(gormDB),
		Bus:      bus,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:              subscriptions.NewRepository(gormDB),
		PlansRepo:         plans.NewRepository(gormDB),
		TransactionRunner: dbClient,
		Bus:               bus,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	objectStore, err := storage.New(cfg.Uploads, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open upload store", err)
		os.Exit(1)
	}

	photoCleaner, err := photos.NewCleaner(photos.NewRepository(gormDB), objectStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create photo cleaner", err)
		os.Exit(1)
	}

	completionJob, err := cron.NewBookingCompletionJob(cron.BookingCompletionJobParams{
		Logger:    logg,
		Bookings:  bookingsService,
		BatchSize: completionBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking completion job", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewSubscriptionExpiryJob(cron.SubscriptionExpiryJobParams{
		Logger:        logg,
		Subscriptions: subscriptionsService,
		BatchSize:     expiryBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription expiry job", err)
		os.Exit(1)
	}

	photoJob, err := cron.NewPhotoCleanupJob(cron.PhotoCleanupJobParams{
		Logger:  logg,
		Cleaner: photoCleaner,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create photo cleanup job", err)
		os.Exit(1)
	}

	notificationJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:        logg,
		Repository:    notifications.NewRepository(gormDB),
		RetentionDays: notificationRetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(completionJob, expiryJob, photoJob, notificationJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
