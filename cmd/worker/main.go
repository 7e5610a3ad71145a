package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"trustgate/internal/cache"
	"trustgate/internal/config"
	"trustgate/internal/database"
	"trustgate/internal/exifread"
	"trustgate/internal/imagetrust"
	"trustgate/internal/jobs"
	"trustgate/internal/log"
	"trustgate/internal/metrics"
	"trustgate/internal/queue"
	"trustgate/internal/repository"
	"trustgate/internal/server"
	"trustgate/internal/storage"
	"trustgate/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.Open(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init image storage")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	images := repository.NewImageRepository(dbPool)
	products := repository.NewProductRepository(dbPool)

	engine, err := imagetrust.NewEngine(cfg.ImageTrust, files, exifread.NewReader(), images, images)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid image trust policy")
	}

	reconciler := jobs.NewReconciler(images, products, engine, jobs.ReconcilerOptions{
		Workers:     cfg.Reconcile.Workers,
		BatchSize:   cfg.Reconcile.BatchSize,
		MaxAttempts: cfg.Reconcile.MaxAttempts,
	}, m, logger)

	scheduler := jobs.NewScheduler(
		reconciler,
		jobs.NewRedisLease(redisClient, cfg.Reconcile.LockKey, cfg.Reconcile.LockTTL),
		cfg.Reconcile.Interval,
		m,
		logger,
	)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("scheduler start failed")
	}

	consumer := queue.NewConsumer(
		redisClient,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Redis.ClaimInterval,
		logger,
		tasks.NewProcessor(scheduler, logger),
	)
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("consumer stopped unexpectedly; relying on scheduled sweeps")
		}
	}()

	metricsServer := server.NewMetricsServer(cfg.Metrics.Addr, prometheus.DefaultGatherer, logger)
	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	// First sweep right away instead of waiting a full interval.
	scheduler.Trigger()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	scheduler.Stop(10 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics server shutdown failed")
	}

	logger.Info().Msg("worker exited cleanly")
}
