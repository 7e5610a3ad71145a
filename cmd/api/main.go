package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"trustgate/internal/cache"
	"trustgate/internal/config"
	"trustgate/internal/database"
	"trustgate/internal/handlers"
	"trustgate/internal/log"
	"trustgate/internal/metrics"
	"trustgate/internal/middleware"
	"trustgate/internal/ocr"
	"trustgate/internal/qr"
	"trustgate/internal/queue"
	"trustgate/internal/repository"
	"trustgate/internal/sellerverify"
	"trustgate/internal/server"
	"trustgate/internal/service"
	"trustgate/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	dbPool, err := database.Open(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init image storage")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	images := repository.NewImageRepository(dbPool)
	products := repository.NewProductRepository(dbPool)
	sellers := repository.NewSellerRepository(dbPool)

	verifier, err := sellerverify.NewVerifier(
		cfg.Seller.Policy,
		files,
		ocr.NewTesseract(cfg.Seller.OCRLanguage),
		qr.NewDecoder(),
		sellers,
		cfg.Seller.CallTimeout,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid seller verification policy")
	}

	handlerSet := handlers.NewHandlerSet(
		logger,
		handlers.Options{
			Environment: cfg.Environment,
			JWTSecret:   cfg.Security.JWTAccessSecret,
			Limiter:     middleware.NewPerUserLimiter(cfg.RateLimit.VerificationsPerMinute, cfg.RateLimit.Burst),
		},
		service.NewProductService(products, images, queue.NewPublisher(redisClient, cfg.Redis.Stream), logger),
		service.NewSellerService(sellers, verifier, m, logger),
		images,
		handlers.Check{Name: "database", Ping: dbPool.Ping},
		handlers.Check{Name: "cache", Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	)
	httpServer := server.NewHTTPServer(cfg, logger, prometheus.DefaultGatherer, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	// Seller verification can hold a request for a couple of OCR calls.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
