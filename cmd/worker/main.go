package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/octobees/leadgenius/api/internal/cache"
	"github.com/octobees/leadgenius/api/internal/config"
	"github.com/octobees/leadgenius/api/internal/database"
	"github.com/octobees/leadgenius/api/internal/enrichment"
	"github.com/octobees/leadgenius/api/internal/llm"
	"github.com/octobees/leadgenius/api/internal/metrics"
	"github.com/octobees/leadgenius/api/internal/repository"
	"github.com/octobees/leadgenius/api/internal/service"
	"github.com/octobees/leadgenius/api/internal/tasks"
	"github.com/octobees/leadgenius/api/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Redis.Addr == "" {
		logger.Error("REDIS_ADDR is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	companiesRepo := repository.NewPGXCompaniesRepository(pool)
	contactsRepo := repository.NewPGXContactsRepository(pool)
	insightsRepo := repository.NewPGXInsightsRepository(pool)
	settingsService := service.NewSettingsService(
		repository.NewPGXSettingsRepository(pool),
		cache.NewSettings(rdb, cfg.SettingsCacheTTL),
	)

	webhookClient := webhook.NewClient(
		webhook.NewHTTPClient(context.Background(), cfg.Webhook.Audience),
		webhook.PolicyFromConfig(cfg.Webhook),
		webhook.WithLogger(logger),
	)
	enricher := enrichment.NewEnricher(
		settingsService,
		webhookClient,
		companiesRepo,
		contactsRepo,
		insightsRepo,
		service.NewDataProcessor(cfg.DefaultPhoneRegion),
		enrichment.WithGenerator(llm.NewGenerator(cfg.OpenAIModel)),
		enrichment.WithLogger(logger),
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Logger:      tasks.NewLogger(logger),
		},
	)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMiddleware())
	mux.Handle(tasks.TypeContactEnrich, tasks.NewContactEnrichHandler(enricher, logger))

	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.HidePort = true
	metricsServer.GET("/metrics", metrics.Handler())
	go func() {
		if err := metricsServer.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	defer metricsServer.Close()

	logger.Info("worker started", slog.Int("concurrency", cfg.WorkerConcurrency))
	if err := srv.Run(mux); err != nil {
		logger.Error("worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
