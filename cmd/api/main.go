package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/octobees/leadgenius/api/internal/apify"
	"github.com/octobees/leadgenius/api/internal/archive"
	"github.com/octobees/leadgenius/api/internal/auth"
	"github.com/octobees/leadgenius/api/internal/cache"
	"github.com/octobees/leadgenius/api/internal/config"
	"github.com/octobees/leadgenius/api/internal/database"
	"github.com/octobees/leadgenius/api/internal/enrichment"
	"github.com/octobees/leadgenius/api/internal/handler"
	"github.com/octobees/leadgenius/api/internal/leadsearch"
	"github.com/octobees/leadgenius/api/internal/llm"
	"github.com/octobees/leadgenius/api/internal/metrics"
	middlewarepkg "github.com/octobees/leadgenius/api/internal/middleware"
	"github.com/octobees/leadgenius/api/internal/repository"
	"github.com/octobees/leadgenius/api/internal/router"
	"github.com/octobees/leadgenius/api/internal/service"
	"github.com/octobees/leadgenius/api/internal/tasks"
	"github.com/octobees/leadgenius/api/internal/templates"
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Error("failed to migrate database", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	settingsCache := cache.NewSettings(nil, cfg.SettingsCacheTTL)
	var enqueuer *tasks.Enqueuer
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		settingsCache = cache.NewSettings(rdb, cfg.SettingsCacheTTL)

		queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer queue.Close()
		enqueuer = tasks.NewEnqueuer(queue, cfg.EnrichDelay, logger)
	} else {
		logger.Warn("REDIS_ADDR not set, settings cache and background enrichment disabled")
	}

	var datasets service.DatasetArchive
	if cfg.MinIO.Enabled() {
		store, err := archive.NewClient(ctx, cfg.MinIO)
		if err != nil {
			logger.Error("failed to connect dataset archive", slog.String("error", err.Error()))
			os.Exit(1)
		}
		datasets = store
	}

	companiesRepo := repository.NewPGXCompaniesRepository(pool)
	contactsRepo := repository.NewPGXContactsRepository(pool)
	insightsRepo := repository.NewPGXInsightsRepository(pool)
	listsRepo := repository.NewPGXListsRepository(pool)
	searchesRepo := repository.NewPGXSearchesRepository(pool)
	settingsRepo := repository.NewPGXSettingsRepository(pool)

	settingsService := service.NewSettingsService(settingsRepo, settingsCache)
	companiesService := service.NewCompaniesService(companiesRepo, contactsRepo, insightsRepo)
	contactsService := service.NewContactsService(contactsRepo, companiesRepo)
	listsService := service.NewListsService(listsRepo, companiesRepo)

	scraperClient := &http.Client{Timeout: 30 * time.Second}
	newScraper := func(token string) service.Scraper {
		return apify.NewClient(scraperClient, cfg.Apify.BaseURL, token, cfg.Apify.PollInterval, cfg.Apify.MaxPolls)
	}
	searchService := service.NewSearchService(
		settingsService,
		newScraper,
		datasets,
		searchesRepo,
		service.NewPromptService(""),
		leadsearch.NewTransformer(),
		logger,
	)

	webhookClient := webhook.NewClient(
		webhook.NewHTTPClient(context.Background(), cfg.Webhook.Audience),
		webhook.PolicyFromConfig(cfg.Webhook),
		webhook.WithLogger(logger),
	)
	cleaner := service.NewDataProcessor(cfg.DefaultPhoneRegion)

	enricherOpts := []enrichment.Option{
		enrichment.WithGenerator(llm.NewGenerator(cfg.OpenAIModel)),
		enrichment.WithLogger(logger),
	}
	var importScheduler service.EnrichmentScheduler
	if enqueuer != nil {
		enricherOpts = append(enricherOpts, enrichment.WithScheduler(enqueuer))
		importScheduler = enqueuer
	}
	enricher := enrichment.NewEnricher(settingsService, webhookClient, companiesRepo, contactsRepo, insightsRepo, cleaner, enricherOpts...)
	leadImportService := service.NewLeadImportService(companiesRepo, contactsRepo, importScheduler, logger)

	handlers := router.Handlers{
		Companies:     handler.NewCompaniesHandler(companiesService),
		CompanyImport: handler.NewCompanyImportHandler(companiesService),
		Contacts:      handler.NewContactsHandler(contactsService),
		Enrich:        handler.NewEnrichHandler(enricher),
		EnrichJob:     handler.NewEnrichJobHandler(enricher),
		Templates:     handler.NewTemplatesHandler(templates.Default(), companiesService, contactsService),
		Settings:      handler.NewSettingsHandler(settingsService),
		Lists:         handler.NewListsHandler(listsService),
		Leads:         handler.NewLeadsHandler(searchService, leadImportService),
		Prompt:        handler.NewPromptSearchHandler(searchService),
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 0)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(metrics.EchoMiddleware())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", slog.String("port", cfg.Port))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
