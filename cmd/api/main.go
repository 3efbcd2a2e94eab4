package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/octobees/site-scraper/internal/auth"
	"github.com/octobees/site-scraper/internal/bitable"
	"github.com/octobees/site-scraper/internal/config"
	"github.com/octobees/site-scraper/internal/database"
	"github.com/octobees/site-scraper/internal/dto"
	"github.com/octobees/site-scraper/internal/entity"
	"github.com/octobees/site-scraper/internal/extractor"
	"github.com/octobees/site-scraper/internal/fetcher"
	"github.com/octobees/site-scraper/internal/handler"
	"github.com/octobees/site-scraper/internal/logging"
	"github.com/octobees/site-scraper/internal/metrics"
	middlewarepkg "github.com/octobees/site-scraper/internal/middleware"
	"github.com/octobees/site-scraper/internal/repository"
	"github.com/octobees/site-scraper/internal/router"
	"github.com/octobees/site-scraper/internal/secret"
	"github.com/octobees/site-scraper/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	if !cfg.HasEncKey() {
		logger.Warn("CONFIG_ENC_KEY is not set, saved configs use the development key")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	var configRepo repository.FeishuConfigRepository
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: cfg.DatabaseMaxConns})
		if err == nil {
			err = database.EnsureSchema(ctx, pool)
		}
		cancel()
		if err != nil {
			log.Fatal("failed to prepare database", "err", err)
		}
		defer pool.Close()
		configRepo = repository.NewPGXFeishuConfigRepository(pool)
	} else {
		logger.Info("DATABASE_URL is not set, per-user config storage disabled")
	}

	sealer, err := secret.NewSealer(cfg.ConfigEncKey)
	if err != nil {
		log.Fatal("failed to init config sealer", "err", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 0)
	if !jwtManager.Enabled() {
		logger.Info("JWT_SECRET is not set, /config requires auth and will reject every request")
	}

	defaults := entity.FeishuConfig{
		AppID:           cfg.Feishu.AppID,
		AppSecret:       cfg.Feishu.AppSecret,
		TableID:         cfg.Feishu.TableID,
		BitableAppToken: cfg.Feishu.BitableAppToken,
	}

	feishuClient := bitable.NewClient(&http.Client{Timeout: 10 * time.Second}, cfg.FeishuBaseURL, bitable.WithLogger(logger.WithPrefix("feishu")))
	writer := service.NewBitableWriter(feishuClient, logger.WithPrefix("bitable"))
	userConfigs := service.NewUserConfigService(configRepo, sealer, logger.WithPrefix("config"))

	extractOpts := []service.ExtractOption{
		service.WithUserConfigs(userConfigs),
		service.WithDefaultConfig(defaults),
		service.WithLogger(logger.WithPrefix("extract")),
		service.WithMetrics(recorder),
	}
	if cfg.Fetch.AllowPrivate {
		logger.Warn("FETCH_ALLOW_PRIVATE is set, /extract can reach private network hosts")
		extractOpts = append(extractOpts, service.WithPrivateTargets())
	}
	if cfg.Fetch.RenderEnabled {
		extractOpts = append(extractOpts, service.WithRenderer(
			fetcher.NewRenderer(cfg.Fetch.RenderTimeout, cfg.Fetch.UserAgent),
			extractor.New(extractor.WithVariant(extractor.VariantRendered)),
		))
	}
	extractService := service.NewExtractService(
		fetcher.NewHTTPFetcher(nil, fetcher.Options{
			Timeout:      cfg.Fetch.Timeout,
			UserAgent:    cfg.Fetch.UserAgent,
			MaxBytes:     cfg.Fetch.MaxBytes,
			BlockPrivate: !cfg.Fetch.AllowPrivate,
		}),
		extractor.New(),
		writer,
		extractOpts...,
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logger)

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger.WithPrefix("http"), recorder))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, "X-Request-ID"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))

	router.Register(e, cfg, jwtManager, reg, router.Handlers{
		Extract: handler.NewExtractHandler(extractService),
		Config:  handler.NewConfigHandler(userConfigs),
		Feishu:  handler.NewFeishuHandler(writer),
		Health: handler.NewHealthHandler(dto.HealthConfig{
			HasAppID:      defaults.AppID != "",
			HasAppSecret:  defaults.AppSecret != "",
			HasTableID:    defaults.TableID != "",
			HasEncKey:     cfg.HasEncKey(),
			HasStorage:    userConfigs.Available(),
			RenderEnabled: extractService.RenderAvailable(),
		}),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
