// Package app is the composition root: it wires the logger, config, DB,
// domain clients, orchestrator, and HTTP router into one runnable process.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inquiryos/inquiry-os/internal/clients/llm"
	"github.com/inquiryos/inquiry-os/internal/clients/ratelimit"
	"github.com/inquiryos/inquiry-os/internal/clients/search"
	"github.com/inquiryos/inquiry-os/internal/clients/webfetcher"
	"github.com/inquiryos/inquiry-os/internal/clock"
	"github.com/inquiryos/inquiry-os/internal/db"
	httpserver "github.com/inquiryos/inquiry-os/internal/http"
	httpH "github.com/inquiryos/inquiry-os/internal/http/handlers"
	"github.com/inquiryos/inquiry-os/internal/orchestrator"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
	"github.com/inquiryos/inquiry-os/internal/repos"
)

type App struct {
	Log    *logger.Logger
	DB     *gorm.DB
	Router *gin.Engine
	Cfg    Config

	Store        *repos.Store
	Orchestrator *orchestrator.Orchestrator

	tracingShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("loading configuration...")
	cfg := LoadConfig(log)

	shutdownTracing, err := setupTracing(context.Background(), log)
	if err != nil {
		log.Warn("tracing setup failed, continuing without spans", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	store := repos.NewStore(theDB, log)
	realClock := clock.Real()

	searchClient := search.NewDuckDuckGoClient()
	fetcher := webfetcher.New()

	if cfg.RedisAddr != "" || cfg.RatePerSec > 0 {
		limiter := ratelimit.NewHostLimiter(cfg.RedisAddr, cfg.RatePerSec, cfg.RateBurst, log)
		fetcher = rateLimitedFetcher{inner: fetcher, limiter: limiter}
	}

	llmClient, err := llm.New(cfg.LLM)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	orch := orchestrator.New(theDB, store, realClock, searchClient, fetcher, llmClient, log)

	healthHandler := httpH.NewHealthHandler()
	researchRunHandler := httpH.NewResearchRunHandler(orch)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:      healthHandler,
		ResearchRunHandler: researchRunHandler,
	})

	return &App{
		Log:             log,
		DB:              theDB,
		Router:          router,
		Cfg:             cfg,
		Store:           store,
		Orchestrator:    orch,
		tracingShutdown: shutdownTracing,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.tracingShutdown != nil {
		_ = a.tracingShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
