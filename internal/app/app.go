package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/data/db"
	"github.com/ssingh-rookie/LeafWise-API/internal/observability"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	otelShutdown func(context.Context) error
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

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "leafwise-api",
		Environment: logMode,
	})

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

	reposet := wireRepos(theDB, log)

	providerset, err := wireProviders(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("wire providers: %w", err)
	}

	serviceset, err := wireServices(theDB, log, reposet, providerset)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("wire services: %w", err)
	}

	handlerset := wireHandlers(theDB, serviceset, reposet)
	middleware := wireMiddleware(log, cfg, reposet)
	ginRouter := wireRouter(log, handlerset, middleware, serviceset)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       ginRouter,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	if addr == "" {
		addr = a.Cfg.HTTPAddr
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
