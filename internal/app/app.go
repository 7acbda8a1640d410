package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/data/db"
	"github.com/yungbote/cardmarket-backend/internal/observability"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/realtime"
	"github.com/yungbote/cardmarket-backend/internal/realtime/bus"
	"github.com/yungbote/cardmarket-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Bus      bus.Bus
	Metrics  *observability.Metrics

	store        *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel())

	store, err := db.NewService(cfg.DB(), log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init entity store: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := store.DB()

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	ssehub := realtime.NewSSEHub(log)
	eventBus, err := wireBus(log, cfg)
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, err
	}
	notifier := services.NewMarketNotifier(&services.BusEmitter{Bus: eventBus, Log: log})

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, notifier, metrics)
	handlerset := wireHandlers(theDB, log, serviceset, ssehub)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(cfg, log, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		SSEHub:       ssehub,
		Bus:          eventBus,
		Metrics:      metrics,
		store:        store,
		otelShutdown: otelShutdown,
	}, nil
}

// wireBus fans events out through redis when REDIS_ADDR is set, so every API
// instance delivers them to its own SSE clients.
func wireBus(log *logger.Logger, cfg Config) (bus.Bus, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Info("REDIS_ADDR not set; using in-process event bus")
		return bus.NewLocalBus(), nil
	}
	b, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
	if err != nil {
		return nil, fmt.Errorf("init redis bus: %w", err)
	}
	return b, nil
}

// Start forwards bus messages into the local SSE hub until Close.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	return a.Bus.StartForwarder(ctx, a.SSEHub.Broadcast)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("Event bus close failed", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("Entity store close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
