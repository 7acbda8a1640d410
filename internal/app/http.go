package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/http"
	httpH "github.com/yungbote/cardmarket-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cardmarket-backend/internal/http/middleware"
	"github.com/yungbote/cardmarket-backend/internal/observability"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Marketplace *httpH.MarketplaceHandler
	Card        *httpH.CardHandler
	Trade       *httpH.TradeHandler
	Realtime    *httpH.RealtimeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Auth:        httpH.NewAuthHandler(log, services.Auth),
		User:        httpH.NewUserHandler(log, services.User),
		Marketplace: httpH.NewMarketplaceHandler(log, services.Marketplace),
		Card:        httpH.NewCardHandler(log, services.Card),
		Trade:       httpH.NewTradeHandler(log, services.Trade),
		Realtime:    httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(cfg Config, log *logger.Logger, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.OtelServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        serviceName,
		CORSOrigins:        cfg.CORSAllowedOrigins,
		AuthMiddleware:     middleware.Auth,
		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		MarketplaceHandler: handlers.Marketplace,
		CardHandler:        handlers.Card,
		TradeHandler:       handlers.Trade,
		RealtimeHandler:    handlers.Realtime,
		HealthHandler:      handlers.Health,
	})
}
