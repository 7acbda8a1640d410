package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/cardmarket-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cardmarket-backend/internal/http/middleware"
	"github.com/yungbote/cardmarket-backend/internal/observability"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	MarketplaceHandler *httpH.MarketplaceHandler
	CardHandler        *httpH.CardHandler
	TradeHandler       *httpH.TradeHandler
	RealtimeHandler    *httpH.RealtimeHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/token/refresh", cfg.AuthHandler.Refresh)
		}

		// Browsing (public)
		if cfg.MarketplaceHandler != nil {
			api.GET("/marketplace", cfg.MarketplaceHandler.Browse)
		}
		if cfg.CardHandler != nil {
			api.GET("/cards/:id", cfg.CardHandler.Get)
			api.GET("/users/:username/cards", cfg.CardHandler.ListByUser)
			api.GET("/users/:username/cards/unlisted", cfg.CardHandler.ListUnlistedByUser)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.DELETE("/me", cfg.UserHandler.DeleteMe)
		}

		if cfg.MarketplaceHandler != nil {
			protected.POST("/marketplace/listings", cfg.MarketplaceHandler.ListForSale)
			protected.DELETE("/marketplace/listings/:card_id", cfg.MarketplaceHandler.Unlist)
			protected.POST("/marketplace/purchases", cfg.MarketplaceHandler.Purchase)
		}

		if cfg.CardHandler != nil {
			protected.POST("/cards/transfer", cfg.CardHandler.Transfer)
		}

		if cfg.TradeHandler != nil {
			protected.POST("/trades", cfg.TradeHandler.Create)
			protected.GET("/trades", cfg.TradeHandler.List)
			protected.GET("/trades/:id", cfg.TradeHandler.Get)
			protected.POST("/trades/:id/actions", cfg.TradeHandler.Respond)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/events/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
