package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/observability"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Marketplace services.MarketplaceService
	Card        services.CardService
	Trade       services.TradeService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, notifier services.MarketNotifier, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	return Services{
		Auth:        services.NewAuthService(db, log, r.User, r.UserToken, cfg.Auth()),
		User:        services.NewUserService(db, log, r.User, r.UserToken, r.Card, r.TradeOffer),
		Marketplace: services.NewMarketplaceService(db, log, r.User, r.Card, notifier, metrics),
		Card:        services.NewCardService(db, log, r.User, r.Card, notifier, metrics),
		Trade:       services.NewTradeService(db, log, r.User, r.Card, r.TradeOffer, notifier, metrics),
	}
}
