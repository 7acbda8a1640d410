package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/data/repos"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

type Repos struct {
	User       repos.UserRepo
	UserToken  repos.UserTokenRepo
	Card       repos.CardRepo
	TradeOffer repos.TradeOfferRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		UserToken:  repos.NewUserTokenRepo(db, log),
		Card:       repos.NewCardRepo(db, log),
		TradeOffer: repos.NewTradeOfferRepo(db, log),
	}
}
