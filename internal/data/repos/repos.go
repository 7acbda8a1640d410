package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/data/repos/auth"
	"github.com/yungbote/cardmarket-backend/internal/data/repos/market"
	"github.com/yungbote/cardmarket-backend/internal/data/repos/user"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type CardRepo = market.CardRepo
type TradeOfferRepo = market.TradeOfferRepo

type ListingFilter = market.ListingFilter

const (
	AnyListing   = market.AnyListing
	OnlyListed   = market.OnlyListed
	OnlyUnlisted = market.OnlyUnlisted
)

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewCardRepo(db *gorm.DB, baseLog *logger.Logger) CardRepo {
	return market.NewCardRepo(db, baseLog)
}

func NewTradeOfferRepo(db *gorm.DB, baseLog *logger.Logger) TradeOfferRepo {
	return market.NewTradeOfferRepo(db, baseLog)
}
