package domain

import (
	"github.com/yungbote/cardmarket-backend/internal/domain/auth"
	"github.com/yungbote/cardmarket-backend/internal/domain/market"
	"github.com/yungbote/cardmarket-backend/internal/domain/user"
)

const (
	NotForSale = market.NotForSale

	TradePending  = market.TradePending
	TradeAccepted = market.TradeAccepted
	TradeDeclined = market.TradeDeclined
	TradeCanceled = market.TradeCanceled
)

type User = user.User
type UserToken = auth.UserToken

type Card = market.Card
type TradeOffer = market.TradeOffer
type TradeStatus = market.TradeStatus

// Models lists every table the store migrates.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Card{},
		&TradeOffer{},
	}
}
