package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/realtime"
	"github.com/yungbote/cardmarket-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

type BusEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("SSE publish failed", "event", msg.Event, "error", err)
	}
}

// MarketNotifier tells both parties about committed ledger changes. Delivery is
// best effort and never affects the outcome of the operation.
type MarketNotifier interface {
	OfferCreated(offer *types.TradeOffer)
	OfferUpdated(offer *types.TradeOffer)
	CardPurchased(card *types.Card, buyerID, sellerID uuid.UUID, price int64)
	CardTransferred(card *types.Card, fromID, toID uuid.UUID)
}

type marketNotifier struct {
	emit SSEEmitter
}

func NewMarketNotifier(emit SSEEmitter) MarketNotifier {
	return &marketNotifier{emit: emit}
}

func (n *marketNotifier) send(event realtime.SSEEvent, data map[string]any, userIDs ...uuid.UUID) {
	if n == nil || n.emit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	seen := map[uuid.UUID]bool{}
	for _, id := range userIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		n.emit.Emit(ctx, realtime.SSEMessage{Channel: id.String(), Event: event, Data: data})
	}
}

func (n *marketNotifier) OfferCreated(offer *types.TradeOffer) {
	if offer == nil {
		return
	}
	n.send(realtime.SSEEventTradeOfferCreated, map[string]any{"trade": NewTradeView(offer)}, offer.SenderID, offer.RecipientID)
}

func (n *marketNotifier) OfferUpdated(offer *types.TradeOffer) {
	if offer == nil {
		return
	}
	n.send(realtime.SSEEventTradeOfferUpdated, map[string]any{"trade": NewTradeView(offer)}, offer.SenderID, offer.RecipientID)
}

func (n *marketNotifier) CardPurchased(card *types.Card, buyerID, sellerID uuid.UUID, price int64) {
	if card == nil {
		return
	}
	n.send(realtime.SSEEventCardPurchased, map[string]any{
		"card":   NewCardView(card),
		"buyer":  buyerID,
		"seller": sellerID,
		"price":  price,
	}, buyerID, sellerID)
}

func (n *marketNotifier) CardTransferred(card *types.Card, fromID, toID uuid.UUID) {
	if card == nil {
		return
	}
	n.send(realtime.SSEEventCardTransferred, map[string]any{
		"card": NewCardView(card),
		"from": fromID,
		"to":   toID,
	}, fromID, toID)
}
