package realtime

type SSEEvent string

const (
	SSEEventTradeOfferCreated SSEEvent = "trade.offer_created"
	SSEEventTradeOfferUpdated SSEEvent = "trade.offer_updated"
	SSEEventCardPurchased     SSEEvent = "card.purchased"
	SSEEventCardTransferred   SSEEvent = "card.transferred"
)

// SSEMessage is delivered to every client subscribed to Channel. Channels are user ids.
type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
