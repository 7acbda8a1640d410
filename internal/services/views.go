package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
)

// CardView is the card payload returned to clients.
type CardView struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Owner         uuid.UUID      `json:"owner"`
	OwnerUsername string         `json:"owner_username,omitempty"`
	Price         int64          `json:"price"`
	ForSale       bool           `json:"for_sale"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func NewCardView(c *types.Card) *CardView {
	if c == nil {
		return nil
	}
	v := &CardView{
		ID:        c.ID,
		Name:      c.Name,
		Owner:     c.OwnerID,
		Price:     c.Price,
		ForSale:   c.Listed(),
		Metadata:  c.Metadata,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Owner != nil && c.Owner.ID == c.OwnerID {
		v.OwnerUsername = c.Owner.Username
	}
	return v
}

func NewCardViews(cards []*types.Card) []*CardView {
	out := make([]*CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, NewCardView(c))
	}
	return out
}

// TradeView carries the names the trade screens show next to the ids.
type TradeView struct {
	ID                uuid.UUID         `json:"id"`
	Sender            uuid.UUID         `json:"sender"`
	Recipient         uuid.UUID         `json:"recipient"`
	SenderCard        uuid.UUID         `json:"sender_card"`
	RecipientCard     uuid.UUID         `json:"recipient_card"`
	Status            types.TradeStatus `json:"status"`
	SenderUsername    string            `json:"sender_username"`
	RecipientUsername string            `json:"recipient_username"`
	SenderCardName    string            `json:"sender_card_name"`
	RecipientCardName string            `json:"recipient_card_name"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func NewTradeView(o *types.TradeOffer) *TradeView {
	if o == nil {
		return nil
	}
	v := &TradeView{
		ID:            o.ID,
		Sender:        o.SenderID,
		Recipient:     o.RecipientID,
		SenderCard:    o.SenderCardID,
		RecipientCard: o.RecipientCardID,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.Sender != nil {
		v.SenderUsername = o.Sender.Username
	}
	if o.Recipient != nil {
		v.RecipientUsername = o.Recipient.Username
	}
	if o.SenderCard != nil {
		v.SenderCardName = o.SenderCard.Name
	}
	if o.RecipientCard != nil {
		v.RecipientCardName = o.RecipientCard.Name
	}
	return v
}

func NewTradeViews(offers []*types.TradeOffer) []*TradeView {
	out := make([]*TradeView, 0, len(offers))
	for _, o := range offers {
		out = append(out, NewTradeView(o))
	}
	return out
}
