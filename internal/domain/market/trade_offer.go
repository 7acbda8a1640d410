package market

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/domain/user"
)

type TradeStatus string

const (
	TradePending  TradeStatus = "pending"
	TradeAccepted TradeStatus = "accepted"
	TradeDeclined TradeStatus = "declined"
	TradeCanceled TradeStatus = "canceled"
)

func (s TradeStatus) Valid() bool {
	switch s {
	case TradePending, TradeAccepted, TradeDeclined, TradeCanceled:
		return true
	}
	return false
}

// Terminal statuses never transition again.
func (s TradeStatus) Terminal() bool {
	return s == TradeAccepted || s == TradeDeclined || s == TradeCanceled
}

type TradeOffer struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID        uuid.UUID   `gorm:"type:uuid;not null;index;column:sender_id" json:"sender"`
	Sender          *user.User  `gorm:"foreignKey:SenderID;references:ID" json:"-"`
	RecipientID     uuid.UUID   `gorm:"type:uuid;not null;index;column:recipient_id" json:"recipient"`
	Recipient       *user.User  `gorm:"foreignKey:RecipientID;references:ID" json:"-"`
	SenderCardID    uuid.UUID   `gorm:"type:uuid;not null;index;column:sender_card_id" json:"sender_card"`
	SenderCard      *Card       `gorm:"foreignKey:SenderCardID;references:ID" json:"-"`
	RecipientCardID uuid.UUID   `gorm:"type:uuid;not null;index;column:recipient_card_id" json:"recipient_card"`
	RecipientCard   *Card       `gorm:"foreignKey:RecipientCardID;references:ID" json:"-"`
	Status          TradeStatus `gorm:"type:varchar(16);not null;index;column:status" json:"status"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TradeOffer) TableName() string { return "trade_offer" }

func (o *TradeOffer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Involves reports whether userID is the sender or the recipient.
func (o *TradeOffer) Involves(userID uuid.UUID) bool {
	return o.SenderID == userID || o.RecipientID == userID
}
