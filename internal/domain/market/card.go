package market

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/domain/user"
)

// NotForSale is the price sentinel of a card that is not listed on the marketplace.
const NotForSale int64 = -1

type Card struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string         `gorm:"not null;index;column:name" json:"name"`
	OwnerID  uuid.UUID      `gorm:"type:uuid;not null;index;column:owner_id" json:"owner"`
	Owner    *user.User     `gorm:"foreignKey:OwnerID;references:ID" json:"-"`
	Price    int64          `gorm:"not null;index;column:price" json:"price"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Card) TableName() string { return "card" }

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Listed reports whether the card is on the marketplace.
func (c *Card) Listed() bool {
	return c.Price >= 0
}
