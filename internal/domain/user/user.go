package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email          string    `gorm:"not null;column:email" json:"email"`
	Password       string    `gorm:"not null;column:password" json:"-"`
	AccountBalance int64     `gorm:"not null;default:0;column:account_balance" json:"account_balance"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
