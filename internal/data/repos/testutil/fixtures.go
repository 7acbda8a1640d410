package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
)

// TestPassword is the plaintext behind every seeded user's password hash.
const TestPassword = "pw-123456"

var (
	hashOnce sync.Once
	hashed   string
)

func passwordHash(tb testing.TB) string {
	tb.Helper()
	hashOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
		if err != nil {
			tb.Fatalf("hash password: %v", err)
		}
		hashed = string(b)
	})
	return hashed
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string, balance int64) *types.User {
	tb.Helper()
	u := &types.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          username + "@example.com",
		Password:       passwordHash(tb),
		AccountBalance: balance,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCard(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string, price int64) *types.Card {
	tb.Helper()
	c := &types.Card{
		ID:      uuid.New(),
		Name:    name,
		OwnerID: ownerID,
		Price:   price,
	}
	if err := tx.WithContext(ctx).Omit("Owner").Create(c).Error; err != nil {
		tb.Fatalf("seed card: %v", err)
	}
	return c
}

func SeedOffer(tb testing.TB, ctx context.Context, tx *gorm.DB, sender, recipient *types.User, senderCard, recipientCard *types.Card, status types.TradeStatus) *types.TradeOffer {
	tb.Helper()
	now := time.Now().UTC()
	o := &types.TradeOffer{
		ID:              uuid.New(),
		SenderID:        sender.ID,
		RecipientID:     recipient.ID,
		SenderCardID:    senderCard.ID,
		RecipientCardID: recipientCard.ID,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.WithContext(ctx).Omit("Sender", "Recipient", "SenderCard", "RecipientCard").Create(o).Error; err != nil {
		tb.Fatalf("seed offer: %v", err)
	}
	return o
}
