package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/data/repos"
	"github.com/yungbote/cardmarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/cardmarket-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	e.msgs = append(e.msgs, msg)
	e.mu.Unlock()
}

func (e *recordingEmitter) events(channel string) []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []realtime.SSEEvent
	for _, m := range e.msgs {
		if m.Channel == channel {
			out = append(out, m.Event)
		}
	}
	return out
}

type fixture struct {
	ctx       context.Context
	dbc       dbctx.Context
	db        *gorm.DB
	userRepo  repos.UserRepo
	tokenRepo repos.UserTokenRepo
	cardRepo  repos.CardRepo
	offerRepo repos.TradeOfferRepo
	emit      *recordingEmitter

	market MarketplaceService
	cards  CardService
	trades TradeService
	users  UserService
	auth   AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		ctx:       context.Background(),
		db:        db,
		userRepo:  repos.NewUserRepo(db, log),
		tokenRepo: repos.NewUserTokenRepo(db, log),
		cardRepo:  repos.NewCardRepo(db, log),
		offerRepo: repos.NewTradeOfferRepo(db, log),
		emit:      &recordingEmitter{},
	}
	f.dbc = dbctx.New(f.ctx)
	notifier := NewMarketNotifier(f.emit)
	f.market = NewMarketplaceService(db, log, f.userRepo, f.cardRepo, notifier, nil)
	f.cards = NewCardService(db, log, f.userRepo, f.cardRepo, notifier, nil)
	f.trades = NewTradeService(db, log, f.userRepo, f.cardRepo, f.offerRepo, notifier, nil)
	f.users = NewUserService(db, log, f.userRepo, f.tokenRepo, f.cardRepo, f.offerRepo)
	f.auth = NewAuthService(db, log, f.userRepo, f.tokenRepo, AuthConfig{
		JWTSecretKey:    "test-secret",
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      time.Hour,
		StartingBalance: 100,
		BcryptCost:      bcrypt.MinCost,
	})
	return f
}

func (f *fixture) user(t *testing.T, name string, balance int64) *types.User {
	t.Helper()
	return testutil.SeedUser(t, f.ctx, f.db, name, balance)
}

func (f *fixture) card(t *testing.T, owner *types.User, name string, price int64) *types.Card {
	t.Helper()
	return testutil.SeedCard(t, f.ctx, f.db, owner.ID, name, price)
}

func (f *fixture) reloadUser(t *testing.T, id uuid.UUID) *types.User {
	t.Helper()
	u, err := f.userRepo.GetByID(f.dbc, id)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return u
}

func (f *fixture) reloadCard(t *testing.T, id uuid.UUID) *types.Card {
	t.Helper()
	c, err := f.cardRepo.GetByID(f.dbc, id)
	if err != nil {
		t.Fatalf("reload card: %v", err)
	}
	return c
}

func (f *fixture) reloadOffer(t *testing.T, id uuid.UUID) *types.TradeOffer {
	t.Helper()
	o, err := f.offerRepo.GetByID(f.dbc, id)
	if err != nil {
		t.Fatalf("reload offer: %v", err)
	}
	return o
}
