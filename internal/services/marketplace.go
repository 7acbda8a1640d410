package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/data/repos"
	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/ledger"
	"github.com/yungbote/cardmarket-backend/internal/observability"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

type PurchaseResult struct {
	Card       *types.Card
	Price      int64
	SellerID   uuid.UUID
	NewBalance int64
}

type MarketplaceService interface {
	ListForSale(dbc dbctx.Context, actorID, cardID uuid.UUID, price int64) (*types.Card, error)
	Unlist(dbc dbctx.Context, actorID, cardID uuid.UUID) (*types.Card, error)
	Purchase(dbc dbctx.Context, buyerID, cardID uuid.UUID) (*PurchaseResult, error)
	ListMarketplace(dbc dbctx.Context, nameFilter string) ([]*types.Card, error)
}

type marketplaceService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	cardRepo repos.CardRepo
	notifier MarketNotifier
	metrics  *observability.Metrics
}

func NewMarketplaceService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	cardRepo repos.CardRepo,
	notifier MarketNotifier,
	metrics *observability.Metrics,
) MarketplaceService {
	if notifier == nil {
		notifier = NewMarketNotifier(nil)
	}
	return &marketplaceService{
		db:       db,
		log:      log.With("service", "MarketplaceService"),
		userRepo: userRepo,
		cardRepo: cardRepo,
		notifier: notifier,
		metrics:  metrics,
	}
}

func (ms *marketplaceService) ListForSale(dbc dbctx.Context, actorID, cardID uuid.UUID, price int64) (card *types.Card, err error) {
	dbc, span := startSpan(dbc, "MarketplaceService.ListForSale", attribute.String("card.id", cardID.String()), attribute.Int64("card.price", price))
	defer func() { endSpan(span, err) }()

	err = inTx(ms.db, dbc, func(inner dbctx.Context) error {
		c, err := lockCard(ms.cardRepo, inner, cardID)
		if err != nil {
			return err
		}
		actor, err := ms.userRepo.GetByID(inner, actorID)
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return pkgerrors.ErrUnauthorized
		}
		if err != nil {
			return err
		}
		if err := ledger.SetListing(c, actor, price); err != nil {
			return err
		}
		if err := ms.cardRepo.SaveState(inner, c); err != nil {
			return fmt.Errorf("save listing: %w", err)
		}
		c.Owner = actor
		card = c
		return nil
	})
	op := "list"
	if price == types.NotForSale {
		op = "unlist"
	}
	ms.metrics.ObserveLedger(op, outcome(err))
	if err != nil {
		return nil, err
	}
	ms.log.Debug("Listing updated", "card_id", card.ID, "price", card.Price)
	return card, nil
}

func (ms *marketplaceService) Unlist(dbc dbctx.Context, actorID, cardID uuid.UUID) (*types.Card, error) {
	return ms.ListForSale(dbc, actorID, cardID, types.NotForSale)
}

// Purchase buys a listed card at its current price. The card row is locked
// first, then both users in id order.
func (ms *marketplaceService) Purchase(dbc dbctx.Context, buyerID, cardID uuid.UUID) (res *PurchaseResult, err error) {
	dbc, span := startSpan(dbc, "MarketplaceService.Purchase", attribute.String("card.id", cardID.String()))
	defer func() { endSpan(span, err) }()

	err = inTx(ms.db, dbc, func(inner dbctx.Context) error {
		card, err := lockCard(ms.cardRepo, inner, cardID)
		if err != nil {
			return err
		}
		if !card.Listed() {
			return ledger.ErrNotForSale
		}
		if card.OwnerID == buyerID {
			return ledger.ErrAlreadyOwned
		}
		sellerID := card.OwnerID

		users, err := ms.userRepo.LockByIDs(inner, []uuid.UUID{buyerID, sellerID})
		if err != nil {
			return err
		}
		buyer, seller := users[buyerID], users[sellerID]
		if buyer == nil {
			return pkgerrors.ErrUnauthorized
		}
		if seller == nil {
			return fmt.Errorf("card %s owner %s: %w", card.ID, sellerID, pkgerrors.ErrInconsistent)
		}

		price := card.Price
		if err := ledger.ExecuteCreditTransfer(buyer, seller, card, price); err != nil {
			return err
		}
		if err := ms.userRepo.UpdateBalances(inner, buyer, seller); err != nil {
			return fmt.Errorf("save balances: %w", err)
		}
		if err := ms.cardRepo.SaveState(inner, card); err != nil {
			return fmt.Errorf("save card: %w", err)
		}
		res = &PurchaseResult{Card: card, Price: price, SellerID: sellerID, NewBalance: buyer.AccountBalance}
		return nil
	})
	ms.metrics.ObserveLedger("purchase", outcome(err))
	if err != nil {
		return nil, err
	}
	ms.metrics.AddCreditsMoved(res.Price)
	ms.log.Info("Card purchased", "card_id", res.Card.ID, "buyer", buyerID, "seller", res.SellerID, "price", res.Price)
	ms.notifier.CardPurchased(res.Card, buyerID, res.SellerID, res.Price)
	return res, nil
}

func (ms *marketplaceService) ListMarketplace(dbc dbctx.Context, nameFilter string) ([]*types.Card, error) {
	return ms.cardRepo.ListListed(dbc, nameFilter)
}

func lockCard(cardRepo repos.CardRepo, dbc dbctx.Context, cardID uuid.UUID) (*types.Card, error) {
	cards, err := cardRepo.LockByIDs(dbc, []uuid.UUID{cardID})
	if err != nil {
		return nil, err
	}
	card := cards[cardID]
	if card == nil {
		return nil, pkgerrors.ErrNotFound
	}
	return card, nil
}
