package services

import (
	"errors"
	"fmt"
	"strings"

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

type CardService interface {
	Transfer(dbc dbctx.Context, actorID, cardID uuid.UUID, recipientUsername string) (*types.Card, error)
	ListUnlistedForUser(dbc dbctx.Context, username string) ([]*types.Card, error)
	ListByOwner(dbc dbctx.Context, username string, filter repos.ListingFilter) ([]*types.Card, error)
	Get(dbc dbctx.Context, cardID uuid.UUID) (*types.Card, error)
}

type cardService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	cardRepo repos.CardRepo
	notifier MarketNotifier
	metrics  *observability.Metrics
}

func NewCardService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	cardRepo repos.CardRepo,
	notifier MarketNotifier,
	metrics *observability.Metrics,
) CardService {
	if notifier == nil {
		notifier = NewMarketNotifier(nil)
	}
	return &cardService{
		db:       db,
		log:      log.With("service", "CardService"),
		userRepo: userRepo,
		cardRepo: cardRepo,
		notifier: notifier,
		metrics:  metrics,
	}
}

// Transfer gives the card to another user for free and takes it off the marketplace.
func (cs *cardService) Transfer(dbc dbctx.Context, actorID, cardID uuid.UUID, recipientUsername string) (card *types.Card, err error) {
	dbc, span := startSpan(dbc, "CardService.Transfer", attribute.String("card.id", cardID.String()))
	defer func() { endSpan(span, err) }()

	recipientUsername = strings.TrimSpace(recipientUsername)
	var fromID, toID uuid.UUID
	err = inTx(cs.db, dbc, func(inner dbctx.Context) error {
		c, err := lockCard(cs.cardRepo, inner, cardID)
		if err != nil {
			return err
		}
		from, err := cs.userRepo.GetByID(inner, actorID)
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return pkgerrors.ErrUnauthorized
		}
		if err != nil {
			return err
		}
		to, err := cs.userRepo.GetByUsername(inner, recipientUsername)
		if err != nil {
			return err
		}
		if err := ledger.ExecuteCardGift(from, to, c); err != nil {
			return err
		}
		if err := cs.cardRepo.SaveState(inner, c); err != nil {
			return fmt.Errorf("save card: %w", err)
		}
		fromID, toID = from.ID, to.ID
		card = c
		return nil
	})
	cs.metrics.ObserveLedger("transfer", outcome(err))
	if err != nil {
		return nil, err
	}
	cs.log.Info("Card transferred", "card_id", card.ID, "from_user_id", fromID, "to_user_id", toID)
	cs.notifier.CardTransferred(card, fromID, toID)
	return card, nil
}

func (cs *cardService) ListUnlistedForUser(dbc dbctx.Context, username string) ([]*types.Card, error) {
	return cs.ListByOwner(dbc, username, repos.OnlyUnlisted)
}

func (cs *cardService) ListByOwner(dbc dbctx.Context, username string, filter repos.ListingFilter) ([]*types.Card, error) {
	owner, err := cs.userRepo.GetByUsername(dbc, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	return cs.cardRepo.ListByOwner(dbc, owner.ID, filter)
}

func (cs *cardService) Get(dbc dbctx.Context, cardID uuid.UUID) (*types.Card, error) {
	return cs.cardRepo.GetByID(dbc, cardID)
}
