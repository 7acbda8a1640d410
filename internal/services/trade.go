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

type TradeService interface {
	CreateOffer(dbc dbctx.Context, senderID uuid.UUID, recipientUsername string, senderCardID, recipientCardID uuid.UUID) (*types.TradeOffer, error)
	// Respond applies action for actorID. When acceptance finds stale ownership the
	// canceled offer is committed and returned together with ledger.ErrStaleOwnership.
	Respond(dbc dbctx.Context, actorID, offerID uuid.UUID, action ledger.Action) (*types.TradeOffer, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID, status string) ([]*types.TradeOffer, error)
	Get(dbc dbctx.Context, actorID, offerID uuid.UUID) (*types.TradeOffer, error)
}

type tradeService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	cardRepo  repos.CardRepo
	offerRepo repos.TradeOfferRepo
	notifier  MarketNotifier
	metrics   *observability.Metrics
}

func NewTradeService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	cardRepo repos.CardRepo,
	offerRepo repos.TradeOfferRepo,
	notifier MarketNotifier,
	metrics *observability.Metrics,
) TradeService {
	if notifier == nil {
		notifier = NewMarketNotifier(nil)
	}
	return &tradeService{
		db:        db,
		log:       log.With("service", "TradeService"),
		userRepo:  userRepo,
		cardRepo:  cardRepo,
		offerRepo: offerRepo,
		notifier:  notifier,
		metrics:   metrics,
	}
}

func (ts *tradeService) CreateOffer(dbc dbctx.Context, senderID uuid.UUID, recipientUsername string, senderCardID, recipientCardID uuid.UUID) (offer *types.TradeOffer, err error) {
	dbc, span := startSpan(dbc, "TradeService.CreateOffer",
		attribute.String("card.sender", senderCardID.String()),
		attribute.String("card.recipient", recipientCardID.String()),
	)
	defer func() { endSpan(span, err) }()

	err = inTx(ts.db, dbc, func(inner dbctx.Context) error {
		sender, err := ts.userRepo.GetByID(inner, senderID)
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return pkgerrors.ErrUnauthorized
		}
		if err != nil {
			return err
		}
		recipient, err := ts.userRepo.GetByUsername(inner, strings.TrimSpace(recipientUsername))
		if err != nil {
			return err
		}
		cards, err := ts.cardRepo.LockByIDs(inner, []uuid.UUID{senderCardID, recipientCardID})
		if err != nil {
			return err
		}
		senderCard, recipientCard := cards[senderCardID], cards[recipientCardID]
		if senderCard == nil || recipientCard == nil {
			return pkgerrors.ErrNotFound
		}
		o, err := ledger.NewOffer(sender, recipient, senderCard, recipientCard, ts.db.NowFunc())
		if err != nil {
			return err
		}
		if _, err := ts.offerRepo.Create(inner, []*types.TradeOffer{o}); err != nil {
			return fmt.Errorf("create offer: %w", err)
		}
		offer = o
		return nil
	})
	ts.metrics.ObserveLedger("offer_create", outcome(err))
	if err != nil {
		return nil, err
	}
	ts.metrics.ObserveTrade(string(offer.Status))
	ts.log.Info("Trade offer created", "offer_id", offer.ID, "sender", offer.SenderID)
	ts.notifier.OfferCreated(offer)
	return offer, nil
}

// Respond locks the offer, then both cards in id order when accepting.
func (ts *tradeService) Respond(dbc dbctx.Context, actorID, offerID uuid.UUID, action ledger.Action) (out *types.TradeOffer, err error) {
	dbc, span := startSpan(dbc, "TradeService.Respond",
		attribute.String("trade.id", offerID.String()),
		attribute.String("trade.action", string(action)),
	)
	defer func() { endSpan(span, err) }()

	var respondErr error
	txErr := inTx(ts.db, dbc, func(inner dbctx.Context) error {
		offer, err := ts.offerRepo.LockByID(inner, offerID)
		if err != nil {
			return err
		}
		var senderCard, recipientCard *types.Card
		if action == ledger.ActionAccept && offer.Status == types.TradePending {
			cards, err := ts.cardRepo.LockByIDs(inner, []uuid.UUID{offer.SenderCardID, offer.RecipientCardID})
			if err != nil {
				return err
			}
			senderCard, recipientCard = cards[offer.SenderCardID], cards[offer.RecipientCardID]
		}

		respondErr = ledger.Respond(offer, actorID, action, senderCard, recipientCard, ts.db.NowFunc())
		switch {
		case errors.Is(respondErr, ledger.ErrStaleOwnership):
			// The offer is canceled; commit that and report the conflict afterwards.
			return ts.offerRepo.UpdateStatus(inner, offer)
		case respondErr != nil:
			return respondErr
		}
		if offer.Status == types.TradeAccepted {
			if err := ts.cardRepo.SaveState(inner, senderCard, recipientCard); err != nil {
				return fmt.Errorf("save swapped cards: %w", err)
			}
		}
		return ts.offerRepo.UpdateStatus(inner, offer)
	})
	if txErr != nil {
		ts.metrics.ObserveLedger("offer_"+string(action), outcome(txErr))
		return nil, txErr
	}
	ts.metrics.ObserveLedger("offer_"+string(action), outcome(respondErr))

	out, err = ts.offerRepo.GetByID(dbc, offerID)
	if err != nil {
		return nil, err
	}
	ts.metrics.ObserveTrade(string(out.Status))
	ts.log.Info("Trade offer updated", "offer_id", out.ID, "status", out.Status, "actor_user_id", actorID)
	ts.notifier.OfferUpdated(out)
	if respondErr != nil {
		return out, respondErr
	}
	return out, nil
}

func (ts *tradeService) ListForUser(dbc dbctx.Context, userID uuid.UUID, status string) ([]*types.TradeOffer, error) {
	st := types.TradeStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown trade status %q", pkgerrors.ErrInvalidArgument, status)
	}
	return ts.offerRepo.ListForUser(dbc, userID, st)
}

func (ts *tradeService) Get(dbc dbctx.Context, actorID, offerID uuid.UUID) (*types.TradeOffer, error) {
	offer, err := ts.offerRepo.GetByID(dbc, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.Involves(actorID) {
		return nil, ledger.ErrForbidden
	}
	return offer, nil
}
