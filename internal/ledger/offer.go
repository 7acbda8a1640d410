package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
)

type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
	ActionCancel  Action = "cancel"
)

func ParseAction(raw string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(raw))); a {
	case ActionAccept, ActionDecline, ActionCancel:
		return a, nil
	}
	return "", ErrInvalidAction
}

// ValidateNewOffer checks the creation rules of a one-for-one trade offer.
func ValidateNewOffer(sender, recipient *types.User, senderCard, recipientCard *types.Card) error {
	if sender.ID == recipient.ID {
		return ErrSelfTrade
	}
	if senderCard.OwnerID != sender.ID || recipientCard.OwnerID != recipient.ID {
		return ErrNotOwner
	}
	if senderCard.Listed() || recipientCard.Listed() {
		return ErrCardListedForSale
	}
	return nil
}

// NewOffer validates and builds a pending offer created at now.
func NewOffer(sender, recipient *types.User, senderCard, recipientCard *types.Card, now time.Time) (*types.TradeOffer, error) {
	if err := ValidateNewOffer(sender, recipient, senderCard, recipientCard); err != nil {
		return nil, err
	}
	return &types.TradeOffer{
		ID:              uuid.New(),
		SenderID:        sender.ID,
		Sender:          sender,
		RecipientID:     recipient.ID,
		Recipient:       recipient,
		SenderCardID:    senderCard.ID,
		SenderCard:      senderCard,
		RecipientCardID: recipientCard.ID,
		RecipientCard:   recipientCard,
		Status:          types.TradePending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Authorize checks that actorID may apply action to offer: the recipient answers
// an offer, only the sender withdraws it.
func Authorize(offer *types.TradeOffer, actorID uuid.UUID, action Action) error {
	switch action {
	case ActionAccept, ActionDecline:
		if actorID != offer.RecipientID {
			return ErrForbidden
		}
	case ActionCancel:
		if actorID != offer.SenderID {
			return ErrForbidden
		}
	default:
		return ErrInvalidAction
	}
	return nil
}

// Respond applies action to offer on behalf of actorID.
//
// A terminal offer refuses every action from every actor with a TransitionError,
// so the state check runs before authorization. senderCard and recipientCard are
// only read for accept and may be nil otherwise; a nil card on accept means it no
// longer exists. On ErrStaleOwnership the offer has been canceled and must still
// be persisted.
func Respond(offer *types.TradeOffer, actorID uuid.UUID, action Action, senderCard, recipientCard *types.Card, now time.Time) error {
	if offer.Status != types.TradePending {
		return &TransitionError{Status: offer.Status}
	}
	if err := Authorize(offer, actorID, action); err != nil {
		return err
	}
	switch action {
	case ActionAccept:
		if senderCard == nil || recipientCard == nil {
			setStatus(offer, types.TradeCanceled, now)
			return ErrStaleOwnership
		}
		return ExecuteCardSwap(offer, senderCard, recipientCard, now)
	case ActionDecline:
		setStatus(offer, types.TradeDeclined, now)
	case ActionCancel:
		setStatus(offer, types.TradeCanceled, now)
	}
	return nil
}
