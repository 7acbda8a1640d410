// Package ledger holds the ownership transfer rules of the marketplace.
//
// Every function here works on entities the caller already loaded (and locked)
// inside one store transaction. All checks run before the first mutation, so a
// returned error means no field was touched unless documented otherwise; the
// caller persists the mutated fields in the same transaction.
package ledger

import (
	"math"
	"time"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
)

// ExecuteCreditTransfer moves card from seller to buyer for price credits.
// price is the currently listed price; the card is delisted afterwards.
func ExecuteCreditTransfer(buyer, seller *types.User, card *types.Card, price int64) error {
	if price < 0 {
		return ErrNotForSale
	}
	if buyer.ID == seller.ID || buyer.ID == card.OwnerID {
		return ErrSelfTransaction
	}
	if card.OwnerID != seller.ID {
		return ErrStaleOwnership
	}
	if buyer.AccountBalance < price {
		return ErrInsufficientFunds
	}
	if seller.AccountBalance > math.MaxInt64-price {
		return ErrBalanceOverflow
	}

	buyer.AccountBalance -= price
	seller.AccountBalance += price
	card.OwnerID = buyer.ID
	card.Owner = buyer
	card.Price = types.NotForSale
	return nil
}

// ExecuteCardSwap exchanges the two cards of a pending offer and marks it accepted.
//
// Ownership is re-verified against the cards as they are now. When either side no
// longer holds its card the offer is moved to canceled and ErrStaleOwnership is
// returned; that status change is the one mutation the caller must still persist.
// Passing cards other than the offer's own is a caller bug: nothing is mutated and
// ErrOfferCardMismatch is returned.
func ExecuteCardSwap(offer *types.TradeOffer, senderCard, recipientCard *types.Card, now time.Time) error {
	if offer.Status != types.TradePending {
		return &TransitionError{Status: offer.Status}
	}
	if senderCard.ID != offer.SenderCardID || recipientCard.ID != offer.RecipientCardID {
		return ErrOfferCardMismatch
	}
	if senderCard.OwnerID != offer.SenderID || recipientCard.OwnerID != offer.RecipientID {
		setStatus(offer, types.TradeCanceled, now)
		return ErrStaleOwnership
	}

	senderCard.OwnerID, recipientCard.OwnerID = offer.RecipientID, offer.SenderID
	senderCard.Owner, recipientCard.Owner = offer.Recipient, offer.Sender
	senderCard.Price = types.NotForSale
	recipientCard.Price = types.NotForSale
	setStatus(offer, types.TradeAccepted, now)
	return nil
}

// ExecuteCardGift hands card from one user to another without payment.
func ExecuteCardGift(from, to *types.User, card *types.Card) error {
	if card.OwnerID != from.ID {
		return ErrNotOwner
	}
	if from.ID == to.ID {
		return ErrSelfTransfer
	}
	card.OwnerID = to.ID
	card.Owner = to
	card.Price = types.NotForSale
	return nil
}

// SetListing lists card at price, or delists it when price is NotForSale.
// Zero is rejected: a listing is either strictly positive or the sentinel.
func SetListing(card *types.Card, actingUser *types.User, price int64) error {
	if actingUser == nil || card.OwnerID != actingUser.ID {
		return ErrNotOwner
	}
	if !ValidListingPrice(price) {
		return ErrInvalidPrice
	}
	card.Price = price
	return nil
}

func ValidListingPrice(price int64) bool {
	return price == types.NotForSale || price > 0
}

// setStatus keeps updated_at strictly increasing even when the clock does not move.
func setStatus(offer *types.TradeOffer, status types.TradeStatus, now time.Time) {
	if !now.After(offer.UpdatedAt) {
		now = offer.UpdatedAt.Add(time.Microsecond)
	}
	offer.Status = status
	offer.UpdatedAt = now
}
