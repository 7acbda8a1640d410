package ledger

import (
	"errors"
	"fmt"

	"github.com/yungbote/cardmarket-backend/internal/domain/market"
)

// Authorization errors: the caller broke an ownership or identity rule.
var (
	ErrNotOwner        = errors.New("acting user does not own the card")
	ErrForbidden       = errors.New("acting user may not perform this action")
	ErrSelfTrade       = errors.New("cannot trade with yourself")
	ErrAlreadyOwned    = errors.New("you already own this card")
	ErrSelfTransfer    = errors.New("cannot transfer a card to yourself")
	ErrSelfTransaction = errors.New("buyer and seller are the same user")
)

// State-conflict errors: current entity state disagrees with the request.
var (
	ErrInvalidTransition = errors.New("invalid trade offer transition")
	ErrStaleOwnership    = errors.New("card ownership changed since the offer was made")
	ErrNotForSale        = errors.New("card is not for sale")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCardListedForSale = errors.New("card is listed for sale")
	ErrBalanceOverflow   = errors.New("balance overflow")
)

// ErrOfferCardMismatch means the cards handed to a swap are not the offer's cards.
// It has no catalog entry, so it surfaces as an internal error.
var ErrOfferCardMismatch = errors.New("cards do not belong to the trade offer")

// Validation errors.
var (
	ErrInvalidPrice  = errors.New("price must be -1 or greater than 0")
	ErrInvalidAction = errors.New("action must be one of accept, decline, cancel")
)

// TransitionError reports the status an offer was in when a transition was refused.
type TransitionError struct {
	Status market.TradeStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("trade offer is already %s", e.Status)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Kind groups ledger errors by how a caller should react to them.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindConflict
)

type classified struct {
	err  error
	kind Kind
	code string
}

var catalog = []classified{
	{ErrNotOwner, KindAuthorization, "not_owner"},
	{ErrForbidden, KindAuthorization, "forbidden"},
	{ErrSelfTrade, KindAuthorization, "self_trade"},
	{ErrAlreadyOwned, KindAuthorization, "already_owned"},
	{ErrSelfTransfer, KindAuthorization, "self_transfer"},
	{ErrSelfTransaction, KindAuthorization, "self_transaction"},
	{ErrInvalidTransition, KindConflict, "invalid_transition"},
	{ErrStaleOwnership, KindConflict, "stale_ownership"},
	{ErrNotForSale, KindConflict, "not_for_sale"},
	{ErrInsufficientFunds, KindConflict, "insufficient_funds"},
	{ErrCardListedForSale, KindConflict, "card_listed_for_sale"},
	{ErrBalanceOverflow, KindConflict, "balance_overflow"},
	{ErrInvalidPrice, KindValidation, "invalid_price"},
	{ErrInvalidAction, KindValidation, "invalid_action"},
}

// Classify reports the kind and stable code of a ledger error anywhere in err's chain.
func Classify(err error) (Kind, string) {
	if err == nil {
		return KindUnknown, ""
	}
	for _, c := range catalog {
		if errors.Is(err, c.err) {
			return c.kind, c.code
		}
	}
	return KindUnknown, ""
}
