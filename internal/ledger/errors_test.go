package ledger

import (
	"errors"
	"fmt"
	"testing"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind Kind
		code string
	}{
		{"nil", nil, KindUnknown, ""},
		{"unrelated", errors.New("boom"), KindUnknown, ""},
		{"not owner", ErrNotOwner, KindAuthorization, "not_owner"},
		{"wrapped funds", fmt.Errorf("purchase: %w", ErrInsufficientFunds), KindConflict, "insufficient_funds"},
		{"transition", &TransitionError{Status: types.TradeDeclined}, KindConflict, "invalid_transition"},
		{"price", ErrInvalidPrice, KindValidation, "invalid_price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, code := Classify(tc.err)
			if kind != tc.kind || code != tc.code {
				t.Fatalf("Classify(%v) = (%v, %q), want (%v, %q)", tc.err, kind, code, tc.kind, tc.code)
			}
		})
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	err := error(&TransitionError{Status: types.TradeAccepted})
	if err.Error() != "trade offer is already accepted" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("TransitionError should match ErrInvalidTransition")
	}
	var te *TransitionError
	if !errors.As(fmt.Errorf("respond: %w", err), &te) || te.Status != types.TradeAccepted {
		t.Fatalf("errors.As should recover the status")
	}
}
