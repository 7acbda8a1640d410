package apierr

import (
	"fmt"
	"net/http"

	"github.com/yungbote/cardmarket-backend/internal/ledger"
)

// Error is an error already classified for the HTTP layer.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromLedger wraps err with the status for its ledger kind. It returns nil when err
// is not a ledger error.
func FromLedger(err error) *Error {
	kind, code := ledger.Classify(err)
	status := StatusForKind(kind)
	if status == 0 {
		return nil
	}
	return New(status, code, err)
}

// StatusForKind is 400 for validation, 403 for authorization and 409 for state
// conflicts. Unknown kinds map to 0.
func StatusForKind(kind ledger.Kind) int {
	switch kind {
	case ledger.KindValidation:
		return http.StatusBadRequest
	case ledger.KindAuthorization:
		return http.StatusForbidden
	case ledger.KindConflict:
		return http.StatusConflict
	}
	return 0
}
