package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardmarket-backend/internal/ledger"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
	"github.com/yungbote/cardmarket-backend/internal/platform/apierr"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ledger.ErrInvalidPrice, http.StatusBadRequest, "invalid_price"},
		{ledger.ErrInvalidAction, http.StatusBadRequest, "invalid_action"},
		{fmt.Errorf("%w: bad", pkgerrors.ErrInvalidArgument), http.StatusBadRequest, "invalid_request"},
		{pkgerrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{ledger.ErrNotOwner, http.StatusForbidden, "not_owner"},
		{ledger.ErrForbidden, http.StatusForbidden, "forbidden"},
		{ledger.ErrSelfTrade, http.StatusForbidden, "self_trade"},
		{ledger.ErrAlreadyOwned, http.StatusForbidden, "already_owned"},
		{ledger.ErrSelfTransfer, http.StatusForbidden, "self_transfer"},
		{pkgerrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{&ledger.TransitionError{Status: "accepted"}, http.StatusConflict, "invalid_transition"},
		{ledger.ErrStaleOwnership, http.StatusConflict, "stale_ownership"},
		{ledger.ErrNotForSale, http.StatusConflict, "not_for_sale"},
		{fmt.Errorf("purchase: %w", ledger.ErrInsufficientFunds), http.StatusConflict, "insufficient_funds"},
		{ledger.ErrCardListedForSale, http.StatusConflict, "card_listed_for_sale"},
		{pkgerrors.ErrConflict, http.StatusConflict, "conflict"},
		{apierr.New(http.StatusTeapot, "teapot", nil), http.StatusTeapot, "teapot"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("FromError(%v): got %d/%s want %d/%s", tc.err, got.Status, got.Code, tc.status, tc.code)
		}
	}
}

func TestRespondAPIErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondAPIError(c, logger.Nop(), errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "connection refused") {
		t.Fatalf("internal detail leaked: %s", body)
	}
	if !strings.Contains(body, `"code":"internal_error"`) {
		t.Fatalf("missing code: %s", body)
	}
}
