package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	u, err := f.auth.Register(f.dbc, " dana ", "Dana@Example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Username != "dana" || u.Email != "dana@example.com" || u.AccountBalance != 100 {
		t.Fatalf("Register: unexpected user %+v", u)
	}
	if u.Password == "correct-horse" {
		t.Fatalf("Register: password stored in clear")
	}

	if _, err := f.auth.Register(f.dbc, "dana", "other@example.com", "correct-horse"); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("Register(dup): expected ErrConflict, got %v", err)
	}

	bad := []struct{ username, email, password string }{
		{"", "a@example.com", "longenough"},
		{"has space", "a@example.com", "longenough"},
		{"ok", "not-an-email", "longenough"},
		{"ok", "a@example.com", "short"},
	}
	for _, tc := range bad {
		if _, err := f.auth.Register(f.dbc, tc.username, tc.email, tc.password); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Fatalf("Register(%q,%q): expected ErrInvalidArgument, got %v", tc.username, tc.email, err)
		}
	}
}

func TestLoginAndTokenContext(t *testing.T) {
	f := newFixture(t)
	u, err := f.auth.Register(f.dbc, "erin", "erin@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := f.auth.Login(f.dbc, "erin", "wrong-password"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("Login(wrong): expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.auth.Login(f.dbc, "nobody", "correct-horse"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("Login(unknown): expected ErrUnauthorized, got %v", err)
	}

	pair, err := f.auth.Login(f.dbc, "erin", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.ExpiresIn != int64((15*time.Minute).Seconds()) {
		t.Fatalf("Login: unexpected pair %+v", pair)
	}

	ctx, err := f.auth.SetContextFromToken(f.ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != u.ID {
		t.Fatalf("SetContextFromToken: request data %+v", rd)
	}

	for _, tok := range []string{"", "garbage", pair.AccessToken + "x"} {
		if _, err := f.auth.SetContextFromToken(f.ctx, tok); !errors.Is(err, pkgerrors.ErrUnauthorized) {
			t.Fatalf("SetContextFromToken(%q): expected ErrUnauthorized, got %v", tok, err)
		}
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	if _, err := f.auth.Register(f.dbc, "finn", "finn@example.com", "correct-horse"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	first, err := f.auth.Login(f.dbc, "finn", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	second, err := f.auth.Refresh(f.dbc, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("Refresh: token not rotated")
	}
	if _, err := f.auth.Refresh(f.dbc, first.RefreshToken); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("Refresh(reused): expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.auth.Refresh(f.dbc, ""); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("Refresh(empty): expected ErrUnauthorized, got %v", err)
	}
}

func TestRefreshExpiredTokenIsConsumed(t *testing.T) {
	f := newFixture(t)
	u, err := f.auth.Register(f.dbc, "gale", "gale@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	tok := &types.UserToken{
		UserID:       u.ID,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().UTC().Add(-time.Minute),
	}
	if _, err := f.tokenRepo.Create(f.dbc, []*types.UserToken{tok}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	if _, err := f.auth.Refresh(f.dbc, tok.RefreshToken); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("Refresh(expired): expected ErrUnauthorized, got %v", err)
	}
	left, err := f.tokenRepo.GetByUserIDs(f.dbc, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("GetByUserIDs: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expired token was not deleted")
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	u, err := f.auth.Register(f.dbc, "hana", "hana@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, err := f.auth.Login(f.dbc, "hana", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := f.auth.Logout(f.dbc, uuid.New(), pair.RefreshToken); err != nil {
		t.Fatalf("Logout(foreign): %v", err)
	}
	if err := f.auth.Logout(f.dbc, u.ID, pair.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.auth.Refresh(f.dbc, pair.RefreshToken); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("Refresh after logout: expected ErrUnauthorized, got %v", err)
	}
	if err := f.auth.Logout(f.dbc, u.ID, "unknown"); err != nil {
		t.Fatalf("Logout(unknown): %v", err)
	}
}
