package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cardmarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "tokenowner", 0)

	makeToken := func(refresh string) *types.UserToken {
		return &types.UserToken{
			UserID:       u.ID,
			RefreshToken: refresh,
			ExpiresAt:    time.Now().Add(1 * time.Hour),
		}
	}

	t1 := makeToken("refresh-1")
	t2 := makeToken("refresh-2")
	t3 := makeToken("refresh-3")
	if _, err := repo.Create(dbc, []*types.UserToken{t1, t2, t3}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if t1.ID == uuid.Nil {
		t.Fatalf("Create: expected generated id")
	}

	if rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 3 {
		t.Fatalf("GetByUserIDs: err=%v len=%d", err, len(rows))
	}

	locked, err := repo.LockByRefreshToken(dbc, "refresh-1")
	if err != nil {
		t.Fatalf("LockByRefreshToken: %v", err)
	}
	if locked.ID != t1.ID || locked.Expired(time.Now()) {
		t.Fatalf("LockByRefreshToken: unexpected result: %+v", locked)
	}
	if _, err := repo.LockByRefreshToken(dbc, "nope"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("LockByRefreshToken (missing): expected ErrNotFound, got %v", err)
	}

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{t1.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if err := repo.DeleteByRefreshTokens(dbc, []string{"refresh-2"}); err != nil {
		t.Fatalf("DeleteByRefreshTokens: %v", err)
	}
	if rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 1 || rows[0].ID != t3.ID {
		t.Fatalf("GetByUserIDs after deletes: err=%v rows=%+v", err, rows)
	}

	if err := repo.DeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("DeleteByUserIDs: %v", err)
	}
	if rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("GetByUserIDs after DeleteByUserIDs: err=%v len=%d", err, len(rows))
	}
}
