package user

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.User, error)
	UsernameExists(dbc dbctx.Context, username string) (bool, error)
	LockByIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.User, error)
	UpdateBalances(dbc dbctx.Context, users ...*types.User) error
	Delete(dbc dbctx.Context, userID uuid.UUID) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.Conn(ur.db).Create(&users).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.ErrConflict
		}
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Conn(ur.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	var u types.User
	err := dbc.Conn(ur.db).Where("id = ?", userID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) GetByUsername(dbc dbctx.Context, username string) (*types.User, error) {
	var u types.User
	err := dbc.Conn(ur.db).Where("username = ?", username).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	var count int64
	if err := dbc.Conn(ur.db).
		Model(&types.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LockByIDs loads the users FOR UPDATE in ascending id order so that concurrent
// transactions touching the same pair always lock in the same sequence.
// Missing ids are absent from the returned map.
func (ur *userRepo) LockByIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.User, error) {
	ids := uniqueSorted(userIDs)
	out := make(map[uuid.UUID]*types.User, len(ids))
	for _, id := range ids {
		var u types.User
		err := dbc.Conn(ur.db).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = &u
	}
	return out, nil
}

func (ur *userRepo) UpdateBalances(dbc dbctx.Context, users ...*types.User) error {
	for _, u := range users {
		res := dbc.Conn(ur.db).
			Model(&types.User{}).
			Where("id = ?", u.ID).
			Updates(map[string]any{
				"account_balance": u.AccountBalance,
				"updated_at":      ur.db.NowFunc(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.ErrInconsistent
		}
	}
	return nil
}

func (ur *userRepo) Delete(dbc dbctx.Context, userID uuid.UUID) error {
	return dbc.Conn(ur.db).Where("id = ?", userID).Delete(&types.User{}).Error
}

func uniqueSorted(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
