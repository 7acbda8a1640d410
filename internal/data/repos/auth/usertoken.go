package auth

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	LockByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error)
	DeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error
	DeleteByRefreshTokens(dbc dbctx.Context, refreshTokens []string) error
	DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}
	if err := dbc.Conn(utr.db).Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

func (utr *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	var results []*types.UserToken
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Conn(utr.db).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// LockByRefreshToken loads the token FOR UPDATE so a refresh token can be rotated once.
func (utr *userTokenRepo) LockByRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error) {
	var tok types.UserToken
	err := dbc.Conn(utr.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("refresh_token = ?", refreshToken).
		Take(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (utr *userTokenRepo) DeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	return dbc.Conn(utr.db).Where("id IN ?", tokenIDs).Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) DeleteByRefreshTokens(dbc dbctx.Context, refreshTokens []string) error {
	if len(refreshTokens) == 0 {
		return nil
	}
	return dbc.Conn(utr.db).Where("refresh_token IN ?", refreshTokens).Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return dbc.Conn(utr.db).Where("user_id IN ?", userIDs).Delete(&types.UserToken{}).Error
}
