package market

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

type TradeOfferRepo interface {
	Create(dbc dbctx.Context, offers []*types.TradeOffer) ([]*types.TradeOffer, error)
	GetByID(dbc dbctx.Context, offerID uuid.UUID) (*types.TradeOffer, error)
	LockByID(dbc dbctx.Context, offerID uuid.UUID) (*types.TradeOffer, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID, status types.TradeStatus) ([]*types.TradeOffer, error)
	UpdateStatus(dbc dbctx.Context, offer *types.TradeOffer) error
	DeleteInvolving(dbc dbctx.Context, userID uuid.UUID, cardIDs []uuid.UUID) error
}

type tradeOfferRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTradeOfferRepo(db *gorm.DB, baseLog *logger.Logger) TradeOfferRepo {
	return &tradeOfferRepo{db: db, log: baseLog.With("repo", "TradeOfferRepo")}
}

func (r *tradeOfferRepo) Create(dbc dbctx.Context, offers []*types.TradeOffer) ([]*types.TradeOffer, error) {
	if len(offers) == 0 {
		return []*types.TradeOffer{}, nil
	}
	if err := dbc.Conn(r.db).Omit(clause.Associations).Create(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *tradeOfferRepo) preloaded(dbc dbctx.Context) *gorm.DB {
	return dbc.Conn(r.db).
		Preload("Sender").
		Preload("Recipient").
		Preload("SenderCard").
		Preload("RecipientCard")
}

// GetByID loads the offer with both parties and both cards.
func (r *tradeOfferRepo) GetByID(dbc dbctx.Context, offerID uuid.UUID) (*types.TradeOffer, error) {
	var o types.TradeOffer
	err := r.preloaded(dbc).Where("id = ?", offerID).Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *tradeOfferRepo) LockByID(dbc dbctx.Context, offerID uuid.UUID) (*types.TradeOffer, error) {
	var o types.TradeOffer
	err := dbc.Conn(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", offerID).
		Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListForUser returns offers the user sent or received, newest first. An empty
// status returns every status.
func (r *tradeOfferRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID, status types.TradeStatus) ([]*types.TradeOffer, error) {
	q := r.preloaded(dbc).Where("(sender_id = ? OR recipient_id = ?)", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []*types.TradeOffer
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tradeOfferRepo) UpdateStatus(dbc dbctx.Context, offer *types.TradeOffer) error {
	updatedAt := offer.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	res := dbc.Conn(r.db).
		Model(&types.TradeOffer{}).
		Where("id = ?", offer.ID).
		Updates(map[string]any{
			"status":     offer.Status,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrInconsistent
	}
	return nil
}

// DeleteInvolving removes offers where the user is a party or that reference one of cardIDs.
func (r *tradeOfferRepo) DeleteInvolving(dbc dbctx.Context, userID uuid.UUID, cardIDs []uuid.UUID) error {
	q := dbc.Conn(r.db).Where("sender_id = ? OR recipient_id = ?", userID, userID)
	if len(cardIDs) > 0 {
		q = q.Or("sender_card_id IN ?", cardIDs).Or("recipient_card_id IN ?", cardIDs)
	}
	return q.Delete(&types.TradeOffer{}).Error
}
