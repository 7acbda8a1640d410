package market

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

// ListingFilter narrows owner queries by marketplace state.
type ListingFilter int

const (
	AnyListing ListingFilter = iota
	OnlyListed
	OnlyUnlisted
)

type CardRepo interface {
	Create(dbc dbctx.Context, cards []*types.Card) ([]*types.Card, error)
	GetByID(dbc dbctx.Context, cardID uuid.UUID) (*types.Card, error)
	LockByIDs(dbc dbctx.Context, cardIDs []uuid.UUID) (map[uuid.UUID]*types.Card, error)
	ListListed(dbc dbctx.Context, nameFilter string) ([]*types.Card, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, filter ListingFilter) ([]*types.Card, error)
	ListIDsByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
	SaveState(dbc dbctx.Context, cards ...*types.Card) error
	DeleteByOwner(dbc dbctx.Context, ownerID uuid.UUID) error
}

type cardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCardRepo(db *gorm.DB, baseLog *logger.Logger) CardRepo {
	return &cardRepo{db: db, log: baseLog.With("repo", "CardRepo")}
}

func (r *cardRepo) Create(dbc dbctx.Context, cards []*types.Card) ([]*types.Card, error) {
	if len(cards) == 0 {
		return []*types.Card{}, nil
	}
	if err := dbc.Conn(r.db).Omit(clause.Associations).Create(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *cardRepo) GetByID(dbc dbctx.Context, cardID uuid.UUID) (*types.Card, error) {
	var c types.Card
	err := dbc.Conn(r.db).Preload("Owner").Where("id = ?", cardID).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LockByIDs loads the cards FOR UPDATE in ascending id order. Missing ids are absent from the map.
func (r *cardRepo) LockByIDs(dbc dbctx.Context, cardIDs []uuid.UUID) (map[uuid.UUID]*types.Card, error) {
	ids := uniqueSorted(cardIDs)
	out := make(map[uuid.UUID]*types.Card, len(ids))
	for _, id := range ids {
		var c types.Card
		err := dbc.Conn(r.db).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = &c
	}
	return out, nil
}

// ListListed returns every card with price >= 0, optionally filtered by a
// case-insensitive substring of its name.
func (r *cardRepo) ListListed(dbc dbctx.Context, nameFilter string) ([]*types.Card, error) {
	q := dbc.Conn(r.db).Preload("Owner").Where("price >= ?", 0)
	if f := strings.TrimSpace(nameFilter); f != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f))+"%")
	}
	var out []*types.Card
	if err := q.Order("created_at ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cardRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, filter ListingFilter) ([]*types.Card, error) {
	q := dbc.Conn(r.db).Preload("Owner").Where("owner_id = ?", ownerID)
	switch filter {
	case OnlyListed:
		q = q.Where("price >= ?", 0)
	case OnlyUnlisted:
		q = q.Where("price < ?", 0)
	}
	var out []*types.Card
	if err := q.Order("created_at ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cardRepo) ListIDsByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.Conn(r.db).
		Model(&types.Card{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveState persists owner and price, the only mutable card fields.
func (r *cardRepo) SaveState(dbc dbctx.Context, cards ...*types.Card) error {
	for _, c := range cards {
		res := dbc.Conn(r.db).
			Model(&types.Card{}).
			Where("id = ?", c.ID).
			Updates(map[string]any{
				"owner_id":   c.OwnerID,
				"price":      c.Price,
				"updated_at": r.db.NowFunc(),
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

func (r *cardRepo) DeleteByOwner(dbc dbctx.Context, ownerID uuid.UUID) error {
	return dbc.Conn(r.db).Where("owner_id = ?", ownerID).Delete(&types.Card{}).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
