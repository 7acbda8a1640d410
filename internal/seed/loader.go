package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/data/repos"
	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

type Result struct {
	UsersCreated int
	UsersSkipped int
	CardsCreated int
}

type Loader struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	cardRepo repos.CardRepo
	cost     int
}

func NewLoader(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, cardRepo repos.CardRepo) *Loader {
	return &Loader{
		db:       db,
		log:      log.With("component", "SeedLoader"),
		userRepo: userRepo,
		cardRepo: cardRepo,
		cost:     bcrypt.DefaultCost,
	}
}

// Load creates every catalog user that does not exist yet, with their cards, in
// one transaction. Existing users and their cards are left alone, so Load can
// be re-run against the same store.
func (l *Loader) Load(ctx context.Context, cat *Catalog) (Result, error) {
	var res Result
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, entry := range cat.Users {
			username := strings.TrimSpace(entry.Username)
			_, err := l.userRepo.GetByUsername(dbc, username)
			if err == nil {
				res.UsersSkipped++
				continue
			}
			if !errors.Is(err, pkgerrors.ErrNotFound) {
				return err
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(entry.Password), l.cost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", username, err)
			}
			user := &types.User{
				Username:       username,
				Email:          strings.ToLower(strings.TrimSpace(entry.Email)),
				Password:       string(hash),
				AccountBalance: entry.Balance,
			}
			if _, err := l.userRepo.Create(dbc, []*types.User{user}); err != nil {
				return fmt.Errorf("create user %s: %w", username, err)
			}
			res.UsersCreated++

			cards := make([]*types.Card, 0, len(entry.Cards))
			for _, ce := range entry.Cards {
				meta, err := ce.metadata()
				if err != nil {
					return fmt.Errorf("card %q metadata: %w", ce.Name, err)
				}
				cards = append(cards, &types.Card{
					Name:     strings.TrimSpace(ce.Name),
					OwnerID:  user.ID,
					Price:    ce.price(),
					Metadata: datatypes.JSON(meta),
				})
			}
			if len(cards) == 0 {
				continue
			}
			if _, err := l.cardRepo.Create(dbc, cards); err != nil {
				return fmt.Errorf("create cards for %s: %w", username, err)
			}
			res.CardsCreated += len(cards)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	l.log.Info("Catalog loaded", "users_created", res.UsersCreated, "cards_created", res.CardsCreated)
	return res, nil
}
