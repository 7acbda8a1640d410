package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/data/repos"
	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

type UserService interface {
	GetMe(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	// DeleteAccount removes the user with every card, trade offer and refresh token tied to it.
	DeleteAccount(dbc dbctx.Context, userID uuid.UUID) error
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	cardRepo      repos.CardRepo
	offerRepo     repos.TradeOfferRepo
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	cardRepo repos.CardRepo,
	offerRepo repos.TradeOfferRepo,
) UserService {
	return &userService{
		db:            db,
		log:           log.With("service", "UserService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		cardRepo:      cardRepo,
		offerRepo:     offerRepo,
	}
}

func (us *userService) GetMe(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	return us.userRepo.GetByID(dbc, userID)
}

func (us *userService) DeleteAccount(dbc dbctx.Context, userID uuid.UUID) error {
	err := inTx(us.db, dbc, func(inner dbctx.Context) error {
		if _, err := us.userRepo.GetByID(inner, userID); err != nil {
			return err
		}
		cardIDs, err := us.cardRepo.ListIDsByOwner(inner, userID)
		if err != nil {
			return err
		}
		if err := us.offerRepo.DeleteInvolving(inner, userID, cardIDs); err != nil {
			return fmt.Errorf("delete trade offers: %w", err)
		}
		if err := us.cardRepo.DeleteByOwner(inner, userID); err != nil {
			return fmt.Errorf("delete cards: %w", err)
		}
		if err := us.userTokenRepo.DeleteByUserIDs(inner, []uuid.UUID{userID}); err != nil {
			return fmt.Errorf("delete tokens: %w", err)
		}
		return us.userRepo.Delete(inner, userID)
	})
	if err != nil {
		return err
	}
	us.log.Info("Account deleted", "user_id", userID)
	return nil
}
