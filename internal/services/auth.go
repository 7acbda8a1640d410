package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/data/repos"
	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardmarket-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cardmarket-backend/internal/pkg/errors"
	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 150
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthConfig struct {
	JWTSecretKey    string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	StartingBalance int64
	BcryptCost      int
}

type AuthService interface {
	Register(dbc dbctx.Context, username, email, password string) (*types.User, error)
	Login(dbc dbctx.Context, username, password string) (*TokenPair, error)
	Refresh(dbc dbctx.Context, refreshToken string) (*TokenPair, error)
	Logout(dbc dbctx.Context, userID uuid.UUID, refreshToken string) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	cfg           AuthConfig
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	cfg AuthConfig,
) AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		cfg:           cfg,
	}
}

// Register creates an account seeded with the configured starting balance.
func (as *authService) Register(dbc dbctx.Context, username, email, password string) (*types.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		Username:       username,
		Email:          email,
		Password:       string(hash),
		AccountBalance: as.cfg.StartingBalance,
	}
	err = inTx(as.db, dbc, func(inner dbctx.Context) error {
		exists, err := as.userRepo.UsernameExists(inner, username)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: username %q is taken", pkgerrors.ErrConflict, username)
		}
		_, err = as.userRepo.Create(inner, []*types.User{user})
		return err
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", user.ID)
	return user, nil
}

func validateRegistration(username, email, password string) error {
	if username == "" || len(username) > maxUsernameLength {
		return fmt.Errorf("%w: username must be 1-%d characters", pkgerrors.ErrInvalidArgument, maxUsernameLength)
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("@.+-_", r) {
			return fmt.Errorf("%w: username may contain letters, digits and @.+-_ only", pkgerrors.ErrInvalidArgument)
		}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", pkgerrors.ErrInvalidArgument)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", pkgerrors.ErrInvalidArgument, minPasswordLength)
	}
	return nil
}

func (as *authService) Login(dbc dbctx.Context, username, password string) (*TokenPair, error) {
	user, err := as.userRepo.GetByUsername(dbc, strings.TrimSpace(username))
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
	}

	var pair *TokenPair
	if err := inTx(as.db, dbc, func(inner dbctx.Context) error {
		p, err := as.issueTokens(inner, user)
		if err != nil {
			return err
		}
		pair = p
		return nil
	}); err != nil {
		return nil, err
	}
	as.log.Debug("User logged in", "user_id", user.ID)
	return pair, nil
}

// Refresh rotates a refresh token: the presented one is consumed and a new pair issued.
func (as *authService) Refresh(dbc dbctx.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token required", pkgerrors.ErrUnauthorized)
	}

	var pair *TokenPair
	expired := false
	err := inTx(as.db, dbc, func(inner dbctx.Context) error {
		existing, err := as.userTokenRepo.LockByRefreshToken(inner, refreshToken)
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return fmt.Errorf("%w: unknown refresh token", pkgerrors.ErrUnauthorized)
		}
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.DeleteByIDs(inner, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("consume refresh token: %w", err)
		}
		if existing.Expired(as.db.NowFunc()) {
			// Commit the deletion; the caller still gets unauthorized.
			expired = true
			return nil
		}
		user, err := as.userRepo.GetByID(inner, existing.UserID)
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return fmt.Errorf("%w: account no longer exists", pkgerrors.ErrUnauthorized)
		}
		if err != nil {
			return err
		}
		p, err := as.issueTokens(inner, user)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, fmt.Errorf("%w: refresh token expired", pkgerrors.ErrUnauthorized)
	}
	return pair, nil
}

// Logout revokes one refresh token of userID. Unknown tokens are ignored.
func (as *authService) Logout(dbc dbctx.Context, userID uuid.UUID, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return inTx(as.db, dbc, func(inner dbctx.Context) error {
		tok, err := as.userTokenRepo.LockByRefreshToken(inner, refreshToken)
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if tok.UserID != userID {
			as.log.Warn("Logout with foreign refresh token", "user_id", userID)
			return nil
		}
		return as.userTokenRepo.DeleteByIDs(inner, []uuid.UUID{tok.ID})
	})
}

func (as *authService) issueTokens(dbc dbctx.Context, user *types.User) (*TokenPair, error) {
	access, err := as.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tok := &types.UserToken{
		UserID:       user.ID,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    as.db.NowFunc().Add(as.cfg.RefreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{tok}); err != nil {
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    int64(as.cfg.AccessTTL.Seconds()),
	}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.cfg.JWTSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, pkgerrors.ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.cfg.JWTSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", pkgerrors.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", pkgerrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid subject", pkgerrors.ErrUnauthorized)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.cfg.AccessTTL
}
