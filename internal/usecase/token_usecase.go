package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-reservation-store/internal/domain/entity"
	"go-reservation-store/internal/domain/repository"
	"go-reservation-store/internal/service"
	"go-reservation-store/pkg/jwt"
	"go-reservation-store/pkg/validator"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type RevokeTokenInput struct {
	JTI string `validate:"required,max=100"`
	// Expires is when the token stops being valid anyway. Nil keeps the
	// entry forever.
	Expires *time.Time
}

// IssuedToken is a signed access token with the identifiers needed to revoke
// it later.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

type TokenUsecase interface {
	IssueAccessToken(ctx context.Context, userID int) (*IssuedToken, error)
	RevokeToken(ctx context.Context, input *RevokeTokenInput) error
	RevokeTokenString(ctx context.Context, token string) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type tokenUsecase struct {
	tx               repository.Transactor
	log              *logrus.Logger
	validator        *validator.CustomValidator
	blockedTokenRepo repository.BlockedTokenRepository
	userRepo         repository.UserRepository
	cache            service.RevocationCache
	jwtService       *jwt.JWTService
	now              func() time.Time
}

// NewTokenUsecase wires the revocation list. cache may be nil, in which case
// every check goes to the database.
func NewTokenUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	validator *validator.CustomValidator,
	blockedTokenRepo repository.BlockedTokenRepository,
	userRepo repository.UserRepository,
	cache service.RevocationCache,
	jwtService *jwt.JWTService,
) TokenUsecase {
	return &tokenUsecase{
		tx:               tx,
		log:              log,
		validator:        validator,
		blockedTokenRepo: blockedTokenRepo,
		userRepo:         userRepo,
		cache:            cache,
		jwtService:       jwtService,
		now:              time.Now,
	}
}

// IssueAccessToken signs a token for an active user, carrying the user's role.
func (u *tokenUsecase) IssueAccessToken(ctx context.Context, userID int) (*IssuedToken, error) {
	if u.jwtService == nil {
		return nil, errors.New("issuing tokens requires a jwt service")
	}

	user, err := u.userRepo.FindByID(ctx, u.tx.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %d: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user", ID: userID}
	}
	if !user.Active() {
		return nil, &ValidationError{Fields: map[string]string{"UserID": "UserID refers to an inactive user"}}
	}

	signed, jti, expiresAt, err := u.jwtService.GenerateAccessToken(user.ID, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	u.log.Infof("Access token issued: user_id=%d, jti=%s", user.ID, jti)
	return &IssuedToken{Token: signed, JTI: jti, ExpiresAt: expiresAt}, nil
}

func (u *tokenUsecase) RevokeToken(ctx context.Context, input *RevokeTokenInput) error {
	if err := validateInput(u.validator, input); err != nil {
		return err
	}

	now := u.now().UTC()
	token := &entity.BlockedToken{
		JTI:      input.JTI,
		DateTime: now,
	}
	if input.Expires != nil {
		expires := input.Expires.UTC()
		token.Expires = &expires
	}

	if err := u.blockedTokenRepo.Create(ctx, u.tx.DB(ctx), token); err != nil {
		if isDuplicateKeyError(err, "jti") {
			return &ConflictError{Entity: "blocked token", Field: "jti", Value: input.JTI}
		}
		u.log.Warnf("Failed to revoke token %s: %+v", input.JTI, err)
		return err
	}

	u.log.Infof("Token revoked: jti=%s", input.JTI)

	if u.cache != nil && token.Expires != nil {
		if err := u.cache.MarkRevoked(ctx, input.JTI, token.Expires.Sub(now)); err != nil {
			u.log.Warnf("Failed to cache revoked token %s: %+v", input.JTI, err)
		}
	}
	return nil
}

// RevokeTokenString revokes a signed access token until its own expiry. A
// token that already expired cannot be used anyway and is not recorded.
func (u *tokenUsecase) RevokeTokenString(ctx context.Context, token string) error {
	if u.jwtService == nil {
		return errors.New("token revocation by string requires a jwt service")
	}

	claims, err := u.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			u.log.Debug("Skipping revocation of an expired token")
			return nil
		}
		return fmt.Errorf("%w: %v", jwt.ErrInvalidToken, err)
	}

	input := &RevokeTokenInput{JTI: claims.JTI()}
	if expiry := claims.Expiry(); !expiry.IsZero() {
		input.Expires = &expiry
	}
	return u.RevokeToken(ctx, input)
}

// IsTokenRevoked consults the cache first and falls back to the database on a
// miss or a cache failure.
func (u *tokenUsecase) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	if u.cache != nil {
		revoked, err := u.cache.IsRevoked(ctx, jti)
		if err != nil {
			u.log.Warnf("Revocation cache unavailable, falling back to database: %+v", err)
		} else if revoked {
			return true, nil
		}
	}

	token, err := u.blockedTokenRepo.FindActiveByJTI(ctx, u.tx.DB(ctx), jti, u.now().UTC())
	if err != nil {
		u.log.Warnf("Failed to check token %s: %+v", jti, err)
		return false, err
	}
	return token != nil, nil
}

// PurgeExpiredTokens deletes revocation entries that can no longer matter.
func (u *tokenUsecase) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	purged, err := u.blockedTokenRepo.DeleteExpired(ctx, u.tx.DB(ctx), u.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return purged, nil
}
