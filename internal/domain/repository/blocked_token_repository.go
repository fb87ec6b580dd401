package repository

import (
	"context"
	"time"

	"go-reservation-store/internal/domain/entity"

	"gorm.io/gorm"
)

type BlockedTokenRepository interface {
	Create(ctx context.Context, db *gorm.DB, token *entity.BlockedToken) error
	// FindActiveByJTI returns the entry for jti unless it expired at now.
	FindActiveByJTI(ctx context.Context, db *gorm.DB, jti string, now time.Time) (*entity.BlockedToken, error)
	DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
