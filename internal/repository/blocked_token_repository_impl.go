package repository

import (
	"context"
	"errors"
	"time"

	"go-reservation-store/internal/domain/entity"
	domainRepo "go-reservation-store/internal/domain/repository"

	"gorm.io/gorm"
)

type blockedTokenRepository struct{}

func NewBlockedTokenRepository() domainRepo.BlockedTokenRepository {
	return &blockedTokenRepository{}
}

func (r *blockedTokenRepository) Create(ctx context.Context, db *gorm.DB, token *entity.BlockedToken) error {
	return db.WithContext(ctx).Create(token).Error
}

// FindActiveByJTI filters expired entries at read time; a NULL expiry never expires.
func (r *blockedTokenRepository) FindActiveByJTI(ctx context.Context, db *gorm.DB, jti string, now time.Time) (*entity.BlockedToken, error) {
	var token entity.BlockedToken
	err := db.WithContext(ctx).
		Where("jti = ? AND (expires IS NULL OR expires > ?)", jti, now).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *blockedTokenRepository) DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("expires IS NOT NULL AND expires <= ?", now).
		Delete(&entity.BlockedToken{})
	return result.RowsAffected, result.Error
}
