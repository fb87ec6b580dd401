package repository

import (
	"context"

	"go-reservation-store/internal/domain/entity"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *entity.User) error
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.User, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.UserFilter) ([]entity.User, error)
	Update(ctx context.Context, db *gorm.DB, user *entity.User) error
	SetActive(ctx context.Context, db *gorm.DB, id int, active bool) (int64, error)
}
