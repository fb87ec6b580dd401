package repository

import (
	"context"

	"go-reservation-store/internal/domain/entity"

	"gorm.io/gorm"
)

type RoleRepository interface {
	Create(ctx context.Context, db *gorm.DB, role *entity.Role) error
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Role, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Role, error)
	// LockForSeeding blocks other seeders until the surrounding transaction
	// ends. Plain reads are not blocked.
	LockForSeeding(ctx context.Context, db *gorm.DB) error
}
