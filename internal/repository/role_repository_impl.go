package repository

import (
	"context"
	"errors"

	"go-reservation-store/internal/domain/entity"
	domainRepo "go-reservation-store/internal/domain/repository"

	"gorm.io/gorm"
)

type roleRepository struct{}

func NewRoleRepository() domainRepo.RoleRepository {
	return &roleRepository{}
}

func (r *roleRepository) Create(ctx context.Context, db *gorm.DB, role *entity.Role) error {
	return db.WithContext(ctx).Omit("Users").Create(role).Error
}

func (r *roleRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Role, error) {
	var role entity.Role
	err := db.WithContext(ctx).Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error) {
	var role entity.Role
	err := db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Role, error) {
	var roles []entity.Role
	if err := db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// SHARE ROW EXCLUSIVE conflicts with itself and with inserts, but not with
// SELECT.
func (r *roleRepository) LockForSeeding(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec("LOCK TABLE role IN SHARE ROW EXCLUSIVE MODE").Error
}
