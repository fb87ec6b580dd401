package repository

import (
	"context"
	"errors"

	"go-reservation-store/internal/domain/entity"
	domainRepo "go-reservation-store/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.User, error) {
	var user entity.User
	err := db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.UserFilter) ([]entity.User, error) {
	var users []entity.User
	query := db.WithContext(ctx).Preload("Role")
	if filter.RoleID != 0 {
		query = query.Where("role_id = ?", filter.RoleID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, db *gorm.DB, user *entity.User) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// SetActive flips the soft-delete flag. Returns affected rows: 0 means the
// user does not exist.
func (r *userRepository) SetActive(ctx context.Context, db *gorm.DB, id int, active bool) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Update("is_active", active)
	return result.RowsAffected, result.Error
}
