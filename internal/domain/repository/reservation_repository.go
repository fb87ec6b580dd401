package repository

import (
	"context"
	"time"

	"go-reservation-store/internal/domain/entity"

	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, db *gorm.DB, reservation *entity.Reservation) error
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Reservation, error)
	FindBySlot(ctx context.Context, db *gorm.DB, scheduleID int, date time.Time) (*entity.Reservation, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID int) ([]entity.Reservation, error)
	FindByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]entity.Reservation, error)
	Delete(ctx context.Context, db *gorm.DB, id int) (int64, error)
}
