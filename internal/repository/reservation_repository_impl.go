package repository

import (
	"context"
	"errors"
	"time"

	"go-reservation-store/internal/domain/entity"
	domainRepo "go-reservation-store/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reservationRepository struct{}

func NewReservationRepository() domainRepo.ReservationRepository {
	return &reservationRepository{}
}

func (r *reservationRepository) Create(ctx context.Context, db *gorm.DB, reservation *entity.Reservation) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := db.WithContext(ctx).Preload("Schedule").Where("id = ?", id).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindBySlot(ctx context.Context, db *gorm.DB, scheduleID int, date time.Time) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := db.WithContext(ctx).
		Where("time_id = ? AND date = ?", scheduleID, entity.DateOf(date)).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID int) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	err := db.WithContext(ctx).Preload("Schedule").
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) FindByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]entity.Reservation, error) {
	var reservations []entity.Reservation
	err := db.WithContext(ctx).Preload("User").
		Where("date = ?", entity.DateOf(date)).
		Order("time_id ASC, id ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// Delete returns affected rows: 0 means nothing was released.
func (r *reservationRepository) Delete(ctx context.Context, db *gorm.DB, id int) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Reservation{})
	return result.RowsAffected, result.Error
}
