package repository

import (
	"context"
	"time"

	"go-reservation-store/internal/domain/entity"

	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	// Upsert inserts the row or overwrites the availability flag of the
	// existing row for the same (date, time_id).
	Upsert(ctx context.Context, db *gorm.DB, availability *entity.AvailabilityDate) error
	FindBySlot(ctx context.Context, db *gorm.DB, scheduleID int, date time.Time) (*entity.AvailabilityDate, error)
	// FindBySlotForUpdate is FindBySlot holding a row lock until the
	// surrounding transaction ends.
	FindBySlotForUpdate(ctx context.Context, db *gorm.DB, scheduleID int, date time.Time) (*entity.AvailabilityDate, error)
	FindByScheduleID(ctx context.Context, db *gorm.DB, scheduleID int) ([]entity.AvailabilityDate, error)
	FindByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]entity.AvailabilityDate, error)
	// FindClosed returns rows whose flag is false or NULL.
	FindClosed(ctx context.Context, db *gorm.DB, filter entity.AvailabilityFilter) ([]entity.AvailabilityDate, error)
	Delete(ctx context.Context, db *gorm.DB, id int) (int64, error)
}
