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

type availabilityRepository struct{}

func NewAvailabilityRepository() domainRepo.AvailabilityRepository {
	return &availabilityRepository{}
}

// Upsert relies on the availability_dates_slot_key unique constraint.
func (r *availabilityRepository) Upsert(ctx context.Context, db *gorm.DB, availability *entity.AvailabilityDate) error {
	return db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "time_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"availability"}),
		}).
		Create(availability).Error
}

func (r *availabilityRepository) FindBySlot(ctx context.Context, db *gorm.DB, scheduleID int, date time.Time) (*entity.AvailabilityDate, error) {
	return r.findBySlot(db.WithContext(ctx), scheduleID, date)
}

func (r *availabilityRepository) FindBySlotForUpdate(ctx context.Context, db *gorm.DB, scheduleID int, date time.Time) (*entity.AvailabilityDate, error) {
	return r.findBySlot(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), scheduleID, date)
}

func (r *availabilityRepository) findBySlot(db *gorm.DB, scheduleID int, date time.Time) (*entity.AvailabilityDate, error) {
	var availability entity.AvailabilityDate
	err := db.Where("time_id = ? AND date = ?", scheduleID, entity.DateOf(date)).First(&availability).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &availability, nil
}

func (r *availabilityRepository) FindByScheduleID(ctx context.Context, db *gorm.DB, scheduleID int) ([]entity.AvailabilityDate, error) {
	var rows []entity.AvailabilityDate
	err := db.WithContext(ctx).
		Where("time_id = ?", scheduleID).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *availabilityRepository) FindByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]entity.AvailabilityDate, error) {
	var rows []entity.AvailabilityDate
	err := db.WithContext(ctx).
		Where("date = ?", entity.DateOf(date)).
		Order("time_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *availabilityRepository) FindClosed(ctx context.Context, db *gorm.DB, filter entity.AvailabilityFilter) ([]entity.AvailabilityDate, error) {
	query := db.WithContext(ctx).Where("availability IS NOT TRUE")
	if !filter.From.IsZero() {
		query = query.Where("date >= ?", entity.DateOf(filter.From))
	}
	if !filter.To.IsZero() {
		query = query.Where("date <= ?", entity.DateOf(filter.To))
	}

	var rows []entity.AvailabilityDate
	if err := query.Order("date ASC, time_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *availabilityRepository) Delete(ctx context.Context, db *gorm.DB, id int) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.AvailabilityDate{})
	return result.RowsAffected, result.Error
}
