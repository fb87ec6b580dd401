package repository

import (
	"context"
	"errors"

	"go-reservation-store/internal/domain/entity"
	domainRepo "go-reservation-store/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type scheduleRepository struct{}

func NewScheduleRepository() domainRepo.ScheduleRepository {
	return &scheduleRepository{}
}

func (r *scheduleRepository) Create(ctx context.Context, db *gorm.DB, schedule *entity.Schedule) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(schedule).Error
}

func (r *scheduleRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Schedule, error) {
	var schedule entity.Schedule
	err := db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

// FindAll supports an optional inclusive date range.
func (r *scheduleRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.ScheduleFilter) ([]entity.Schedule, error) {
	var schedules []entity.Schedule
	query := db.WithContext(ctx)
	if !filter.From.IsZero() {
		query = query.Where(`"time" >= ?`, entity.DateOf(filter.From))
	}
	if !filter.To.IsZero() {
		query = query.Where(`"time" <= ?`, entity.DateOf(filter.To))
	}
	if err := query.Order(`"time" ASC, id ASC`).Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}
