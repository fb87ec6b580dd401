package usecase

import (
	"context"
	"fmt"
	"time"

	"go-reservation-store/internal/domain/entity"
	"go-reservation-store/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SlotAvailability is one entry of a bulk availability change.
type SlotAvailability struct {
	ScheduleID int
	Date       time.Time
	Available  bool
}

type ScheduleUsecase interface {
	CreateSchedule(ctx context.Context, date time.Time) (int, error)
	GetSchedule(ctx context.Context, id int) (*entity.Schedule, error)
	ListSchedules(ctx context.Context, filter entity.ScheduleFilter) ([]entity.Schedule, error)
	SetAvailability(ctx context.Context, scheduleID int, date time.Time, available bool) (*entity.AvailabilityDate, error)
	SetAvailabilityBulk(ctx context.Context, slots []SlotAvailability) ([]entity.AvailabilityDate, error)
	DeleteAvailability(ctx context.Context, id int) error
	ListAvailability(ctx context.Context, scheduleID int) ([]entity.AvailabilityDate, error)
	ListAvailabilityByDate(ctx context.Context, date time.Time) ([]entity.AvailabilityDate, error)
	ListClosedSlots(ctx context.Context, filter entity.AvailabilityFilter) ([]entity.AvailabilityDate, error)
	SlotState(ctx context.Context, scheduleID int, date time.Time) (entity.SlotState, error)
}

type scheduleUsecase struct {
	tx               repository.Transactor
	log              *logrus.Logger
	scheduleRepo     repository.ScheduleRepository
	availabilityRepo repository.AvailabilityRepository
	reservationRepo  repository.ReservationRepository
}

func NewScheduleUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	scheduleRepo repository.ScheduleRepository,
	availabilityRepo repository.AvailabilityRepository,
	reservationRepo repository.ReservationRepository,
) ScheduleUsecase {
	return &scheduleUsecase{
		tx:               tx,
		log:              log,
		scheduleRepo:     scheduleRepo,
		availabilityRepo: availabilityRepo,
		reservationRepo:  reservationRepo,
	}
}

// CreateSchedule stores an offered day. Schedules are not unique per date;
// callers that need one schedule per day must check ListSchedules first.
func (u *scheduleUsecase) CreateSchedule(ctx context.Context, date time.Time) (int, error) {
	if date.IsZero() {
		return 0, &ValidationError{Fields: map[string]string{"Time": "Time is required"}}
	}

	schedule := &entity.Schedule{Time: entity.DateOf(date)}
	if err := u.scheduleRepo.Create(ctx, u.tx.DB(ctx), schedule); err != nil {
		u.log.Warnf("Failed to create schedule for %s: %+v", schedule.Time.Format(entity.DateLayout), err)
		return 0, fmt.Errorf("create schedule: %w", err)
	}

	u.log.Infof("Schedule created: id=%d, time=%s", schedule.ID, schedule.Time.Format(entity.DateLayout))
	return schedule.ID, nil
}

func (u *scheduleUsecase) GetSchedule(ctx context.Context, id int) (*entity.Schedule, error) {
	schedule, err := u.scheduleRepo.FindByID(ctx, u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find schedule %d: %+v", id, err)
		return nil, err
	}
	if schedule == nil {
		return nil, &NotFoundError{Entity: "schedule", ID: id}
	}
	return schedule, nil
}

func (u *scheduleUsecase) ListSchedules(ctx context.Context, filter entity.ScheduleFilter) ([]entity.Schedule, error) {
	schedules, err := u.scheduleRepo.FindAll(ctx, u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list schedules: %+v", err)
		return nil, err
	}
	return schedules, nil
}

// SetAvailability opens or closes the slot (date, scheduleID), creating the
// availability row on first use.
func (u *scheduleUsecase) SetAvailability(ctx context.Context, scheduleID int, date time.Time, available bool) (*entity.AvailabilityDate, error) {
	if date.IsZero() {
		return nil, &ValidationError{Fields: map[string]string{"Date": "Date is required"}}
	}

	availability := &entity.AvailabilityDate{
		Date:         entity.DateOf(date),
		TimeID:       scheduleID,
		Availability: &available,
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		schedule, err := u.scheduleRepo.FindByID(ctx, tx, scheduleID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return &NotFoundError{Entity: "schedule", ID: scheduleID}
		}

		if err := u.availabilityRepo.Upsert(ctx, tx, availability); err != nil {
			if isForeignKeyError(err, "time_id") {
				return &NotFoundError{Entity: "schedule", ID: scheduleID}
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			u.log.Warnf("Failed to set availability for slot %s: %+v", entity.NewSlot(scheduleID, date), err)
		}
		return nil, err
	}

	u.log.Infof("Availability set: slot=%s, available=%t", availability.Slot(), available)
	return availability, nil
}

// SetAvailabilityBulk applies every change in one transaction. An unknown
// schedule anywhere in the batch leaves all slots untouched.
func (u *scheduleUsecase) SetAvailabilityBulk(ctx context.Context, slots []SlotAvailability) ([]entity.AvailabilityDate, error) {
	if len(slots) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"Slots": "Slots is required"}}
	}
	for i, slot := range slots {
		if slot.Date.IsZero() {
			field := fmt.Sprintf("Slots[%d].Date", i)
			return nil, &ValidationError{Fields: map[string]string{field: field + " is required"}}
		}
	}

	rows := make([]entity.AvailabilityDate, 0, len(slots))
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		checked := make(map[int]bool)
		for _, slot := range slots {
			if checked[slot.ScheduleID] {
				continue
			}
			schedule, err := u.scheduleRepo.FindByID(ctx, tx, slot.ScheduleID)
			if err != nil {
				return err
			}
			if schedule == nil {
				return &NotFoundError{Entity: "schedule", ID: slot.ScheduleID}
			}
			checked[slot.ScheduleID] = true
		}

		for _, slot := range slots {
			available := slot.Available
			availability := entity.AvailabilityDate{
				Date:         entity.DateOf(slot.Date),
				TimeID:       slot.ScheduleID,
				Availability: &available,
			}
			if err := u.availabilityRepo.Upsert(ctx, tx, &availability); err != nil {
				if isForeignKeyError(err, "time_id") {
					return &NotFoundError{Entity: "schedule", ID: slot.ScheduleID}
				}
				return err
			}
			rows = append(rows, availability)
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			u.log.Warnf("Failed to set availability for %d slots: %+v", len(slots), err)
		}
		return nil, err
	}

	u.log.Infof("Availability set for %d slots", len(rows))
	return rows, nil
}

func (u *scheduleUsecase) DeleteAvailability(ctx context.Context, id int) error {
	affected, err := u.availabilityRepo.Delete(ctx, u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to delete availability %d: %+v", id, err)
		return err
	}
	if affected == 0 {
		return &NotFoundError{Entity: "availability", ID: id}
	}

	u.log.Infof("Availability deleted: id=%d", id)
	return nil
}

func (u *scheduleUsecase) ListAvailability(ctx context.Context, scheduleID int) ([]entity.AvailabilityDate, error) {
	if _, err := u.GetSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}

	rows, err := u.availabilityRepo.FindByScheduleID(ctx, u.tx.DB(ctx), scheduleID)
	if err != nil {
		u.log.Warnf("Failed to list availability for schedule %d: %+v", scheduleID, err)
		return nil, err
	}
	return rows, nil
}

// ListAvailabilityByDate returns every availability row on date, one per
// schedule that has one.
func (u *scheduleUsecase) ListAvailabilityByDate(ctx context.Context, date time.Time) ([]entity.AvailabilityDate, error) {
	if date.IsZero() {
		return nil, &ValidationError{Fields: map[string]string{"Date": "Date is required"}}
	}

	rows, err := u.availabilityRepo.FindByDate(ctx, u.tx.DB(ctx), date)
	if err != nil {
		u.log.Warnf("Failed to list availability on %s: %+v", entity.DateOf(date).Format(entity.DateLayout), err)
		return nil, err
	}
	return rows, nil
}

// ListClosedSlots returns the slots explicitly closed, including rows with a
// NULL flag. Slots that never got a row are closed too but are not listed.
func (u *scheduleUsecase) ListClosedSlots(ctx context.Context, filter entity.AvailabilityFilter) ([]entity.AvailabilityDate, error) {
	rows, err := u.availabilityRepo.FindClosed(ctx, u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list closed slots: %+v", err)
		return nil, err
	}
	return rows, nil
}

// SlotState derives the slot state: booked wins over the availability flag,
// and a slot without an availability row is closed.
func (u *scheduleUsecase) SlotState(ctx context.Context, scheduleID int, date time.Time) (entity.SlotState, error) {
	db := u.tx.DB(ctx)

	reservation, err := u.reservationRepo.FindBySlot(ctx, db, scheduleID, date)
	if err != nil {
		u.log.Warnf("Failed to find reservation for slot %s: %+v", entity.NewSlot(scheduleID, date), err)
		return "", err
	}
	if reservation != nil {
		return entity.SlotBooked, nil
	}

	availability, err := u.availabilityRepo.FindBySlot(ctx, db, scheduleID, date)
	if err != nil {
		u.log.Warnf("Failed to find availability for slot %s: %+v", entity.NewSlot(scheduleID, date), err)
		return "", err
	}
	if availability == nil || !availability.IsAvailable() {
		return entity.SlotClosed, nil
	}
	return entity.SlotAvailable, nil
}
