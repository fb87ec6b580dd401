package usecase

import (
	"context"
	"time"

	"go-reservation-store/internal/converter"
	"go-reservation-store/internal/domain/entity"
	"go-reservation-store/internal/domain/repository"
	"go-reservation-store/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Timeout for announcing a committed reservation
const publishTimeout = 5 * time.Second

type ReservationUsecase interface {
	CreateReservation(ctx context.Context, userID, scheduleID int, date time.Time) (int, error)
	GetReservation(ctx context.Context, id int) (*entity.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID int) ([]entity.Reservation, error)
	ListReservationsByDate(ctx context.Context, date time.Time) ([]entity.Reservation, error)
	ReleaseReservation(ctx context.Context, id int) error
}

type reservationUsecase struct {
	tx               repository.Transactor
	log              *logrus.Logger
	userRepo         repository.UserRepository
	scheduleRepo     repository.ScheduleRepository
	availabilityRepo repository.AvailabilityRepository
	reservationRepo  repository.ReservationRepository
	publisher        service.ReservationPublisher
	now              func() time.Time
}

func NewReservationUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	scheduleRepo repository.ScheduleRepository,
	availabilityRepo repository.AvailabilityRepository,
	reservationRepo repository.ReservationRepository,
	publisher service.ReservationPublisher,
) ReservationUsecase {
	if publisher == nil {
		publisher = service.NoopReservationPublisher{}
	}
	return &reservationUsecase{
		tx:               tx,
		log:              log,
		userRepo:         userRepo,
		scheduleRepo:     scheduleRepo,
		availabilityRepo: availabilityRepo,
		reservationRepo:  reservationRepo,
		publisher:        publisher,
		now:              time.Now,
	}
}

// CreateReservation books the slot (date, scheduleID) for userID.
//
// The availability row is locked for the duration of the transaction, so
// concurrent attempts on the same slot are serialized and all but the first
// see it booked. The reservation_slot_key constraint catches anything that
// slips past the lock, e.g. a slot whose availability row was created after
// the competing transaction started.
func (u *reservationUsecase) CreateReservation(ctx context.Context, userID, scheduleID int, date time.Time) (int, error) {
	if date.IsZero() {
		return 0, &ValidationError{Fields: map[string]string{"Date": "Date is required"}}
	}

	reservation := &entity.Reservation{
		Date:   entity.DateOf(date),
		UserID: userID,
		TimeID: scheduleID,
	}
	slot := reservation.Slot()

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		user, err := u.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return &NotFoundError{Entity: "user", ID: userID}
		}

		schedule, err := u.scheduleRepo.FindByID(ctx, tx, scheduleID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return &NotFoundError{Entity: "schedule", ID: scheduleID}
		}

		availability, err := u.availabilityRepo.FindBySlotForUpdate(ctx, tx, scheduleID, reservation.Date)
		if err != nil {
			return err
		}
		if availability == nil || !availability.IsAvailable() {
			return &SlotUnavailableError{ScheduleID: scheduleID, Date: reservation.Date, Reason: SlotReasonNotOpen}
		}

		existing, err := u.reservationRepo.FindBySlot(ctx, tx, scheduleID, reservation.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			return &SlotUnavailableError{ScheduleID: scheduleID, Date: reservation.Date, Reason: SlotReasonBooked}
		}

		if err := u.reservationRepo.Create(ctx, tx, reservation); err != nil {
			switch {
			case isDuplicateKeyError(err, "slot"):
				return &SlotUnavailableError{ScheduleID: scheduleID, Date: reservation.Date, Reason: SlotReasonBooked}
			case isForeignKeyError(err, "user"):
				return &NotFoundError{Entity: "user", ID: userID}
			case isForeignKeyError(err, "time_id"):
				return &NotFoundError{Entity: "schedule", ID: scheduleID}
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			u.log.Warnf("Failed to create reservation for slot %s: %+v", slot, err)
		}
		return 0, err
	}

	u.log.Infof("Reservation created: id=%d, user=%d, slot=%s", reservation.ID, userID, slot)
	u.announce(ctx, reservation)
	return reservation.ID, nil
}

// announce publishes the created event. The reservation is already committed,
// so a broker failure is only logged.
func (u *reservationUsecase) announce(ctx context.Context, reservation *entity.Reservation) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := converter.ReservationToCreatedEvent(reservation, u.now())
	if err := u.publisher.PublishReservationCreated(ctx, event); err != nil {
		u.log.Warnf("Failed to publish reservation %d created event: %+v", reservation.ID, err)
	}
}

func (u *reservationUsecase) GetReservation(ctx context.Context, id int) (*entity.Reservation, error) {
	reservation, err := u.reservationRepo.FindByID(ctx, u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find reservation %d: %+v", id, err)
		return nil, err
	}
	if reservation == nil {
		return nil, &NotFoundError{Entity: "reservation", ID: id}
	}
	return reservation, nil
}

func (u *reservationUsecase) ListReservationsByUser(ctx context.Context, userID int) ([]entity.Reservation, error) {
	db := u.tx.DB(ctx)

	user, err := u.userRepo.FindByID(ctx, db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %d: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user", ID: userID}
	}

	reservations, err := u.reservationRepo.FindByUserID(ctx, db, userID)
	if err != nil {
		u.log.Warnf("Failed to list reservations of user %d: %+v", userID, err)
		return nil, err
	}
	return reservations, nil
}

func (u *reservationUsecase) ListReservationsByDate(ctx context.Context, date time.Time) ([]entity.Reservation, error) {
	reservations, err := u.reservationRepo.FindByDate(ctx, u.tx.DB(ctx), entity.DateOf(date))
	if err != nil {
		u.log.Warnf("Failed to list reservations on %s: %+v", date.Format(entity.DateLayout), err)
		return nil, err
	}
	return reservations, nil
}

// ReleaseReservation cancels a booking and frees its slot. The availability
// flag is left as is, so the slot is immediately bookable again if it was open.
func (u *reservationUsecase) ReleaseReservation(ctx context.Context, id int) error {
	affected, err := u.reservationRepo.Delete(ctx, u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to release reservation %d: %+v", id, err)
		return err
	}
	if affected == 0 {
		return &NotFoundError{Entity: "reservation", ID: id}
	}

	u.log.Infof("Reservation %d released", id)
	return nil
}
