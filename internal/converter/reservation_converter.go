package converter

import (
	"time"

	"go-reservation-store/internal/domain/entity"
	"go-reservation-store/internal/queue"
)

// ReservationToCreatedEvent converts a committed Reservation to its broker payload
func ReservationToCreatedEvent(reservation *entity.Reservation, createdAt time.Time) *queue.ReservationCreatedEvent {
	if reservation == nil {
		return nil
	}

	return &queue.ReservationCreatedEvent{
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		ScheduleID:    reservation.TimeID,
		Date:          reservation.Date.Format(entity.DateLayout),
		CreatedAt:     createdAt.UTC().Format(time.RFC3339),
	}
}
