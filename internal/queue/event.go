// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationCreatedQueue is the default durable queue for ReservationCreatedEvent.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published after a reservation commits. It carries
// enough for consumers to notify the user without reading the store.
type ReservationCreatedEvent struct {
	ReservationID int    `json:"reservation_id"`
	UserID        int    `json:"user_id"`
	ScheduleID    int    `json:"schedule_id"`
	Date          string `json:"date"`
	CreatedAt     string `json:"created_at"`
}
