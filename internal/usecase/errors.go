package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-reservation-store/internal/domain/entity"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrValidation      = errors.New("validation failed")
)

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError reports a unique constraint violation.
type ConflictError struct {
	Entity string
	Field  string
	Value  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Reasons a slot cannot be booked
const (
	SlotReasonNotOpen = "slot is not open for booking"
	SlotReasonBooked  = "slot is already booked"
)

// SlotUnavailableError reports a reservation attempt on a closed or already
// booked slot, including a lost race for the last free one.
type SlotUnavailableError struct {
	ScheduleID int
	Date       time.Time
	Reason     string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %s unavailable: %s", entity.NewSlot(e.ScheduleID, e.Date), e.Reason)
}

func (e *SlotUnavailableError) Is(target error) bool {
	return target == ErrSlotUnavailable
}

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// isDomainError reports whether err is one of the typed outcomes above, as
// opposed to an infrastructure failure worth logging.
func isDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrValidation)
}
