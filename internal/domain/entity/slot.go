package entity

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// SlotState is the derived booking state of a slot
type SlotState string

const (
	SlotClosed    SlotState = "closed"
	SlotAvailable SlotState = "available"
	SlotBooked    SlotState = "booked"
)

// Slot is the bookable unit identified by (date, schedule).
type Slot struct {
	ScheduleID int
	Date       time.Time
}

func NewSlot(scheduleID int, date time.Time) Slot {
	return Slot{ScheduleID: scheduleID, Date: DateOf(date)}
}

func (s Slot) String() string {
	return fmt.Sprintf("%s/%d", s.Date.Format(DateLayout), s.ScheduleID)
}

// DateOf drops the clock part of t, keeping the calendar date as seen in t's
// location, and returns it at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
