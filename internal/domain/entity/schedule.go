package entity

import "time"

// Schedule is an offered day. Time holds a calendar date only, so there is at
// most one slot per schedule per date.
type Schedule struct {
	ID   int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Time time.Time `gorm:"column:time;type:date;not null" json:"time"`

	// Relationships
	AvailabilityDates []AvailabilityDate `gorm:"foreignKey:TimeID" json:"availability_dates,omitempty"`
	Reservations      []Reservation      `gorm:"foreignKey:TimeID" json:"reservations,omitempty"`
}

func (Schedule) TableName() string {
	return "schedules"
}

// ScheduleFilter is a domain-level filter for querying schedules.
// Zero times leave that side of the range open.
type ScheduleFilter struct {
	From time.Time
	To   time.Time
}
