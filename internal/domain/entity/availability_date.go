package entity

import "time"

// AvailabilityDate opens or closes the slot (Date, TimeID) for booking.
type AvailabilityDate struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Date         time.Time `gorm:"type:date;not null" json:"date"`
	TimeID       int       `gorm:"column:time_id;not null" json:"time_id"`
	Availability *bool     `gorm:"column:availability" json:"availability"`

	// Relationships
	Schedule Schedule `gorm:"foreignKey:TimeID" json:"schedule,omitempty"`
}

func (AvailabilityDate) TableName() string {
	return "availability_dates"
}

// IsAvailable treats a NULL flag as closed.
func (a *AvailabilityDate) IsAvailable() bool {
	return a.Availability != nil && *a.Availability
}

func (a *AvailabilityDate) Slot() Slot {
	return NewSlot(a.TimeID, a.Date)
}

// AvailabilityFilter bounds availability rows by date. Zero times leave that
// side of the range open.
type AvailabilityFilter struct {
	From time.Time
	To   time.Time
}
