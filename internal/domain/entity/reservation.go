package entity

import "time"

// Reservation books the slot (Date, TimeID) for a user.
type Reservation struct {
	ID     int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Date   time.Time `gorm:"type:date;not null" json:"date"`
	UserID int       `gorm:"not null" json:"user_id"`
	TimeID int       `gorm:"column:time_id;not null" json:"time_id"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Schedule Schedule `gorm:"foreignKey:TimeID" json:"schedule,omitempty"`
}

func (Reservation) TableName() string {
	return "reservation"
}

func (r *Reservation) Slot() Slot {
	return NewSlot(r.TimeID, r.Date)
}
