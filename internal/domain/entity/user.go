package entity

// User is a registered account. Reservations hang off it; deactivation is a
// soft delete through IsActive.
type User struct {
	ID          int     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID      int     `gorm:"not null" json:"role_id"`
	Username    string  `gorm:"type:varchar(50);not null" json:"username"`
	Name        string  `gorm:"type:varchar(25);not null" json:"name"`
	Lastname    string  `gorm:"type:varchar(25);not null" json:"lastname"`
	DNI         string  `gorm:"column:dni;type:varchar(15);unique;not null" json:"dni"`
	Email       string  `gorm:"type:varchar(250);unique;not null" json:"email"`
	Phone       string  `gorm:"type:varchar(10);not null" json:"phone"`
	Password    string  `gorm:"type:varchar(150);not null" json:"-"`
	VirtualLink *string `gorm:"type:varchar(250)" json:"virtual_link,omitempty"`
	IsActive    *bool   `gorm:"column:is_active" json:"is_active"`

	// Relationships
	Role         Role          `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Reservations []Reservation `gorm:"foreignKey:UserID" json:"reservations,omitempty"`
}

func (User) TableName() string {
	return "user"
}

// Active reports whether the account is usable. A NULL flag counts as inactive.
func (u *User) Active() bool {
	return u.IsActive != nil && *u.IsActive
}

// Activate marks the account as active
func (u *User) Activate() {
	active := true
	u.IsActive = &active
}

// Deactivate soft-deletes the account
func (u *User) Deactivate() {
	active := false
	u.IsActive = &active
}

// UserFilter narrows user listings.
type UserFilter struct {
	RoleID     int // 0 means any role
	ActiveOnly bool
}
