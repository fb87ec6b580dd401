package entity

// Role represents a user role in the system
type Role struct {
	ID   int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "role"
}

// Default role names seeded on setup
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultRoles lists the roles every installation starts with.
var DefaultRoles = []string{RoleAdmin, RoleUser}
