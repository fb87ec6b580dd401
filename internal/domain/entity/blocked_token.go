package entity

import "time"

// BlockedToken is an entry of the token revocation list. Entries are insert-only
// and stop mattering once Expires has passed.
type BlockedToken struct {
	ID       int        `gorm:"primaryKey;autoIncrement" json:"id"`
	JTI      string     `gorm:"column:jti;type:varchar(100);unique" json:"jti"`
	DateTime time.Time  `gorm:"column:date_time" json:"date_time"`
	Expires  *time.Time `gorm:"column:expires" json:"expires,omitempty"`
}

func (BlockedToken) TableName() string {
	return "blocked_token_list"
}

// IsExpired reports whether the block is moot at now. Entries without an
// expiry never expire.
func (b *BlockedToken) IsExpired(now time.Time) bool {
	return b.Expires != nil && !b.Expires.After(now)
}
