package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands out database handles to use cases. Repositories never open
// transactions themselves; they run on whatever handle they are given.
type Transactor interface {
	// DB returns a non-transactional handle bound to ctx.
	DB(ctx context.Context) *gorm.DB
	// WithinTransaction runs fn in a single transaction. A non-nil error from
	// fn rolls everything back.
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
