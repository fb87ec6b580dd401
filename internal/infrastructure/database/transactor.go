package database

import (
	"context"
	"database/sql"

	domainRepo "go-reservation-store/internal/domain/repository"

	"gorm.io/gorm"
)

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor runs transactions at READ COMMITTED. Slot races are settled by
// row locks and unique constraints, not by the isolation level.
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) DB(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}
