package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrDirtySchema is returned when a previous migration failed half way and the
// version record needs manual repair.
var ErrDirtySchema = errors.New("schema version is dirty")

// SchemaVersion is the state of the schema_migrations version record.
type SchemaVersion struct {
	Version uint
	Dirty   bool
	Applied bool
}

// Migrator applies and reverts the embedded schema migrations.
type Migrator struct {
	m   *migrate.Migrate
	log *logrus.Logger
}

// NewMigrator opens a dedicated connection for databaseURL (pgx5://...).
// Callers must Close it.
func NewMigrator(databaseURL string, log *logrus.Logger) (*Migrator, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	m.Log = &migrateLogger{log: log}

	return &Migrator{m: m, log: log}, nil
}

// Upgrade applies every pending migration. An up-to-date schema is not an error.
func (mg *Migrator) Upgrade() error {
	if err := mg.checkClean(); err != nil {
		return err
	}
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already up to date")
			return nil
		}
		return fmt.Errorf("upgrade schema: %w", err)
	}
	mg.log.Info("Schema upgraded")
	return nil
}

// Downgrade reverts every applied migration, dropping all tables.
func (mg *Migrator) Downgrade() error {
	if err := mg.checkClean(); err != nil {
		return err
	}
	if err := mg.m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already at base version")
			return nil
		}
		return fmt.Errorf("downgrade schema: %w", err)
	}
	mg.log.Info("Schema downgraded")
	return nil
}

func (mg *Migrator) Version() (SchemaVersion, error) {
	version, dirty, err := mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return SchemaVersion{}, nil
		}
		return SchemaVersion{}, fmt.Errorf("read schema version: %w", err)
	}
	return SchemaVersion{Version: version, Dirty: dirty, Applied: true}, nil
}

func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	return errors.Join(sourceErr, dbErr)
}

func (mg *Migrator) checkClean() error {
	v, err := mg.Version()
	if err != nil {
		return err
	}
	if v.Dirty {
		return fmt.Errorf("%w: version %d", ErrDirtySchema, v.Version)
	}
	return nil
}

// migrateLogger adapts logrus to migrate.Logger.
type migrateLogger struct {
	log *logrus.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.log.IsLevelEnabled(logrus.DebugLevel)
}
