// Package sqlstore keeps users, lists and tasks in a relational database
// through gorm. Tasks are rows referencing their list; the list's task order
// is the tasks' insertion order.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/monocle-dev/todolist/internal/store"
)

type Config struct {
	Driver string // "postgres", "mysql" or "sqlite"
	DSN    string
	Logger gormlogger.Interface
}

type Store struct {
	db *gorm.DB
}

// New wraps an already opened gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func Open(cfg Config) (*Store, error) {
	dialector, err := dialectorFor(cfg.Driver, cfg.DSN)

	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{TranslateError: true}

	if cfg.Logger != nil {
		gormCfg.Logger = cfg.Logger
	}

	db, err := gorm.Open(dialector, gormCfg)

	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	return New(db), nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		parsed, err := mysqldriver.ParseDSN(dsn)

		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}

		// time.Time columns need parseTime.
		parsed.ParseTime = true

		return mysql.Open(parsed.FormatDSN()), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(sqliteDSN(dsn)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}

	sep := "?"

	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Migrate creates or updates the users, lists and tasks tables.
func (s *Store) Migrate(ctx context.Context) error {
	records := []interface{}{
		&userRecord{},
		&listRecord{},
		&taskRecord{},
	}

	db := s.db.WithContext(ctx)

	for _, record := range records {
		if err := db.AutoMigrate(record); err != nil {
			return fmt.Errorf("migrate %T: %w", record, err)
		}
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()

	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()

	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// translate maps gorm errors onto the store sentinels. The message checks
// cover drivers whose errors gorm does not translate.
func translate(op, table string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.Wrap(op, table, store.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.Wrap(op, table, store.ErrDuplicate)
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry") {
		return store.Wrap(op, table, fmt.Errorf("%w: %v", store.ErrDuplicate, err))
	}

	return store.Wrap(op, table, err)
}
