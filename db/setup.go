// Package db opens the configured storage backend.
package db

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/monocle-dev/todolist/internal/auth"
	"github.com/monocle-dev/todolist/internal/config"
	"github.com/monocle-dev/todolist/internal/logger"
	"github.com/monocle-dev/todolist/internal/store/mongostore"
	"github.com/monocle-dev/todolist/internal/store/sqlstore"
	"github.com/monocle-dev/todolist/internal/todo"
)

// Backend is everything the application needs from storage.
type Backend interface {
	todo.Store
	auth.UserStore

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Backend = (*sqlstore.Store)(nil)
	_ Backend = (*mongostore.Store)(nil)
)

func ConnectDatabase(ctx context.Context, cfg config.DatabaseConfig, l *log.Logger) (Backend, error) {
	switch cfg.Driver {
	case "mongo", "mongodb":
		s, err := mongostore.Open(ctx, mongostore.Config{URI: cfg.URI, Database: cfg.Name})

		if err != nil {
			return nil, err
		}

		if err := s.Ping(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}

		return s, nil
	case "postgres", "postgresql", "mysql", "sqlite", "sqlite3":
		s, err := sqlstore.Open(sqlstore.Config{
			Driver: cfg.Driver,
			DSN:    cfg.URI,
			Logger: logger.Gorm(l.WithPrefix("gorm")),
		})

		if err != nil {
			return nil, err
		}

		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// MigrateDatabase connects and creates the tables or indexes the stores rely on.
func MigrateDatabase(ctx context.Context, cfg config.DatabaseConfig, l *log.Logger) error {
	backend, err := ConnectDatabase(ctx, cfg, l)

	if err != nil {
		return err
	}

	defer backend.Close(ctx)

	if err := backend.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate %s database: %w", cfg.Driver, err)
	}

	l.Info("database migrated", "driver", cfg.Driver)

	return nil
}
