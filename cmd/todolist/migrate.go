package main

import (
	"github.com/spf13/cobra"

	"github.com/monocle-dev/todolist/db"
	"github.com/monocle-dev/todolist/internal/config"
	"github.com/monocle-dev/todolist/internal/logger"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)

			if err != nil {
				return err
			}

			l := logger.New(cfg.Log.Level, cfg.Log.Format)

			return db.MigrateDatabase(cmd.Context(), cfg.Database, l)
		},
	}
}
