package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "todolist",
		Short: "Multi-user to-do list web app",
		Long: `A server-rendered to-do list application.

Each user owns any number of named lists, starting with "Main". Users sign in
with a username and password or with their Google account.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a .toml or .yaml config file (default $CONFIG_FILE)")

	cmd.AddCommand(newServeCommand(&configPath))
	cmd.AddCommand(newMigrateCommand(&configPath))
	cmd.AddCommand(newVersionCommand())

	return cmd
}
