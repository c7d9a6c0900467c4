package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daypact/daypact/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply remote store schema migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Remote.DSN == "" {
		return fmt.Errorf("config: remote dsn is not set")
	}
	if err := migrate.Up(cmd.Context(), a.cfg.Remote.DSN); err != nil {
		return err
	}
	a.log.Info("migrations applied")
	return nil
}
