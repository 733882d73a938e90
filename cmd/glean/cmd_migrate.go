package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gleanhq/glean-engine/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := database.MigrateURL(a.cfg.Database.URL(), a.cfg.Database.MigrationsPath, a.logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
	return nil
}
