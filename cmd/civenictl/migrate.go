package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civeni/civeni-api/cmd/app"
	"github.com/civeni/civeni-api/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables and the finance_daily view",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, postgresDB, err := app.Setup(configPath)
			if err != nil {
				return err
			}

			if err = db.Migrate(postgresDB); err != nil {
				return fmt.Errorf("db.Migrate -> %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "database migrated")
			return nil
		},
	}
}
