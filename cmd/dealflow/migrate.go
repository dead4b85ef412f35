package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dealflow/internal/cli"
	"github.com/Veraticus/dealflow/internal/config"
	"github.com/Veraticus/dealflow/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the tables and indexes
needed to record runs, deals and rejections.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")
	dbPath := config.DatabasePath()
	out := cmd.OutOrStdout()

	slog.Info("Starting database migration",
		"database", dbPath,
		"status_only", status)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStorage(store)

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		body := fmt.Sprintf("Database: %s\nCurrent version: %d\nLatest version: %d",
			dbPath, current, storage.ExpectedSchemaVersion)
		fmt.Fprintln(out, cli.RenderBox(cli.ChartIcon+" Database Migration Status", body))
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s Database at schema version %d", cli.FolderIcon, storage.ExpectedSchemaVersion)))
	return nil
}
