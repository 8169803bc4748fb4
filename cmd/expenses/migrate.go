package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-tracker/internal/cli"
	"github.com/Veraticus/expense-tracker/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the ledger schema",
		Long: `Bring the ledger database up to the current schema and seed the default
categories into an empty category table. Every other command does this
automatically; use --status to check the schema version without changing it.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "show the schema version without migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	dbPath := settings().DatabasePath

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer func() { _ = store.Close() }()

	before, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status, _ := cmd.Flags().GetBool("status"); status {
		fmt.Fprintf(out, "Ledger: %s\n", dbPath)
		fmt.Fprintf(out, "Schema version: %d (current: %d)\n", before, storage.ExpectedSchemaVersion)
		if before < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, cli.FormatWarning("Run 'expenses migrate' to upgrade"))
		}
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	seeded, err := store.SeedDefaultCategories(ctx)
	if err != nil {
		return err
	}
	slog.Debug("Migration finished", "from", before, "to", storage.ExpectedSchemaVersion, "seeded", seeded)

	if before == storage.ExpectedSchemaVersion {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Ledger is up to date (schema version %d)", before)))
	} else {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Migrated ledger from schema version %d to %d", before, storage.ExpectedSchemaVersion)))
	}
	if seeded {
		fmt.Fprintln(out, cli.FormatInfo("Added the default categories"))
	}
	return nil
}
