package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-tracker/internal/cli"
	"github.com/Veraticus/expense-tracker/internal/common"
	"github.com/Veraticus/expense-tracker/internal/storage"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot and restore the ledger",
		Long: `Create, list, restore and delete snapshots of the ledger database.

Snapshots are kept in a backups directory next to the ledger. Imports take
an automatic snapshot first; only the most recent automatic snapshots are
kept.`,
		Example: `  # Snapshot before a big cleanup
  expenses backup create --tag before-cleanup

  # Undo it
  expenses backup restore before-cleanup`,
	}

	cmd.AddCommand(backupCreateCmd())
	cmd.AddCommand(backupListCmd())
	cmd.AddCommand(backupRestoreCmd())
	cmd.AddCommand(backupDeleteCmd())

	return cmd
}

func backupCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tag, _ := cmd.Flags().GetString("tag")
			description, _ := cmd.Flags().GetString("description")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			manager, err := store.Backups()
			if err != nil {
				return err
			}

			info, err := manager.Create(ctx, tag, description)
			if err != nil {
				return explainBackupError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created backup %s (%s, %d expenses)",
				info.ID, humanize.Bytes(uint64(info.FileSize)), info.Expenses))) //nolint:gosec // sizes are never negative
			return nil
		},
	}

	cmd.Flags().StringP("tag", "t", "", "backup name (default: backup-<date>-<time>)")
	cmd.Flags().StringP("description", "d", "", "note stored with the backup")

	return cmd
}

func backupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			manager, err := store.Backups()
			if err != nil {
				return err
			}

			backups, err := manager.List(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No backups yet."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCREATED\tSIZE\tEXPENSES\tTYPE\tDESCRIPTION")
			for _, b := range backups {
				kind := "manual"
				if b.IsAuto {
					kind = "auto"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					b.ID,
					humanize.Time(b.CreatedAt),
					humanize.Bytes(uint64(b.FileSize)), //nolint:gosec // sizes are never negative
					b.Expenses,
					kind,
					b.Description,
				)
			}
			return w.Flush()
		},
	}
}

func backupRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Replace the ledger with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			force, _ := cmd.Flags().GetBool("force")
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			manager, err := store.Backups()
			if err != nil {
				return err
			}

			info, err := manager.Get(ctx, args[0])
			if err != nil {
				return explainBackupError(err)
			}

			if !force {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf(
					"This replaces the current ledger with backup %s from %s (%d expenses).",
					info.ID, info.CreatedAt.Format("2006-01-02 15:04"), info.Expenses)))
				ok, err := cli.NewCLIPrompter(cmd.InOrStdin(), out).Confirm(ctx, "Continue?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Restore canceled"))
					return nil
				}
			}

			if err := manager.Restore(ctx, info.ID); err != nil {
				return explainBackupError(err)
			}

			fmt.Fprintln(out, cli.FormatSuccess("Restored backup "+info.ID))
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "restore without asking")

	return cmd
}

func backupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			manager, err := store.Backups()
			if err != nil {
				return err
			}

			if err := manager.Delete(ctx, args[0]); err != nil {
				return explainBackupError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted backup "+args[0]))
			return nil
		},
	}
}

// autoBackup snapshots the ledger before operation unless disabled with --no-backup.
func autoBackup(cmd *cobra.Command, store *storage.SQLiteStorage, operation string) error {
	if skip, _ := cmd.Flags().GetBool("no-backup"); skip {
		return nil
	}

	manager, err := store.Backups()
	if err != nil {
		return err
	}
	info, err := manager.Auto(cmd.Context(), operation)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatInfo("Saved backup "+info.ID))
	return nil
}

func explainBackupError(err error) error {
	switch {
	case errors.Is(err, storage.ErrBackupNotFound):
		return common.NewUserError("No such backup (see: expenses backup list)", err)
	case errors.Is(err, storage.ErrBackupExists):
		return common.NewUserError("A backup with that name already exists", err)
	case errors.Is(err, storage.ErrInvalidBackupTag):
		return common.NewUserError("Backup names cannot contain path separators", err)
	case errors.Is(err, storage.ErrBackupCorrupted):
		return common.NewUserError("The backup file is damaged; the ledger was left unchanged", err)
	}
	return err
}
