package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-tracker/internal/cli"
	"github.com/Veraticus/expense-tracker/internal/common"
	"github.com/Veraticus/expense-tracker/internal/config"
	"github.com/Veraticus/expense-tracker/internal/exchange"
	"github.com/Veraticus/expense-tracker/internal/ofx"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write expenses to a CSV file",
		Long: `Write the expenses matching the filters to a CSV file with the columns
id,date,amount,category,description. By default the file is
expenses_export.csv next to the ledger.`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	addFilterFlags(cmd, true)
	cmd.Flags().StringP("output", "o", "", "file to write (default: expenses_export.csv next to the ledger)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = settings().ExportPath
	}
	output = config.ExpandPath(output)

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	expenses, err := store.ListExpenses(ctx, filter)
	if err != nil {
		return err
	}

	f, err := os.Create(output) //nolint:gosec // user-chosen output path
	if err != nil {
		return common.NewUserError("Cannot create export file", err)
	}

	if err := exchange.WriteCSV(f, expenses); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	slog.Debug("Exported expenses", "path", output, "count", len(expenses))
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d expenses to %s", len(expenses), output)))
	return nil
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import expenses from files",
	}

	cmd.PersistentFlags().Bool("no-backup", false, "skip the automatic backup taken before importing")

	cmd.AddCommand(importCSVCmd())
	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "csv [file]",
		Short: "Import expenses from a CSV file",
		Long: `Import expenses from a CSV file with a header row naming the columns
date, amount, category and description. Other columns, such as id, are
ignored. A blank category becomes the configured default (Other).
Rows with a bad date or amount are skipped.

By default the file is expenses_import.csv next to the ledger.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runImportCSV,
	}
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	cfg := settings()

	path := cfg.ImportPath
	if len(args) == 1 {
		path = config.ExpandPath(args[0])
	}

	f, err := os.Open(path) //nolint:gosec // user-chosen import path
	if err != nil {
		return common.NewUserError("Cannot open import file", err)
	}
	defer func() { _ = f.Close() }()

	ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context(), "Import", true)

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := autoBackup(cmd, store, "import"); err != nil {
		return err
	}

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), -1, "Importing "+path)
	result, err := exchange.ImportCSV(ctx, f, store, exchange.ImportOptions{
		Progress:        bar,
		DefaultCategory: cfg.DefaultCategory,
	})
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("import stopped after %d expenses: %w", result.Imported, err)
	}

	printImportResult(cmd, result)
	return nil
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx <file>...",
		Short: "Import debits from OFX/QFX bank statements",
		Long: `Import the debit transactions of OFX or QFX statements exported from
your bank as expenses. Credits such as deposits and refunds are skipped.

Examples:
  expenses import ofx ~/Downloads/checking_2024_03.qfx
  expenses import ofx --category Shopping ~/Downloads/card_*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().String("category", "", "category for imported expenses (default: import.default_category)")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	cfg := settings()

	category, _ := cmd.Flags().GetString("category")
	if strings.TrimSpace(category) == "" {
		category = cfg.DefaultCategory
	}
	parser := ofx.NewParser(category)

	ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context(), "Import", true)

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := autoBackup(cmd, store, "import"); err != nil {
		return err
	}

	var total exchange.ImportResult
	for _, path := range args {
		content, err := os.ReadFile(config.ExpandPath(path)) //nolint:gosec // user-chosen import path
		if err != nil {
			return common.NewUserError("Cannot open import file", err)
		}

		accounts, err := parser.GetAccounts(ctx, bytes.NewReader(content))
		if err != nil {
			return common.NewUserError("Cannot read "+path, err)
		}

		expenses, err := parser.ParseFile(ctx, bytes.NewReader(content))
		if err != nil {
			return common.NewUserError("Cannot read "+path, err)
		}
		slog.Info("Read statement", "file", path, "accounts", accounts, "debits", len(expenses))

		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(expenses), "Importing "+path)
		result, err := exchange.ImportExpenses(ctx, store, expenses, exchange.ImportOptions{
			Progress:        bar,
			DefaultCategory: category,
		})
		_ = bar.Finish()
		total.Imported += result.Imported
		total.Skipped += result.Skipped
		if err != nil {
			return fmt.Errorf("import stopped after %d expenses: %w", total.Imported, err)
		}
	}

	printImportResult(cmd, total)
	return nil
}

func printImportResult(cmd *cobra.Command, result exchange.ImportResult) {
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d expenses", result.Imported)))
	if result.Skipped > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("Skipped %d rows that could not be read", result.Skipped)))
	}
}
