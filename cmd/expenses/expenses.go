package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-tracker/internal/cli"
	"github.com/Veraticus/expense-tracker/internal/common"
	"github.com/Veraticus/expense-tracker/internal/exchange"
	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/storage"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Record a new expense in the ledger.

Examples:
  expenses add --amount 42.50 --category Food --description Lunch
  expenses add --date 2024-03-01 --amount 12,99 --category Transport`,
		Args: cobra.NoArgs,
		RunE: runAdd,
	}

	cmd.Flags().String("date", "", "date of the expense, YYYY-MM-DD (default: today)")
	cmd.Flags().String("amount", "", "amount spent, e.g. 42.50")
	cmd.Flags().String("category", model.DefaultCategory, "category name")
	cmd.Flags().String("description", "", "what the money was spent on")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dateFlag, _ := cmd.Flags().GetString("date")
	amountFlag, _ := cmd.Flags().GetString("amount")
	category, _ := cmd.Flags().GetString("category")
	description, _ := cmd.Flags().GetString("description")

	date := model.TruncateDate(time.Now())
	if dateFlag != "" {
		parsed, err := model.ParseDate(dateFlag)
		if err != nil {
			return common.NewUserError("Invalid date", err)
		}
		date = parsed
	}

	amount, err := model.ParseAmount(amountFlag)
	if err != nil {
		return common.NewUserError("Invalid amount", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	expense := model.Expense{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Description: description,
	}

	id, err := store.AddExpense(ctx, expense)
	if err != nil {
		return explainWriteError(err, category)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
		"Added expense %d: %s %s in %s", id, expense.DateString(), model.DisplayAmount(amount), category,
	)))
	return nil
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an existing expense",
		Long: `Replace fields of an existing expense. Only the flags you pass change.

Example:
  expenses edit 12 --amount 40 --description "Lunch with Sam"`,
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}

	cmd.Flags().String("date", "", "new date, YYYY-MM-DD")
	cmd.Flags().String("amount", "", "new amount")
	cmd.Flags().String("category", "", "new category")
	cmd.Flags().String("description", "", "new description")

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// The id must exist before anything is changed
	expense, err := store.GetExpense(ctx, id)
	if errors.Is(err, storage.ErrExpenseNotFound) {
		return common.NewUserError(fmt.Sprintf("No expense with id %d", id), err)
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("date") {
		value, _ := flags.GetString("date")
		if expense.Date, err = model.ParseDate(value); err != nil {
			return common.NewUserError("Invalid date", err)
		}
	}
	if flags.Changed("amount") {
		value, _ := flags.GetString("amount")
		if expense.Amount, err = model.ParseAmount(value); err != nil {
			return common.NewUserError("Invalid amount", err)
		}
	}
	if flags.Changed("category") {
		expense.Category, _ = flags.GetString("category")
	}
	if flags.Changed("description") {
		expense.Description, _ = flags.GetString("description")
	}

	if err := store.UpdateExpense(ctx, *expense); err != nil {
		return explainWriteError(err, expense.Category)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated expense %d", id)))
	return nil
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	cmd.Flags().BoolP("force", "f", false, "delete without asking")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	force, _ := cmd.Flags().GetBool("force")

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()

	if !force {
		expense, err := store.GetExpense(ctx, id)
		if errors.Is(err, storage.ErrExpenseNotFound) {
			fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("No expense with id %d", id)))
			return nil
		}
		if err != nil {
			return err
		}

		prompter := cli.NewCLIPrompter(cmd.InOrStdin(), out)
		ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete expense %d (%s, %s, %s)?",
			id, expense.DateString(), model.DisplayAmount(expense.Amount), expense.Category))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, cli.FormatInfo("Nothing deleted"))
			return nil
		}
	}

	removed, err := store.DeleteExpense(ctx, id)
	if err != nil {
		return err
	}

	if removed {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted expense %d", id)))
	} else {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("No expense with id %d", id)))
	}
	return nil
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Long: `List expenses matching every given filter, newest first.

Examples:
  expenses list --start 2024-03-01 --end 2024-03-31
  expenses list --category Food --keyword lunch
  expenses list --format csv > march.csv`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	addFilterFlags(cmd, true)
	cmd.Flags().String("format", "table", "output format (table, csv)")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "csv" {
		return common.NewUserError(fmt.Sprintf("Unknown format %q", format), common.ErrInvalidInput)
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	expenses, err := store.ListExpenses(ctx, filter)
	if err != nil {
		return err
	}

	if format == "csv" {
		return exchange.WriteCSV(cmd.OutOrStdout(), expenses)
	}

	if len(expenses) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No expenses match."))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderExpenses(expenses))
	return nil
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show spending per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, end, err := dateRangeFromFlags(cmd)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rows, err := store.SummarizeByCategory(ctx, start, end)
			if err != nil {
				return err
			}

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No expenses in this period."))
				return nil
			}

			total, err := store.Total(ctx, start, end)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Spending by category", cli.RenderSummary(rows, total)))
			return nil
		},
	}

	addFilterFlags(cmd, false)

	return cmd
}

func totalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "total",
		Short: "Show the total spent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, end, err := dateRangeFromFlags(cmd)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			total, err := store.Total(ctx, start, end)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), model.DisplayAmount(total))
			return nil
		},
	}

	addFilterFlags(cmd, false)

	return cmd
}

// explainWriteError turns storage validation failures into user errors.
func explainWriteError(err error, category string) error {
	switch {
	case errors.Is(err, storage.ErrUnknownCategory):
		return common.NewUserError(
			fmt.Sprintf("Unknown category %q (add it with: expenses categories add %q)", category, category), err)
	case errors.Is(err, storage.ErrExpenseNotFound):
		return common.NewUserError("The expense no longer exists", err)
	case errors.Is(err, storage.ErrInvalidExpense):
		return common.NewUserError("Invalid expense", err)
	default:
		return err
	}
}
