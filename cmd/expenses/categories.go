package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-tracker/internal/cli"
	"github.com/Veraticus/expense-tracker/internal/command"
	"github.com/Veraticus/expense-tracker/internal/common"
	"github.com/Veraticus/expense-tracker/internal/service"
	"github.com/Veraticus/expense-tracker/internal/storage"
	"github.com/Veraticus/expense-tracker/internal/tui/themes"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "List and manage categories",
		Args:    cobra.NoArgs,
		RunE:    runCategoriesList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeCategoryCommand(cmd, command.Command{Verb: command.VerbAdd, Name: args[0]})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a category and move its expenses",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeCategoryCommand(cmd, command.Command{Verb: command.VerbRename, Name: args[0], NewName: args[1]})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category with no expenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeCategoryCommand(cmd, command.Command{Verb: command.VerbDelete, Name: args[0]})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "exec <command>",
		Short: "Run a category command",
		Long: `Run one category command written as a single line:

  ` + command.Usage + `

Example:
  expenses categories exec "rename Eating out -> Food"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			msg, err := command.Run(cmd.Context(), store, strings.Join(args, " "))
			if err != nil {
				return explainCategoryError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "manage",
		Short: "Manage categories interactively",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesManage,
	})

	return cmd
}

func runCategoriesList(cmd *cobra.Command, _ []string) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return printCategories(cmd, store)
}

func printCategories(cmd *cobra.Command, store service.CategoryStore) error {
	categories, err := store.GetCategories(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(categories) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No categories yet."))
		return nil
	}
	for _, name := range categories {
		fmt.Fprintf(out, "%s %s\n", themes.GetCategoryIcon(name), name)
	}
	return nil
}

func executeCategoryCommand(cmd *cobra.Command, c command.Command) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	msg, err := command.Execute(cmd.Context(), store, c)
	if err != nil {
		return explainCategoryError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
	return nil
}

func runCategoriesManage(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	prompter := cli.NewCLIPrompter(cmd.InOrStdin(), out)

	fmt.Fprintln(out, cli.FormatTitle("Categories"))
	if err := printCategories(cmd, store); err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatInfo("Commands: "+command.Usage+" | list | quit"))

	for {
		line, err := prompter.Prompt(ctx, "category>")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, cli.ErrInputTerminated) {
				return nil
			}
			return err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "list", "ls":
			if err := printCategories(cmd, store); err != nil {
				return err
			}
			continue
		}

		msg, err := command.Run(ctx, store, line)
		if err != nil {
			if !isRecoverableCategoryError(err) {
				return err
			}
			fmt.Fprintln(out, cli.FormatError(common.UserMessage(explainCategoryError(err))))
			continue
		}
		fmt.Fprintln(out, cli.FormatSuccess(msg))
	}
}

func isRecoverableCategoryError(err error) bool {
	return errors.Is(err, command.ErrUnrecognizedCommand) ||
		errors.Is(err, command.ErrMissingOperand) ||
		errors.Is(err, command.ErrCategoryInUse) ||
		errors.Is(err, storage.ErrDuplicateCategory) ||
		errors.Is(err, storage.ErrInvalidCategory)
}

func explainCategoryError(err error) error {
	switch {
	case errors.Is(err, command.ErrUnrecognizedCommand), errors.Is(err, command.ErrMissingOperand):
		return common.NewUserError("Try: "+command.Usage, err)
	case errors.Is(err, command.ErrCategoryInUse):
		return common.NewUserError("Move or delete its expenses first", err)
	case errors.Is(err, storage.ErrDuplicateCategory):
		return common.NewUserError("A category with that name already exists", err)
	case errors.Is(err, storage.ErrInvalidCategory):
		return common.NewUserError("Category names cannot be blank", err)
	}
	return err
}
