package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/expense-tracker/internal/common"
	"github.com/Veraticus/expense-tracker/internal/config"
	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/service"
	"github.com/Veraticus/expense-tracker/internal/storage"
)

// settings returns the resolved configuration.
func settings() config.Settings {
	return config.Resolve(viper.GetViper())
}

// initStorage opens the ledger, migrating and seeding it as needed.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.Open(ctx, settings().DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return store, nil
}

// parseID reads a positive expense id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("Invalid expense id %q", arg), common.ErrInvalidInput)
	}
	return id, nil
}

// addFilterFlags registers the listing filter flags on cmd.
func addFilterFlags(cmd *cobra.Command, withCategory bool) {
	cmd.Flags().String("start", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "last date to include (YYYY-MM-DD)")
	if withCategory {
		cmd.Flags().String("category", model.AllCategories, "only this category")
		cmd.Flags().String("keyword", "", "case-insensitive text in the description")
	}
}

// filterFromFlags builds an expense filter from the flags added by addFilterFlags.
func filterFromFlags(cmd *cobra.Command) (service.ExpenseFilter, error) {
	var filter service.ExpenseFilter

	start, end, err := dateRangeFromFlags(cmd)
	if err != nil {
		return filter, err
	}
	filter.StartDate = start
	filter.EndDate = end

	if cmd.Flags().Lookup("category") != nil {
		filter.Category, _ = cmd.Flags().GetString("category")
		filter.Keyword, _ = cmd.Flags().GetString("keyword")
	}

	return filter, nil
}

func dateRangeFromFlags(cmd *cobra.Command) (start, end *time.Time, err error) {
	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")

	start, err = model.ParseOptionalDate(startFlag)
	if err != nil {
		return nil, nil, common.NewUserError("Invalid start date", err)
	}
	end, err = model.ParseOptionalDate(endFlag)
	if err != nil {
		return nil, nil, common.NewUserError("Invalid end date", err)
	}
	return start, end, nil
}
