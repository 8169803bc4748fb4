package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/expense-tracker/internal/tui"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse expenses interactively",
		Long: `Open a full-screen browser over the ledger. Search descriptions with /,
cycle categories with c, delete the selected expense with d, quit with q.`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}

	addFilterFlags(cmd, true)

	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return tui.Run(ctx, tui.Config{
		Storage: store,
		Filter:  filter,
	})
}
