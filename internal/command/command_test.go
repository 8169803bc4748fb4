package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-tracker/internal/storage"
	"github.com/Veraticus/expense-tracker/internal/testutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr error
	}{
		{name: "add", input: "add Travel", want: Command{Verb: VerbAdd, Name: "Travel"}},
		{name: "add keeps inner spaces", input: "  ADD   Home Office  ", want: Command{Verb: VerbAdd, Name: "Home Office"}},
		{name: "rename", input: "rename Shopping -> Retail", want: Command{Verb: VerbRename, Name: "Shopping", NewName: "Retail"}},
		{name: "rename without spaces", input: "Rename Shopping->Retail", want: Command{Verb: VerbRename, Name: "Shopping", NewName: "Retail"}},
		{name: "rename splits on first arrow", input: "rename A -> B -> C", want: Command{Verb: VerbRename, Name: "A", NewName: "B -> C"}},
		{name: "delete", input: "delete Other", want: Command{Verb: VerbDelete, Name: "Other"}},
		{name: "rename without arrow", input: "rename Shopping Retail", wantErr: ErrUnrecognizedCommand},
		{name: "rename missing new name", input: "rename Shopping ->", wantErr: ErrMissingOperand},
		{name: "rename missing old name", input: "rename -> Retail", wantErr: ErrMissingOperand},
		{name: "bare verb", input: "add", wantErr: ErrUnrecognizedCommand},
		{name: "unknown verb", input: "remove Food", wantErr: ErrUnrecognizedCommand},
		{name: "empty", input: "   ", wantErr: ErrUnrecognizedCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "rename A -> B", Command{Verb: VerbRename, Name: "A", NewName: "B"}.String())
	assert.Equal(t, "add Travel", Command{Verb: VerbAdd, Name: "Travel"}.String())
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	db.MustAddExpense("2024-01-05", "80", "Shopping", "Shoes")

	msg, err := Run(ctx, db.Storage, "add Travel")
	require.NoError(t, err)
	assert.Contains(t, msg, "Travel")

	exists, err := db.Storage.CategoryExists(ctx, "Travel")
	require.NoError(t, err)
	assert.True(t, exists)

	msg, err = Run(ctx, db.Storage, "rename Shopping -> Retail")
	require.NoError(t, err)
	assert.Equal(t, `Renamed "Shopping" to "Retail"`, msg)
	assert.Equal(t, "Retail", db.MustListExpenses()[0].Category)

	msg, err = Run(ctx, db.Storage, "rename Missing -> Other Name")
	require.NoError(t, err)
	assert.Equal(t, `No category named "Missing"`, msg)

	_, err = Run(ctx, db.Storage, "rename Retail -> Food")
	assert.ErrorIs(t, err, storage.ErrDuplicateCategory)

	_, err = Run(ctx, db.Storage, "delete Retail")
	assert.ErrorIs(t, err, ErrCategoryInUse)
	assert.EqualError(t, ErrCategoryInUse, "cannot delete a category that has expenses")

	msg, err = Run(ctx, db.Storage, "delete Travel")
	require.NoError(t, err)
	assert.Equal(t, `Deleted category "Travel"`, msg)

	_, err = Run(ctx, db.Storage, "purge everything")
	assert.ErrorIs(t, err, ErrUnrecognizedCommand)
}

func TestExecute_MissingOperand(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := Execute(context.Background(), db.Storage, Command{Verb: VerbAdd, Name: "  "})
	assert.ErrorIs(t, err, ErrMissingOperand)

	_, err = Execute(context.Background(), db.Storage, Command{Verb: VerbRename, Name: "Food"})
	assert.ErrorIs(t, err, ErrMissingOperand)
}
