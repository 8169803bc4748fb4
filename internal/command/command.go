// Package command parses and applies the one-line category commands
// "add <name>", "rename <old> -> <new>" and "delete <name>".
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/expense-tracker/internal/service"
)

// Errors returned by Parse and Execute.
var (
	ErrUnrecognizedCommand = errors.New("unrecognized command")
	ErrMissingOperand      = errors.New("missing category name")
	ErrCategoryInUse       = errors.New("cannot delete a category that has expenses")
)

// Usage describes the accepted commands.
const Usage = `add <name> | rename <old> -> <new> | delete <name>`

// Verb identifies a category command.
type Verb string

// Supported verbs.
const (
	VerbAdd    Verb = "add"
	VerbRename Verb = "rename"
	VerbDelete Verb = "delete"
)

const renameArrow = "->"

// Command is a parsed category command.
type Command struct {
	Verb    Verb
	Name    string
	NewName string // rename only
}

func (c Command) String() string {
	if c.Verb == VerbRename {
		return fmt.Sprintf("%s %s %s %s", c.Verb, c.Name, renameArrow, c.NewName)
	}
	return fmt.Sprintf("%s %s", c.Verb, c.Name)
}

// Parse reads a command. Verbs are case-insensitive and operands are trimmed.
func Parse(text string) (Command, error) {
	s := strings.TrimSpace(text)

	verb, rest, ok := strings.Cut(s, " ")
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnrecognizedCommand, s)
	}
	rest = strings.TrimSpace(rest)

	switch Verb(strings.ToLower(verb)) {
	case VerbAdd:
		return Command{Verb: VerbAdd, Name: rest}, nil

	case VerbRename:
		left, right, found := strings.Cut(rest, renameArrow)
		if !found {
			return Command{}, fmt.Errorf("%w: rename needs %q", ErrUnrecognizedCommand, renameArrow)
		}
		oldName, newName := strings.TrimSpace(left), strings.TrimSpace(right)
		if oldName == "" || newName == "" {
			return Command{}, fmt.Errorf("%w: rename needs both names", ErrMissingOperand)
		}
		return Command{Verb: VerbRename, Name: oldName, NewName: newName}, nil

	case VerbDelete:
		return Command{Verb: VerbDelete, Name: rest}, nil

	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnrecognizedCommand, s)
	}
}

// Execute applies cmd to the store and returns a confirmation message.
func Execute(ctx context.Context, store service.CategoryStore, cmd Command) (string, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return "", ErrMissingOperand
	}

	switch cmd.Verb {
	case VerbAdd:
		if err := store.AddCategory(ctx, cmd.Name); err != nil {
			return "", fmt.Errorf("failed to add category: %w", err)
		}
		slog.Debug("Category command applied", "command", cmd.String())
		return fmt.Sprintf("Category %q is available", cmd.Name), nil

	case VerbRename:
		if strings.TrimSpace(cmd.NewName) == "" {
			return "", ErrMissingOperand
		}
		renamed, err := store.RenameCategory(ctx, cmd.Name, cmd.NewName)
		if err != nil {
			return "", fmt.Errorf("failed to rename category: %w", err)
		}
		if !renamed {
			return fmt.Sprintf("No category named %q", cmd.Name), nil
		}
		slog.Debug("Category command applied", "command", cmd.String())
		return fmt.Sprintf("Renamed %q to %q", cmd.Name, cmd.NewName), nil

	case VerbDelete:
		deleted, err := store.DeleteCategory(ctx, cmd.Name)
		if err != nil {
			return "", fmt.Errorf("failed to delete category: %w", err)
		}
		if !deleted {
			return "", ErrCategoryInUse
		}
		slog.Debug("Category command applied", "command", cmd.String())
		return fmt.Sprintf("Deleted category %q", cmd.Name), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedCommand, cmd.Verb)
	}
}

// Run parses and executes text in one step.
func Run(ctx context.Context, store service.CategoryStore, text string) (string, error) {
	cmd, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Execute(ctx, store, cmd)
}
