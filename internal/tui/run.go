package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the browser and blocks until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Storage == nil {
		return fmt.Errorf("storage is required")
	}
	cfg.Context = ctx

	p := tea.NewProgram(New(cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
