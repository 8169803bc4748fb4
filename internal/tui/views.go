package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-tracker/internal/cli"
	"github.com/Veraticus/expense-tracker/internal/model"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return m.theme.Subtitle.Render("Loading expenses...")
	}

	sections := []string{
		m.theme.Title.Render(cli.LedgerIcon + " Expenses"),
		m.renderFilters(),
		m.list.View(),
		m.renderFooter(),
	}

	if line := m.renderStatus(); line != "" {
		sections = append(sections, line)
	}

	sections = append(sections, m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderFilters() string {
	parts := []string{"Category: " + m.theme.Bold.Render(categoryLabel(m.filter.Category))}

	if m.filter.StartDate != nil || m.filter.EndDate != nil {
		start, end := "…", "…"
		if m.filter.StartDate != nil {
			start = model.FormatDate(*m.filter.StartDate)
		}
		if m.filter.EndDate != nil {
			end = model.FormatDate(*m.filter.EndDate)
		}
		parts = append(parts, fmt.Sprintf("Dates: %s to %s", start, end))
	}

	if m.state == StateSearch {
		parts = append(parts, m.searchInput.View())
	} else if m.filter.Keyword != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", m.filter.Keyword))
	}

	return m.theme.Subtitle.Render(strings.Join(parts, "  ·  "))
}

func categoryLabel(category string) string {
	if model.IsAllCategories(category) {
		return model.AllCategories
	}
	return category
}

func (m Model) renderFooter() string {
	count := len(m.list.Expenses())
	noun := "expenses"
	if count == 1 {
		noun = "expense"
	}
	return m.theme.BorderedBox.Render(
		fmt.Sprintf("%d %s  ·  Total %s", count, noun, m.theme.Amount.Render(model.DisplayAmount(m.total))),
	)
}

func (m Model) renderStatus() string {
	switch {
	case m.lastError != nil:
		return m.theme.StatusError.Render("Error: " + m.lastError.Error())
	case m.state == StateConfirmDelete:
		e := m.pendingDelete
		return m.theme.StatusWarning.Render(fmt.Sprintf(
			"Delete expense %d (%s, %s, %s)? [y/N]",
			e.ID, e.DateString(), model.DisplayAmount(e.Amount), e.Category,
		))
	case m.status != "":
		return m.theme.StatusSuccess.Render(m.status)
	}
	return ""
}
