// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// LedgerIcon prefixes titles and the goodbye line.
const LedgerIcon = "💸"

var (
	ledgerGreen = lipgloss.Color("#2ECC71")
	teal        = lipgloss.Color("#4ECDC4")
	amber       = lipgloss.Color("#FFE66D")
	coral       = lipgloss.Color("#FF6B6B")
	mint        = lipgloss.Color("#95E1D3")
	grey        = lipgloss.Color("#666666")
)

var (
	// TitleStyle heads the output of a command.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ledgerGreen).MarginBottom(1)

	// BoldStyle emphasises totals.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// SubtleStyle is for borders and secondary text.
	SubtleStyle = lipgloss.NewStyle().Foreground(grey)

	// TableHeaderStyle is applied to the header row of every table.
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ledgerGreen).PaddingRight(2)

	// TableCellStyle is applied to body cells.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)

	// AmountStyle is layered over header and body cells of money columns.
	AmountStyle = lipgloss.NewStyle().Align(lipgloss.Right)

	// BoxStyle frames a titled block such as the category summary.
	BoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(grey).Padding(0, 1)

	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(ledgerGreen)
)

// notice is a one-line status message: an icon and a colour.
type notice struct {
	icon  string
	style lipgloss.Style
}

func (n notice) render(message string) string {
	return n.style.Render(n.icon + " " + message)
}

var (
	successNotice = notice{icon: "✓", style: lipgloss.NewStyle().Foreground(teal)}
	errorNotice   = notice{icon: "✗", style: lipgloss.NewStyle().Foreground(coral)}
	warningNotice = notice{icon: "⚠️", style: lipgloss.NewStyle().Foreground(amber)}
	infoNotice    = notice{icon: "ℹ️", style: lipgloss.NewStyle().Foreground(mint)}
)

// FormatSuccess reports a completed change.
func FormatSuccess(message string) string { return successNotice.render(message) }

// FormatError reports a failure.
func FormatError(message string) string { return errorNotice.render(message) }

// FormatWarning reports something the user should look at.
func FormatWarning(message string) string { return warningNotice.render(message) }

// FormatInfo reports neutral status.
func FormatInfo(message string) string { return infoNotice.render(message) }

// FormatTitle renders a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(LedgerIcon + " " + title)
}

// FormatPrompt renders the text shown before user input.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox draws content inside a rounded border under a title.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(LedgerIcon + " " + title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
