// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// PrimaryColor is the ledger green used for titles and the TUI cursor.
var PrimaryColor = lipgloss.Color("#2EC27E")

var (
	borderColor = lipgloss.Color("#333")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)
)

// Shared text styles.
var (
	InfoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1D3"))
	SubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	AmountStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F8B400"))

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(borderColor)
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// Icons prefixed to titles.
const (
	MoneyIcon = "💰"
	InboxIcon = "📥"
	ChartIcon = "📊"
)

// FormatSuccess marks message as done.
func FormatSuccess(message string) string {
	return successStyle.Render("✓ " + message)
}

// FormatError marks message as failed.
func FormatError(message string) string {
	return errorStyle.Render("✗ " + message)
}

// FormatWarning marks message as needing attention.
func FormatWarning(message string) string {
	return warningStyle.Render("⚠️ " + message)
}

// FormatInfo renders a neutral status line.
func FormatInfo(message string) string {
	return InfoStyle.Render("ℹ️ " + message)
}

// FormatTitle renders a section heading followed by a blank line.
func FormatTitle(title string) string {
	return titleStyle.MarginBottom(1).Render(title)
}

// RenderBox draws content under a title inside a rounded border.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content))
}
