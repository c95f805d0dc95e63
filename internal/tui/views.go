package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/paycapture/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

var (
	cursorStyle   = lipgloss.NewStyle().Foreground(cli.PrimaryColor).Bold(true)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#1F3B2D"))
)

// View renders the review screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(cli.FormatTitle(fmt.Sprintf("%s Inbox (%s)", cli.InboxIcon, m.config.Status)))
	b.WriteString("\n")

	switch {
	case m.state == StateLoading:
		b.WriteString(cli.SubtleStyle.Render("Loading..."))
		b.WriteString("\n")
	case len(m.requests) == 0:
		b.WriteString(cli.SubtleStyle.Render("Nothing waiting to be recorded."))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderList())
		if req, ok := m.selected(); ok {
			b.WriteString("\n")
			b.WriteString(cli.RenderPrefill(req))
			b.WriteString("\n")
		}
	}

	if m.state == StateCategory {
		b.WriteString("\n")
		b.WriteString(m.category.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))

	return b.String()
}

func (m Model) renderList() string {
	var b strings.Builder
	for i, req := range m.requests {
		line := fmt.Sprintf("%-10s %s  %s",
			req.SourceLabel,
			cli.AmountStyle.Render(req.Amount.StringFixed(2)),
			cli.SubtleStyle.Render(req.CreatedAt.Local().Format("01-02 15:04")))

		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "))
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString("  ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStatus() string {
	if m.lastError != nil {
		return cli.FormatError(m.lastError.Error())
	}

	counts := cli.SubtleStyle.Render(fmt.Sprintf("%d recorded, %d dismissed", m.confirmed, m.dismissed))
	if m.status == "" {
		return counts
	}
	return cli.InfoStyle.Render(m.status) + "  " + counts
}
