package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
)

const timeLayout = "2006-01-02 15:04"

// RenderTable lays out rows under a styled header, padding every column to
// its widest cell.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = TableCellStyle.Width(widths[i] + TableCellStyle.GetPaddingRight()).Render(style.Render(cell))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	lines := []string{TableHeaderStyle.Render(renderRow(headers, lipgloss.NewStyle()))}
	for _, row := range rows {
		lines = append(lines, renderRow(row, lipgloss.NewStyle()))
	}
	return strings.Join(lines, "\n")
}

// RenderPrefillTable lists inbox entries.
func RenderPrefillTable(requests []model.PrefillRequest) string {
	if len(requests) == 0 {
		return FormatInfo("Inbox is empty")
	}

	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, []string{
			r.ID,
			r.CreatedAt.Local().Format(timeLayout),
			r.SourceLabel,
			r.Amount.StringFixed(2),
			string(r.Status),
			truncate(r.Note, 40),
		})
	}
	return RenderTable([]string{"ID", "CAPTURED", "APP", "AMOUNT", "STATUS", "NOTE"}, rows)
}

// RenderRecordTable lists expense records with a total line.
func RenderRecordTable(records []model.Record) string {
	if len(records) == 0 {
		return FormatInfo("No records")
	}

	rows := make([][]string, 0, len(records))
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.Timestamp.Local().Format(timeLayout),
			r.Category,
			r.Amount.StringFixed(2),
			string(r.Source),
			r.PaymentApp,
			truncate(r.Note, 40),
		})
	}

	table := RenderTable([]string{"ID", "TIME", "CATEGORY", "AMOUNT", "SOURCE", "APP", "NOTE"}, rows)
	return table + "\n" + AmountStyle.Render(fmt.Sprintf("Total %s across %d records", total.StringFixed(2), len(records)))
}

// RenderCategoryTotals shows each category's share of spending in a period.
func RenderCategoryTotals(title string, totals []model.CategoryTotal) string {
	if len(totals) == 0 {
		return FormatInfo("No records in " + title)
	}

	grand := decimal.Zero
	for _, t := range totals {
		grand = grand.Add(t.Total)
	}

	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		share := decimal.Zero
		if grand.IsPositive() {
			share = t.Total.Div(grand).Mul(decimal.NewFromInt(100))
		}
		rows = append(rows, []string{
			t.Category,
			t.Total.StringFixed(2),
			fmt.Sprintf("%d", t.Count),
			share.StringFixed(1) + "%",
		})
	}

	table := RenderTable([]string{"CATEGORY", "TOTAL", "RECORDS", "SHARE"}, rows)
	return FormatTitle(ChartIcon+" Expenses for "+title) + "\n" + table + "\n" +
		AmountStyle.Render("Total "+grand.StringFixed(2))
}

// RenderStats summarizes capture outcomes.
func RenderStats(stats service.CaptureStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Received:  %d\n", stats.Received)
	fmt.Fprintf(&b, "Captured:  %s\n", AmountStyle.Render(fmt.Sprintf("%d", stats.Accepted)))
	fmt.Fprintf(&b, "Presented: %d\n", stats.Presented)
	fmt.Fprintf(&b, "Rejected:  %d", stats.TotalRejected())

	reasons := make([]string, 0, len(stats.Rejected))
	for reason := range stats.Rejected {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(&b, "\n  %s", SubtleStyle.Render(fmt.Sprintf("%-22s %d", reason, stats.Rejected[model.RejectReason(reason)])))
	}

	return RenderBox(ChartIcon+" Capture summary", b.String())
}

func truncate(s string, maxRunes int) string {
	runes := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(runes) <= maxRunes {
		return string(runes)
	}
	return string(runes[:maxRunes-1]) + "…"
}
