package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ocstats/internal/cli/theme"
)

// SeparatorRow marks a horizontal rule between table rows. Rows after the
// last separator are rendered bold.
const SeparatorRow = "---"

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int           // optional column widths, auto-calculated if nil
	Columns []lipgloss.Style // optional per-column cell styles
}

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	value  lipgloss.Style
	border lipgloss.Style
	muted  lipgloss.Style
}

func activeStyles() styles {
	t := theme.Active
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		border: lipgloss.NewStyle().Foreground(t.Border),
		muted:  lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// RenderTitle renders a report heading.
func RenderTitle(title string) string {
	return activeStyles().title.Render(title)
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned, the rest right-aligned.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}
	st := activeStyles()

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	rule := func(left, mid, right string) string {
		var b strings.Builder
		b.WriteString(left)
		for i, w := range widths {
			b.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		return st.border.Render(b.String()) + "\n"
	}
	bar := st.border.Render("│")

	var b strings.Builder

	if t.Title != "" {
		b.WriteString(RenderTitle(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		b.WriteString(bar)
		for i, h := range t.Headers {
			b.WriteString(st.header.Render(pad(h, widths[i], i > 0)))
			if i < numCols-1 {
				b.WriteString(bar)
			}
		}
		b.WriteString(bar)
		b.WriteString("\n")
		b.WriteString(rule("├", "┼", "┤"))
	}

	bold := false
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == SeparatorRow {
			b.WriteString(rule("├", "┼", "┤"))
			bold = true
			continue
		}

		b.WriteString(bar)
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			style := st.value
			if i < len(t.Columns) {
				style = t.Columns[i]
			}
			b.WriteString(style.Bold(bold).Render(pad(cell, widths[i], i > 0)))
			if i < numCols-1 {
				b.WriteString(bar)
			}
		}
		b.WriteString(bar)
		b.WriteString("\n")
	}

	b.WriteString(rule("╰", "┴", "╯"))

	return b.String()
}

// pad surrounds s with one space each side and fills it to width w.
func pad(s string, w int, right bool) string {
	fill := strings.Repeat(" ", max(w-lipgloss.Width(s), 0))
	if right {
		return " " + fill + s + " "
	}
	return " " + s + fill + " "
}

// RenderProgress renders a "label [current/total]" status line.
func RenderProgress(label string, current, total int) string {
	return activeStyles().muted.Render(label + " [" + FormatNumber(int64(current)) + "/" + FormatNumber(int64(total)) + "]")
}
