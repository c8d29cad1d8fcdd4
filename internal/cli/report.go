package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/theirongolddev/ocstats/internal/cli/theme"
	"github.com/theirongolddev/ocstats/internal/model"
)

// Report titles.
const (
	TitleToday  = "Today"
	TitlePeriod = "Usage by Period"
	TitleModels = "Model Breakdown"
)

// EmptyLabel stands in for the label column when a report has no groups.
const EmptyLabel = "-"

var statColumns = []string{"Requests", "Input", "Output", "Reasoning", "Cache Read", "Cache Write", "Tokens", "Cost"}

// Headers returns the report header row with label as the first column.
func Headers(label string) []string {
	return append([]string{label}, statColumns...)
}

// statCells formats one row of usage counters.
func statCells(label string, requests, input, output, reasoning, read, write, total int64, cost float64) []string {
	return []string{
		label,
		FormatNumber(requests),
		FormatNumber(input),
		FormatNumber(output),
		FormatNumber(reasoning),
		FormatNumber(read),
		FormatNumber(write),
		FormatNumber(total),
		FormatCost(cost),
	}
}

// PeriodRow formats one period.
func PeriodRow(p model.PeriodStats) []string {
	return statCells(p.Period, p.TotalRequests, p.InputTokens, p.OutputTokens, p.ReasoningTokens,
		p.CacheReadTokens, p.CacheWriteTokens, p.TotalTokens, p.TotalCost)
}

// PeriodRows formats periods in order.
func PeriodRows(periods []model.PeriodStats) [][]string {
	return lo.Map(periods, func(p model.PeriodStats, _ int) []string { return PeriodRow(p) })
}

// ModelRows formats models in order.
func ModelRows(models []model.ModelStats) [][]string {
	return lo.Map(models, func(m model.ModelStats, _ int) []string {
		return statCells(m.Model, m.TotalRequests, m.InputTokens, m.OutputTokens, m.ReasoningTokens,
			m.CacheReadTokens, m.CacheWriteTokens, m.TotalTokens, m.TotalCost)
	})
}

// TotalRow formats the overall totals, always labelled "Total".
func TotalRow(overall model.PeriodStats) []string {
	overall.Period = model.TotalLabel
	return PeriodRow(overall)
}

// EmptyRow is shown in place of group rows when nothing matched.
func EmptyRow() []string {
	return statCells(EmptyLabel, 0, 0, 0, 0, 0, 0, 0, 0)
}

func columnStyles() []lipgloss.Style {
	t := theme.Active
	text := lipgloss.NewStyle().Foreground(t.Text)
	cols := lo.Times(len(statColumns)+1, func(int) lipgloss.Style { return text })
	cols[len(cols)-2] = lipgloss.NewStyle().Foreground(t.Tokens)
	cols[len(cols)-1] = lipgloss.NewStyle().Foreground(t.Cost)
	return cols
}

// withTotal appends the separator and Total row, substituting the empty row
// when there are no groups.
func withTotal(rows [][]string, overall model.PeriodStats) [][]string {
	if len(rows) == 0 {
		rows = [][]string{EmptyRow()}
	}
	return append(rows, []string{SeparatorRow}, TotalRow(overall))
}

// RenderToday renders the single-row summary for today.
func RenderToday(overall model.PeriodStats) string {
	return RenderTable(Table{
		Title:   TitleToday,
		Headers: Headers("Period"),
		Rows:    [][]string{TotalRow(overall)},
		Columns: columnStyles(),
	})
}

// RenderPeriods renders the per-period report with a Total row.
func RenderPeriods(res model.PeriodResult) string {
	return RenderTable(Table{
		Title:   TitlePeriod,
		Headers: Headers("Period"),
		Rows:    withTotal(PeriodRows(res.Periods), res.Overall),
		Columns: columnStyles(),
	})
}

// RenderModels renders the per-model report with a Total row.
func RenderModels(res model.ModelResult) string {
	return RenderTable(Table{
		Title:   TitleModels,
		Headers: Headers("Model"),
		Rows:    withTotal(ModelRows(res.Models), res.Overall),
		Columns: columnStyles(),
	})
}
