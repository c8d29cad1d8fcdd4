// Package pipeline orchestrates message loading, caching, and usage aggregation.
package pipeline

import (
	"sort"

	"github.com/samber/lo"

	"github.com/theirongolddev/ocstats/internal/model"
)

// Accumulator folds a stream of messages into a result of type R.
// Implementations are not safe for concurrent use.
type Accumulator[R any] interface {
	Consume(msg model.Message)
	Result() R
}

// groupedTotals keeps one MutableStats per key plus a grand total.
// Keys remember first-seen order so result ordering is deterministic.
type groupedTotals struct {
	filters ParsedFilters
	keyOf   func(model.Message) string
	overall *MutableStats
	groups  map[string]*MutableStats
	order   []string
}

func newGroupedTotals(filters ParsedFilters, keyOf func(model.Message) string) *groupedTotals {
	return &groupedTotals{
		filters: filters,
		keyOf:   keyOf,
		overall: NewMutableStats(),
		groups:  make(map[string]*MutableStats),
	}
}

func (g *groupedTotals) consume(msg model.Message) {
	if !g.filters.Matches(msg) {
		return
	}
	g.overall.Apply(msg)

	if g.keyOf == nil {
		return
	}
	key := g.keyOf(msg)
	totals, ok := g.groups[key]
	if !ok {
		totals = NewMutableStats()
		g.groups[key] = totals
		g.order = append(g.order, key)
	}
	totals.Apply(msg)
}

// PeriodAccumulator groups messages by calendar period.
type PeriodAccumulator struct {
	totals *groupedTotals
}

// NewPeriodAccumulator validates filters and returns an empty accumulator
// keyed by g.
func NewPeriodAccumulator(g model.Granularity, filters model.FilterOptions) (*PeriodAccumulator, error) {
	parsed, err := ParseFilters(filters, true)
	if err != nil {
		return nil, err
	}
	keyOf := func(msg model.Message) string { return PeriodKey(msg.Created, g) }
	return &PeriodAccumulator{totals: newGroupedTotals(parsed, keyOf)}, nil
}

// Consume folds msg in if it passes the filters.
func (a *PeriodAccumulator) Consume(msg model.Message) { a.totals.consume(msg) }

// Result returns the overall total and per-period stats sorted by label.
// Labels are fixed-width, so string order is chronological order.
func (a *PeriodAccumulator) Result() model.PeriodResult {
	keys := append([]string(nil), a.totals.order...)
	sort.Strings(keys)

	periods := lo.Map(keys, func(key string, _ int) model.PeriodStats {
		return ToPeriodStats(key, a.totals.groups[key])
	})

	return model.PeriodResult{
		Overall: ToPeriodStats(model.TotalLabel, a.totals.overall),
		Periods: periods,
	}
}

// ModelAccumulator groups messages by "<providerID>/<modelID>".
type ModelAccumulator struct {
	totals *groupedTotals
}

// NewModelAccumulator validates filters and returns an empty accumulator.
func NewModelAccumulator(filters model.FilterOptions) (*ModelAccumulator, error) {
	parsed, err := ParseFilters(filters, true)
	if err != nil {
		return nil, err
	}
	return &ModelAccumulator{totals: newGroupedTotals(parsed, model.Message.ModelName)}, nil
}

// Consume folds msg in if it passes the filters.
func (a *ModelAccumulator) Consume(msg model.Message) { a.totals.consume(msg) }

// Result returns the overall total and per-model stats sorted by total
// tokens, descending. Ties keep the order in which models were first seen.
func (a *ModelAccumulator) Result() model.ModelResult {
	models := lo.Map(a.totals.order, func(key string, _ int) model.ModelStats {
		return ToModelStats(key, a.totals.groups[key])
	})
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].TotalTokens > models[j].TotalTokens
	})

	return model.ModelResult{
		Overall: ToPeriodStats(model.TotalLabel, a.totals.overall),
		Models:  models,
	}
}

// OverallAccumulator keeps a single ungrouped total.
type OverallAccumulator struct {
	totals *groupedTotals
}

// NewOverallAccumulator validates filters and returns an empty accumulator.
func NewOverallAccumulator(filters model.FilterOptions) (*OverallAccumulator, error) {
	parsed, err := ParseFilters(filters, true)
	if err != nil {
		return nil, err
	}
	return &OverallAccumulator{totals: newGroupedTotals(parsed, nil)}, nil
}

// Consume folds msg in if it passes the filters.
func (a *OverallAccumulator) Consume(msg model.Message) { a.totals.consume(msg) }

// Result returns the total labelled "Total".
func (a *OverallAccumulator) Result() model.PeriodStats {
	return ToPeriodStats(model.TotalLabel, a.totals.overall)
}
