package model

// TotalLabel is the period label of an overall (ungrouped) summary.
const TotalLabel = "Total"

// Granularity is the calendar bucket size used for period grouping.
type Granularity string

// Supported granularities.
const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// Granularities lists every supported granularity, finest first.
var Granularities = []Granularity{Daily, Weekly, Monthly, Yearly}

// FilterOptions holds the raw user-supplied filters. A nil field means the
// filter was not provided.
type FilterOptions struct {
	Model *string // "<providerID>/<modelID>"
	From  *string // YYYY-MM-DD
	To    *string // YYYY-MM-DD
}

// PeriodStats is a frozen summary for one calendar period (or "Total").
type PeriodStats struct {
	Period           string
	TotalRequests    int64
	TotalTokens      int64
	InputTokens      int64
	OutputTokens     int64
	ReasoningTokens  int64
	CacheReadTokens  int64
	CacheWriteTokens int64
	TotalCost        float64
}

// ModelStats is a frozen summary for one provider/model pair.
type ModelStats struct {
	Model            string
	TotalRequests    int64
	TotalTokens      int64
	InputTokens      int64
	OutputTokens     int64
	ReasoningTokens  int64
	CacheReadTokens  int64
	CacheWriteTokens int64
	TotalCost        float64
}

// PeriodResult is the output of a period accumulator.
type PeriodResult struct {
	Overall PeriodStats
	Periods []PeriodStats
}

// ModelResult is the output of a model accumulator.
type ModelResult struct {
	Overall PeriodStats
	Models  []ModelStats
}
