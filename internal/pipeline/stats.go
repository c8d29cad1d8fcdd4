package pipeline

import "github.com/theirongolddev/ocstats/internal/model"

// MutableStats holds running totals for one group. It is owned by a single
// accumulator and only changed through Apply.
type MutableStats struct {
	TotalRequests    int64
	TotalTokens      int64
	InputTokens      int64
	OutputTokens     int64
	ReasoningTokens  int64
	CacheReadTokens  int64
	CacheWriteTokens int64
	TotalCost        float64
}

// NewMutableStats returns zeroed totals.
func NewMutableStats() *MutableStats {
	return &MutableStats{}
}

// Apply folds one message into the totals. A message without a tokens
// object still counts as a request but adds no tokens.
func (s *MutableStats) Apply(msg model.Message) {
	s.TotalRequests++
	if t := msg.Tokens; t != nil {
		s.InputTokens += t.Input
		s.OutputTokens += t.Output
		s.ReasoningTokens += t.Reasoning
		s.CacheReadTokens += t.Cache.Read
		s.CacheWriteTokens += t.Cache.Write
		s.TotalTokens += t.Total()
	}
	s.TotalCost += msg.Cost
}

// ToPeriodStats snapshots totals under the given period label.
func ToPeriodStats(period string, s *MutableStats) model.PeriodStats {
	return model.PeriodStats{
		Period:           period,
		TotalRequests:    s.TotalRequests,
		TotalTokens:      s.TotalTokens,
		InputTokens:      s.InputTokens,
		OutputTokens:     s.OutputTokens,
		ReasoningTokens:  s.ReasoningTokens,
		CacheReadTokens:  s.CacheReadTokens,
		CacheWriteTokens: s.CacheWriteTokens,
		TotalCost:        s.TotalCost,
	}
}

// ToModelStats snapshots totals under the given model name.
func ToModelStats(name string, s *MutableStats) model.ModelStats {
	return model.ModelStats{
		Model:            name,
		TotalRequests:    s.TotalRequests,
		TotalTokens:      s.TotalTokens,
		InputTokens:      s.InputTokens,
		OutputTokens:     s.OutputTokens,
		ReasoningTokens:  s.ReasoningTokens,
		CacheReadTokens:  s.CacheReadTokens,
		CacheWriteTokens: s.CacheWriteTokens,
		TotalCost:        s.TotalCost,
	}
}
