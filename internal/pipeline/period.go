package pipeline

import (
	"fmt"
	"time"

	"github.com/theirongolddev/ocstats/internal/model"
)

// PeriodKey returns the local-calendar label of the period containing the
// epoch-millisecond timestamp ts. Weekly labels use the ISO week-year, so
// early-January dates may belong to the previous year's last week.
// An unrecognized granularity is treated as yearly.
func PeriodKey(ts int64, g model.Granularity) string {
	t := time.UnixMilli(ts).In(time.Local)

	switch g {
	case model.Daily:
		return t.Format("2006-01-02")
	case model.Weekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case model.Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006")
	}
}
