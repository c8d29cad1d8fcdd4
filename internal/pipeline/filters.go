package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/ocstats/internal/model"
)

// Filter validation errors. Callers match them with errors.Is.
var (
	ErrInvalidDateFormat  = errors.New("invalid date format")
	ErrInvalidDateValue   = errors.New("invalid date value")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrInvalidModelFilter = errors.New("invalid model filter")
)

const dateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParsedFilters holds validated filters ready for matching.
// From and To are epoch milliseconds; nil means unbounded.
type ParsedFilters struct {
	Model *string
	From  *int64
	To    *int64
}

// parseLocalDate parses a YYYY-MM-DD string into local midnight of that day.
// time.Date normalizes out-of-range components (Feb 30 becomes Mar 2), so
// formatting the result back and comparing it against the input rejects
// every date that does not exist on the calendar.
func parseLocalDate(date string) (time.Time, error) {
	if !datePattern.MatchString(date) {
		return time.Time{}, fmt.Errorf("%w: %s (expected YYYY-MM-DD)", ErrInvalidDateFormat, date)
	}

	year, _ := strconv.Atoi(date[0:4])
	month, _ := strconv.Atoi(date[5:7])
	day, _ := strconv.Atoi(date[8:10])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if t.Format(dateLayout) != date {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDateValue, date)
	}
	return t, nil
}

// ParseDateStart returns local midnight of date in epoch milliseconds.
// A nil or empty date yields nil (no lower bound).
func ParseDateStart(date *string) (*int64, error) {
	if date == nil || *date == "" {
		return nil, nil
	}
	t, err := parseLocalDate(*date)
	if err != nil {
		return nil, err
	}
	ms := t.UnixMilli()
	return &ms, nil
}

// ParseDateEnd returns local 23:59:59.999 of date in epoch milliseconds.
// A nil or empty date yields nil (no upper bound).
func ParseDateEnd(date *string) (*int64, error) {
	if date == nil || *date == "" {
		return nil, nil
	}
	t, err := parseLocalDate(*date)
	if err != nil {
		return nil, err
	}
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.Local)
	ms := end.UnixMilli()
	return &ms, nil
}

// ValidateFilters checks every filter invariant and returns the first
// violation. It never modifies filters.
func ValidateFilters(filters model.FilterOptions, includeModel bool) error {
	_, err := ParseFilters(filters, includeModel)
	return err
}

// ParseFilters validates filters and converts the date bounds to
// epoch-millisecond timestamps.
func ParseFilters(filters model.FilterOptions, includeModel bool) (ParsedFilters, error) {
	if includeModel && filters.Model != nil && strings.TrimSpace(*filters.Model) == "" {
		return ParsedFilters{}, fmt.Errorf("%w: --model cannot be empty", ErrInvalidModelFilter)
	}

	from, err := ParseDateStart(filters.From)
	if err != nil {
		return ParsedFilters{}, err
	}
	to, err := ParseDateEnd(filters.To)
	if err != nil {
		return ParsedFilters{}, err
	}

	if from != nil && to != nil && *from > *to {
		return ParsedFilters{}, fmt.Errorf("%w: --from must be on or before --to", ErrInvalidDateRange)
	}

	parsed := ParsedFilters{From: from, To: to}
	if includeModel && filters.Model != nil {
		m := *filters.Model
		parsed.Model = &m
	}
	return parsed, nil
}

// Matches reports whether msg passes the model and date-range filters.
func (f ParsedFilters) Matches(msg model.Message) bool {
	if f.Model != nil && msg.ModelName() != *f.Model {
		return false
	}
	if f.From != nil && msg.Created < *f.From {
		return false
	}
	if f.To != nil && msg.Created > *f.To {
		return false
	}
	return true
}
