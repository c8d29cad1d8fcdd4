package cmd

import (
	"errors"

	"github.com/theirongolddev/ocstats/internal/pipeline"
)

// cliError maps an error kind to the title and hint shown around it.
type cliError struct {
	target error
	title  string
	hint   string
}

var cliErrors = []cliError{
	{pipeline.ErrInvalidDateFormat, "Invalid date format", "Example: use --from 2026-02-01 and --to 2026-02-08"},
	{pipeline.ErrInvalidDateValue, "Invalid date value", "Use a real calendar date in YYYY-MM-DD format."},
	{pipeline.ErrInvalidDateRange, "Invalid date range", "Ensure --from is on or before --to."},
	{pipeline.ErrInvalidModelFilter, "Invalid model filter", "Provide --model as providerID/modelID."},
	{pipeline.ErrDataLoad, "Data loading failed", "Check OpenCode data directory and read permissions."},
}

// formatCLIError returns the three lines printed for a failed command:
// a title, the error itself, and a hint.
func formatCLIError(err error) []string {
	for _, e := range cliErrors {
		if errors.Is(err, e.target) {
			return []string{"Error: " + e.title, err.Error(), e.hint}
		}
	}
	return []string{"Error: Failed to run ocstats", err.Error(), "Run `ocstats --help` for usage information."}
}
