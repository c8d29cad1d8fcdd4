package source

import "github.com/theirongolddev/ocstats/internal/model"

// Upper bounds accepted for numeric message fields.
const (
	MaxTokenValue = 1_000_000_000_000
	MaxCostValue  = 1_000_000
)

// DiscoveredFile represents a message JSON file found during directory scanning.
type DiscoveredFile struct {
	Path      string
	SessionID string // parent directory name, e.g. "ses_abc123"
}

// ParseResult holds the output of reading a single message file.
type ParseResult struct {
	Message model.Message
	Valid   bool  // false when the record is not a well-formed assistant message
	Err     error // read or JSON syntax failure
}
