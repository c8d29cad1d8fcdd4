// Package source discovers and parses OpenCode message JSON files.
package source

import (
	"errors"
	"math"
	"os"

	"github.com/tidwall/gjson"

	"github.com/theirongolddev/ocstats/internal/model"
)

// ErrMalformedJSON is returned for files that are not syntactically valid JSON.
var ErrMalformedJSON = errors.New("malformed JSON")

// ParseFile reads one message file and validates it as an assistant message.
//
// Outcomes:
//   - unreadable file or broken JSON → Err set
//   - valid JSON that is not a well-formed assistant record → Valid=false
//   - otherwise → Valid=true with Message populated
func ParseFile(df DiscoveredFile) ParseResult {
	data, err := os.ReadFile(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	return ParseBytes(data)
}

// ParseBytes validates raw JSON bytes as an assistant message record.
func ParseBytes(data []byte) ParseResult {
	if !gjson.ValidBytes(data) {
		return ParseResult{Err: ErrMalformedJSON}
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return ParseResult{}
	}

	msg, ok := decodeMessage(root)
	if !ok {
		return ParseResult{}
	}
	return ParseResult{Message: msg, Valid: true}
}

func decodeMessage(root gjson.Result) (model.Message, bool) {
	var msg model.Message

	id := root.Get("id")
	sessionID := root.Get("sessionID")
	if id.Type != gjson.String || sessionID.Type != gjson.String {
		return msg, false
	}
	if role := root.Get("role"); role.Type != gjson.String || role.Str != "assistant" {
		return msg, false
	}
	created := root.Get("time.created")
	if created.Type != gjson.Number {
		return msg, false
	}

	msg.ID = id.Str
	msg.SessionID = sessionID.Str
	msg.Created = created.Int()

	var ok bool
	if msg.ProviderID, ok = optionalString(root.Get("providerID")); !ok {
		return msg, false
	}
	if msg.ModelID, ok = optionalString(root.Get("modelID")); !ok {
		return msg, false
	}

	if cost := root.Get("cost"); cost.Exists() {
		if !inRange(cost, MaxCostValue) {
			return msg, false
		}
		msg.Cost = cost.Num
	}

	if tokens := root.Get("tokens"); tokens.Exists() {
		t, ok := decodeTokens(tokens)
		if !ok {
			return msg, false
		}
		msg.Tokens = t
	}

	return msg, true
}

func decodeTokens(r gjson.Result) (*model.Tokens, bool) {
	if !r.IsObject() {
		return nil, false
	}

	fields := []string{"input", "output", "reasoning", "cache.read", "cache.write"}
	values := make([]int64, len(fields))
	for i, path := range fields {
		v := r.Get(path)
		// Counts are stored as int64; fractional values reject the record.
		if !inRange(v, MaxTokenValue) || v.Num != math.Trunc(v.Num) {
			return nil, false
		}
		values[i] = v.Int()
	}

	return &model.Tokens{
		Input:     values[0],
		Output:    values[1],
		Reasoning: values[2],
		Cache: model.TokenCache{
			Read:  values[3],
			Write: values[4],
		},
	}, true
}

// optionalString accepts a missing field or a JSON string.
func optionalString(r gjson.Result) (string, bool) {
	if !r.Exists() {
		return "", true
	}
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

func inRange(r gjson.Result, maxValue float64) bool {
	return r.Type == gjson.Number && r.Num >= 0 && r.Num <= maxValue
}
