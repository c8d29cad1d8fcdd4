// Package model defines domain types for ocstats messages and statistics.
package model

// UnknownID is substituted for a missing provider or model identifier.
const UnknownID = "unknown"

// Message is one assistant turn recorded by OpenCode.
type Message struct {
	ID         string
	SessionID  string
	Created    int64 // epoch milliseconds (time.created)
	ProviderID string
	ModelID    string
	Cost       float64
	Tokens     *Tokens // nil when the record carries no tokens object
}

// Tokens holds the per-category token counts of one message.
type Tokens struct {
	Input     int64
	Output    int64
	Reasoning int64
	Cache     TokenCache
}

// TokenCache holds prompt-cache token counts.
type TokenCache struct {
	Read  int64
	Write int64
}

// Total returns the sum of all five token categories.
func (t Tokens) Total() int64 {
	return t.Input + t.Output + t.Reasoning + t.Cache.Read + t.Cache.Write
}

// ModelName returns "<providerID>/<modelID>", substituting "unknown" for
// either half when it is missing or an empty string.
func (m Message) ModelName() string {
	provider := m.ProviderID
	if provider == "" {
		provider = UnknownID
	}
	modelID := m.ModelID
	if modelID == "" {
		modelID = UnknownID
	}
	return provider + "/" + modelID
}
