// Package matcher learns memo to account affinities from ledger history and
// uses them to pick counter-accounts for imported statement lines.
package matcher

import "strings"

// DefaultKeyWords is the number of memo tokens kept in a key.
const DefaultKeyWords = 2

// Normalizer reduces a free-text memo to a coarse matching key: its first
// Words whitespace-delimited tokens joined by one space. Trailing reference
// numbers, dates and merchant suffixes fall away.
type Normalizer struct {
	Words int
	Fold  bool // lowercase the key
}

// NewNormalizer returns a Normalizer keeping words tokens (DefaultKeyWords if <= 0).
func NewNormalizer(words int) Normalizer {
	if words <= 0 {
		words = DefaultKeyWords
	}
	return Normalizer{Words: words}
}

// Normalize returns the key for memo.
func (n Normalizer) Normalize(memo string) string {
	words := n.Words
	if words <= 0 {
		words = DefaultKeyWords
	}
	fields := strings.Fields(memo)
	if len(fields) > words {
		fields = fields[:words]
	}
	key := strings.Join(fields, " ")
	if n.Fold {
		key = strings.ToLower(key)
	}
	return key
}
