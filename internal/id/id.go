package id

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// FormatEntryID returns an entry ID like "2025-01-001".
func FormatEntryID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatLegID returns a leg ID like "2025-01-001a" (leg 0='a', 25='z', 26='aa').
func FormatLegID(entryID string, leg int) string {
	var suffix []byte
	for n := leg + 1; n > 0; n = (n - 1) / 26 {
		suffix = append([]byte{byte('a' + (n-1)%26)}, suffix...)
	}
	return entryID + string(suffix)
}

// ParseEntryID parses "2025-01-001" into year, month, seq.
func ParseEntryID(id string) (year, month, seq int, err error) {
	// Strip any leg suffix (trailing lowercase letters).
	base := EntryGroup(id)

	parts := strings.SplitN(base, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in entry ID %q: %w", id, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// EntryGroup strips the leg suffix from a leg ID.
// "2025-01-001a" -> "2025-01-001"
func EntryGroup(legID string) string {
	i := len(legID)
	for i > 0 && legID[i-1] >= 'a' && legID[i-1] <= 'z' {
		i--
	}
	return legID[:i]
}

// FormatReference returns a transaction reference number like "[2025-3] 42".
func FormatReference(stamp time.Time, counter int) string {
	return fmt.Sprintf("[%d-%d] %d", stamp.Year(), int(stamp.Month()), counter)
}

// ReferenceSequence hands out strictly increasing reference numbers stamped
// with a fixed year and month.
type ReferenceSequence struct {
	stamp time.Time
	next  int
}

// NewReferenceSequence starts counting at start.
func NewReferenceSequence(stamp time.Time, start int) *ReferenceSequence {
	return &ReferenceSequence{stamp: stamp, next: start}
}

// Next returns the next reference number.
func (s *ReferenceSequence) Next() string {
	ref := FormatReference(s.stamp, s.next)
	s.next++
	return ref
}

// Peek returns the counter the next call to Next will use.
func (s *ReferenceSequence) Peek() int {
	return s.next
}

// NewBatchID returns a sortable unique identifier for an import batch.
func NewBatchID() string {
	return ulid.Make().String()
}

type batchKey struct{}

// ContextWithBatchID returns a context carrying batchID.
func ContextWithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchKey{}, batchID)
}

// BatchIDFromContext returns the batch ID stored in ctx, or "".
func BatchIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(batchKey{}).(string)
	return v
}
