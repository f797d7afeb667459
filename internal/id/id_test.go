package id

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntryID(t *testing.T) {
	tests := []struct {
		year, month, seq int
		want             string
	}{
		{2025, 1, 1, "2025-01-001"},
		{2025, 12, 99, "2025-12-099"},
		{2025, 1, 123, "2025-01-123"},
	}
	for _, tt := range tests {
		got := FormatEntryID(tt.year, tt.month, tt.seq)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatLegID(t *testing.T) {
	tests := []struct {
		entryID string
		leg     int
		want    string
	}{
		{"2025-01-001", 0, "2025-01-001a"},
		{"2025-01-001", 1, "2025-01-001b"},
		{"2025-01-001", 3, "2025-01-001d"},
		{"2025-01-001", 25, "2025-01-001z"},
		{"2025-01-001", 26, "2025-01-001aa"},
	}
	for _, tt := range tests {
		got := FormatLegID(tt.entryID, tt.leg)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseEntryID(t *testing.T) {
	tests := []struct {
		input               string
		wantYear, wantMonth int
		wantSeq             int
	}{
		{"2025-01-001", 2025, 1, 1},
		{"2025-12-099", 2025, 12, 99},
		{"2025-01-001a", 2025, 1, 1},
		{"2025-01-001d", 2025, 1, 1},
	}
	for _, tt := range tests {
		year, month, seq, err := ParseEntryID(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantYear, year)
		assert.Equal(t, tt.wantMonth, month)
		assert.Equal(t, tt.wantSeq, seq)
	}
}

func TestParseEntryID_Errors(t *testing.T) {
	for _, input := range []string{"", "not-valid", "2025-01", "xxxx-01-001"} {
		_, _, _, err := ParseEntryID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestReferenceSequence(t *testing.T) {
	stamp := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	seq := NewReferenceSequence(stamp, 41)

	assert.Equal(t, 41, seq.Peek())
	assert.Equal(t, "[2025-3] 41", seq.Next())
	assert.Equal(t, "[2025-3] 42", seq.Next())
	assert.Equal(t, 43, seq.Peek())
}

func TestNewBatchID(t *testing.T) {
	a := NewBatchID()
	b := NewBatchID()
	assert.NotEqual(t, a, b)

	_, err := ulid.ParseStrict(a)
	assert.NoError(t, err)
}

func TestBatchIDContext(t *testing.T) {
	assert.Empty(t, BatchIDFromContext(context.Background()))

	ctx := ContextWithBatchID(context.Background(), "01HZX")
	assert.Equal(t, "01HZX", BatchIDFromContext(ctx))
}
