package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus represents the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusImported EntryStatus = "imported"
	StatusManual   EntryStatus = "manual"
	StatusVoided   EntryStatus = "voided"
)

// Leg is a single row in journal.csv (one side of an entry).
type Leg struct {
	EntryID     string // "YYYY-MM-NNNx" where x = a,b,c...
	Date        time.Time
	Account     string // account path
	Description string
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	Payee       string
	Reference   string
	Status      EntryStatus
	BatchID     string
}

// EntryGroup returns the base entry ID (without leg suffix).
// "2025-01-001a" -> "2025-01-001"
func (l Leg) EntryGroup() string {
	i := len(l.EntryID)
	for i > 0 && l.EntryID[i-1] >= 'a' && l.EntryID[i-1] <= 'z' {
		i--
	}
	return l.EntryID[:i]
}

// LegIndex returns the zero-based leg position encoded in the suffix
// ("a" -> 0, "b" -> 1, ..., "aa" -> 26), or -1 without a suffix.
func (l Leg) LegIndex() int {
	suffix := l.EntryID[len(l.EntryGroup()):]
	if suffix == "" {
		return -1
	}
	n := 0
	for _, c := range suffix {
		n = n*26 + int(c-'a') + 1
	}
	return n - 1
}

// IsDebit reports whether the leg carries a debit amount.
func (l Leg) IsDebit() bool {
	return !l.Debit.IsZero()
}
