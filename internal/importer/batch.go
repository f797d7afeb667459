package importer

import (
	"slices"
	"time"

	"github.com/cleared-dev/ledgerimport/internal/matcher"
	"github.com/cleared-dev/ledgerimport/internal/model"
)

// Stats counts the outcome of one import.
type Stats struct {
	Accounts        int // accounts in the catalog
	Rows            int // data rows in the file
	Ignored         int
	Blank           int
	Converted       int // rows turned into transactions
	Accepted        int
	Duplicates      int
	AutoCategorized int
	Uncategorized   int
	Errors          int
}

// Batch is the immutable result of one import run.
type Batch struct {
	id            string
	source        string
	created       time.Time
	accepted      []model.Transaction
	duplicates    []model.Transaction
	errors        []RowError
	auto          []matcher.Mapping
	uncategorized []matcher.Mapping
	stats         Stats
}

// ID returns the batch ID stamped on committed journal legs.
func (b *Batch) ID() string { return b.id }

// Source returns the imported file name.
func (b *Batch) Source() string { return b.source }

// Created returns when the batch was built.
func (b *Batch) Created() time.Time { return b.created }

// Stats returns the batch counters.
func (b *Batch) Stats() Stats { return b.stats }

// Accepted returns the transactions that will be committed.
func (b *Batch) Accepted() []model.Transaction { return cloneTransactions(b.accepted) }

// Duplicates returns the transactions skipped as already present.
func (b *Batch) Duplicates() []model.Transaction { return cloneTransactions(b.duplicates) }

// Errors returns the rows that failed to convert.
func (b *Batch) Errors() []RowError { return slices.Clone(b.errors) }

// AutoCategorized returns memo to account mappings picked by the matcher.
func (b *Batch) AutoCategorized() []matcher.Mapping { return slices.Clone(b.auto) }

// Uncategorized returns memos that fell back to an uncategorized bucket.
func (b *Batch) Uncategorized() []matcher.Mapping { return slices.Clone(b.uncategorized) }

// Empty reports whether there is nothing to commit.
func (b *Batch) Empty() bool { return len(b.accepted) == 0 }

func cloneTransactions(ts []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(ts))
	for i, t := range ts {
		out[i] = t.WithEntries(t.Entries...)
	}
	return out
}
