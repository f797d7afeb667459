package importer

import "github.com/cleared-dev/ledgerimport/internal/model"

// DuplicateFilter finds candidates already present in the ledger history or
// earlier in the same batch. Dates and reference numbers are ignored.
type DuplicateFilter struct {
	byAccount map[string][]model.Transaction
}

// NewDuplicateFilter indexes history by every account each transaction touches.
func NewDuplicateFilter(history []model.Transaction) *DuplicateFilter {
	f := &DuplicateFilter{byAccount: make(map[string][]model.Transaction)}
	for _, t := range history {
		for _, a := range t.Accounts() {
			f.byAccount[a.Path] = append(f.byAccount[a.Path], t)
		}
	}
	return f
}

// IsDuplicate reports whether candidate equals, ignoring date, a history
// transaction touching one of its accounts or a transaction in batch.
func (f *DuplicateFilter) IsDuplicate(candidate model.Transaction, batch []model.Transaction) bool {
	for _, a := range candidate.Accounts() {
		for _, t := range f.byAccount[a.Path] {
			if t.EqualIgnoreDate(candidate) {
				return true
			}
		}
	}
	for _, t := range batch {
		if t.EqualIgnoreDate(candidate) {
			return true
		}
	}
	return false
}
