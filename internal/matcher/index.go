package matcher

import (
	"sync"

	"github.com/cleared-dev/ledgerimport/internal/model"
)

const (
	// DefaultExpenseMarker identifies expense accounts by path substring.
	DefaultExpenseMarker = "Expenses"
	// DefaultExpenseFactor biases frequency scores toward expense accounts.
	DefaultExpenseFactor = 1.1
	// DefaultKeywordBoost is the score a keyword hint assigns.
	DefaultKeywordBoost = 10.0
)

// Candidate is one account scored under a memo key.
type Candidate struct {
	Account model.Account
	Score   float64
}

// scores keeps candidates in insertion order so ties resolve deterministically.
type scores struct {
	order []Candidate
	pos   map[string]int
}

func newScores() *scores {
	return &scores{pos: make(map[string]int)}
}

func (s *scores) add(a model.Account, delta float64) {
	if i, ok := s.pos[a.Path]; ok {
		s.order[i].Score += delta
		return
	}
	s.pos[a.Path] = len(s.order)
	s.order = append(s.order, Candidate{Account: a, Score: delta})
}

func (s *scores) set(a model.Account, score float64) {
	if i, ok := s.pos[a.Path]; ok {
		s.order[i].Score = score
		return
	}
	s.pos[a.Path] = len(s.order)
	s.order = append(s.order, Candidate{Account: a, Score: score})
}

// IndexConfig tunes index training.
type IndexConfig struct {
	Normalizer    Normalizer
	ExpenseMarker string
	ExpenseFactor float64
}

// DefaultIndexConfig returns the stock training settings.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		Normalizer:    NewNormalizer(DefaultKeyWords),
		ExpenseMarker: DefaultExpenseMarker,
		ExpenseFactor: DefaultExpenseFactor,
	}
}

// Index is the memo affinity table: memo key -> account -> score.
//
// It is built explicitly from ledger history and lives as long as its owner
// keeps it. Callers invalidate it when the history changes materially. All
// methods are safe for concurrent use.
type Index struct {
	cfg IndexConfig

	mu       sync.RWMutex
	built    bool
	keys     map[string]*scores
	accounts []model.Account
}

// NewIndex returns an empty, unbuilt index.
func NewIndex(cfg IndexConfig) *Index {
	if cfg.ExpenseFactor <= 0 {
		cfg.ExpenseFactor = 1
	}
	return &Index{cfg: cfg, keys: make(map[string]*scores)}
}

// Normalizer returns the key policy the index was trained with.
func (ix *Index) Normalizer() Normalizer {
	return ix.cfg.Normalizer
}

// Build replaces the index with scores learned from history. Every account a
// transaction touches gains 1.0 under the transaction's memo key, multiplied
// by the expense factor for expense accounts. accounts is the catalog used by
// Reinforce.
func (ix *Index) Build(history []model.Transaction, accounts []model.Account) {
	keys := make(map[string]*scores)
	for _, t := range history {
		key := ix.cfg.Normalizer.Normalize(t.Memo)
		if key == "" {
			continue
		}
		s, ok := keys[key]
		if !ok {
			s = newScores()
			keys[key] = s
		}
		for _, a := range t.Accounts() {
			inc := 1.0
			if a.IsExpense(ix.cfg.ExpenseMarker) {
				inc *= ix.cfg.ExpenseFactor
			}
			s.add(a, inc)
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.keys = keys
	ix.accounts = append([]model.Account(nil), accounts...)
	ix.built = true
}

// Reinforce overwrites the score of every known account whose path contains
// pathContains with boost, under key.
func (ix *Index) Reinforce(key, pathContains string, boost float64) {
	if key == "" || pathContains == "" {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, a := range ix.accounts {
		if !a.Contains(pathContains) {
			continue
		}
		s, ok := ix.keys[key]
		if !ok {
			s = newScores()
			ix.keys[key] = s
		}
		s.set(a, boost)
	}
}

// Lookup returns the candidates scored under key in insertion order.
func (ix *Index) Lookup(key string) []Candidate {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	s, ok := ix.keys[key]
	if !ok {
		return nil
	}
	return append([]Candidate(nil), s.order...)
}

// Built reports whether Build has run since construction or the last Invalidate.
func (ix *Index) Built() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.built
}

// Len returns the number of memo keys.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.keys)
}

// Invalidate drops all scores; the next owner call to Build retrains.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.keys = make(map[string]*scores)
	ix.accounts = nil
	ix.built = false
}
