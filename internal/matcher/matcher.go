package matcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/ledgerimport/internal/model"
)

// NoCategoryLeaf is the bucket leaf used when an actor has no configured bucket.
const NoCategoryLeaf = "NoCategory"

// AccountLookup resolves exact account paths.
type AccountLookup interface {
	Lookup(ctx context.Context, path string) (model.Account, error)
}

// Config controls candidate validation and fallback.
type Config struct {
	ExcludeMarker     string            // candidates containing this are ignored
	ExpenseMarker     string            // identifies expense accounts
	KeywordBoost      float64           // score assigned by keyword hints
	CreditCardMarkers []string          // lowercase substrings marking credit cards
	Uncategorized     map[string]string // actor -> uncategorized bucket path
}

// DefaultConfig returns the stock matcher settings.
func DefaultConfig() Config {
	return Config{
		ExpenseMarker:     DefaultExpenseMarker,
		KeywordBoost:      DefaultKeywordBoost,
		CreditCardMarkers: []string{"mastercard", ":visa"},
	}
}

// Request describes one counter-account lookup.
type Request struct {
	Memo    string          // full transaction memo
	Keyword string          // optional hint; candidates must contain it
	Actor   string          // owner of the expense
	Blocked []model.Account // accounts that must not be returned
}

// Matcher picks counter-accounts from an Index. A Matcher belongs to one
// import session: its reports accumulate across calls.
type Matcher struct {
	index    *Index
	accounts AccountLookup
	cfg      Config
	log      zerolog.Logger

	auto          *Report
	uncategorized *Report
}

// New creates a Matcher over a trained index.
func New(index *Index, accounts AccountLookup, cfg Config, log zerolog.Logger) *Matcher {
	if cfg.KeywordBoost <= 0 {
		cfg.KeywordBoost = DefaultKeywordBoost
	}
	if cfg.ExpenseMarker == "" {
		cfg.ExpenseMarker = DefaultExpenseMarker
	}
	return &Matcher{
		index:         index,
		accounts:      accounts,
		cfg:           cfg,
		log:           log,
		auto:          NewReport(),
		uncategorized: NewReport(),
	}
}

// Match returns the best counter-account for req. matched is false when the
// actor's uncategorized bucket was used instead.
func (m *Matcher) Match(ctx context.Context, req Request) (acct model.Account, matched bool, err error) {
	key := m.index.Normalizer().Normalize(req.Memo)
	if req.Keyword != "" {
		m.index.Reinforce(key, req.Keyword, m.cfg.KeywordBoost)
	}

	if best, ok := m.best(ctx, key, req); ok {
		m.log.Debug().Str("memo", req.Memo).Str("account", best.Path).Msg("account matched automatically")
		m.auto.Record(req.Memo, best.Path)
		return best, true, nil
	}

	bucket, err := m.accounts.Lookup(ctx, m.BucketPath(req.Actor))
	if err != nil {
		return model.Account{}, false, fmt.Errorf("uncategorized bucket for %q: %w", req.Actor, err)
	}
	m.uncategorized.Record(req.Memo, bucket.Path)
	return bucket, false, nil
}

// best scans candidates in insertion order; only a strictly higher score
// replaces the current choice. Candidates missing from the account catalog
// are skipped and the catalog's copy of the winner is returned.
func (m *Matcher) best(ctx context.Context, key string, req Request) (model.Account, bool) {
	var (
		result model.Account
		score  float64
		found  bool
	)
	for _, c := range m.index.Lookup(key) {
		if !m.valid(c.Account, req) {
			continue
		}
		if found && c.Score <= score {
			continue
		}
		acct, err := m.accounts.Lookup(ctx, c.Account.Path)
		if err != nil {
			m.log.Debug().Err(err).Str("account", c.Account.Path).Msg("skipping candidate outside the catalog")
			continue
		}
		result, score, found = acct, c.Score, true
	}
	return result, found
}

func (m *Matcher) valid(acct model.Account, req Request) bool {
	if m.cfg.ExcludeMarker != "" && acct.Contains(m.cfg.ExcludeMarker) {
		return false
	}
	// An expense may only land in its owner's subtree.
	if acct.IsExpense(m.cfg.ExpenseMarker) && !acct.Contains(req.Actor) {
		return false
	}
	if req.Keyword != "" && !acct.Contains(req.Keyword) {
		return false
	}
	isCard := acct.IsCreditCard(m.cfg.CreditCardMarkers)
	for _, b := range req.Blocked {
		if b.Path == acct.Path {
			return false
		}
		if isCard && b.IsCreditCard(m.cfg.CreditCardMarkers) {
			return false
		}
	}
	return true
}

// BucketPath returns the uncategorized bucket path for actor.
func (m *Matcher) BucketPath(actor string) string {
	if p, ok := m.cfg.Uncategorized[actor]; ok && p != "" {
		return p
	}
	return m.cfg.ExpenseMarker + model.PathSeparator + actor + model.PathSeparator + NoCategoryLeaf
}

// AutoCategorized returns the memos matched from history.
func (m *Matcher) AutoCategorized() *Report { return m.auto }

// Uncategorized returns the memos that fell back to a bucket.
func (m *Matcher) Uncategorized() *Report { return m.uncategorized }
