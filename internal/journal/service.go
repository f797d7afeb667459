package journal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/cleared-dev/ledgerimport/internal/id"
	"github.com/cleared-dev/ledgerimport/internal/model"
)

// Chart is the chart of accounts the journal books against.
type Chart interface {
	AccountChecker
	ListAccounts(ctx context.Context) ([]model.Account, error)
	Get(path string) (model.Account, bool)
}

// Service stores transactions as legs in per-month journal.csv files.
type Service struct {
	root  string
	chart Chart
}

// NewService creates a journal Service.
func NewService(root string, chart Chart) *Service {
	return &Service{root: root, chart: chart}
}

// ListAccounts returns the chart of accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.chart.ListAccounts(ctx)
}

// ListTransactions returns every non-voided transaction, oldest month first.
func (s *Service) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	months, err := s.Months()
	if err != nil {
		return nil, err
	}

	var txns []model.Transaction
	for _, m := range months {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		legs, err := s.ReadMonth(m.Year, m.Month)
		if err != nil {
			return nil, err
		}
		month, err := s.transactions(legs)
		if err != nil {
			return nil, fmt.Errorf("journal %04d-%02d: %w", m.Year, m.Month, err)
		}
		txns = append(txns, month...)
	}
	return txns, nil
}

// AddTransaction appends t as a new entry in its month. Each Entry becomes a
// debit leg followed by a credit leg. The batch ID carried by ctx, if any, is
// stamped on every leg.
func (s *Service) AddTransaction(ctx context.Context, t model.Transaction) error {
	if len(t.Entries) == 0 {
		return fmt.Errorf("transaction %q has no entries", t.Number)
	}
	year := t.Date.Year()
	month := int(t.Date.Month())

	seq, err := s.NextEntrySeq(year, month)
	if err != nil {
		return err
	}
	entryID := id.FormatEntryID(year, month, seq)
	newLegs := Legs(entryID, t, model.StatusImported, id.BatchIDFromContext(ctx))

	// Read existing legs for validation.
	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return err
	}

	// Validate ALL legs together.
	allLegs := append(existing, newLegs...)
	if verrs := ValidateLegs(allLegs, s.chart, year, month); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	// Append to journal file (create dir + header if new).
	journalPath := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(journalPath); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(journalPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendLegs(f, newLegs); err != nil {
		return fmt.Errorf("appending legs: %w", err)
	}
	return nil
}

// RemoveTransaction deletes the entry matching t (same date, reference and
// contents) from its month file. It reports whether an entry was removed.
func (s *Service) RemoveTransaction(_ context.Context, t model.Transaction) (bool, error) {
	year := t.Date.Year()
	month := int(t.Date.Month())

	legs, err := s.ReadMonth(year, month)
	if err != nil {
		return false, err
	}

	target := ""
	for _, g := range groupLegs(legs) {
		got, err := s.transaction(g.legs)
		if err != nil {
			return false, fmt.Errorf("entry %s: %w", g.id, err)
		}
		if got.Number == t.Number && got.Date.Equal(t.Date) && got.EqualIgnoreDate(t) {
			target = g.id
			break
		}
	}
	if target == "" {
		return false, nil
	}

	kept := slices.DeleteFunc(legs, func(l model.Leg) bool { return l.EntryGroup() == target })
	if err := s.writeMonth(year, month, kept); err != nil {
		return false, err
	}
	return true, nil
}

// ReadMonth reads all legs for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.Leg, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	legs, err := ReadLegs(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return legs, nil
}

// NextEntrySeq returns the next available sequence number for a month.
func (s *Service) NextEntrySeq(year, month int) (int, error) {
	legs, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}

	maxSeq := 0
	for _, leg := range legs {
		_, _, seq, err := id.ParseEntryID(leg.EntryID)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

// Month identifies one journal file.
type Month struct {
	Year  int
	Month int
}

// Months lists the months that have a journal file, oldest first.
func (s *Service) Months() ([]Month, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, "[0-9][0-9][0-9][0-9]", "[0-1][0-9]", "journal.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	sort.Strings(matches)

	months := make([]Month, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(s.root, filepath.Dir(m))
		if err != nil {
			return nil, fmt.Errorf("listing journals: %w", err)
		}
		var mo Month
		if _, err := fmt.Sscanf(filepath.ToSlash(rel), "%4d/%2d", &mo.Year, &mo.Month); err != nil {
			continue
		}
		months = append(months, mo)
	}
	return months, nil
}

// Legs converts t into journal legs under entryID.
func Legs(entryID string, t model.Transaction, status model.EntryStatus, batchID string) []model.Leg {
	legs := make([]model.Leg, 0, 2*len(t.Entries))
	for i, e := range t.Entries {
		base := model.Leg{
			Date:        t.Date,
			Description: e.Memo,
			Payee:       t.Payee,
			Reference:   t.Number,
			Status:      status,
			BatchID:     batchID,
		}
		debit, credit := base, base
		debit.EntryID = id.FormatLegID(entryID, 2*i)
		debit.Account = e.Debit.Path
		debit.Debit = e.Amount
		credit.EntryID = id.FormatLegID(entryID, 2*i+1)
		credit.Account = e.Credit.Path
		credit.Credit = e.Amount
		legs = append(legs, debit, credit)
	}
	return legs
}

type legGroup struct {
	id   string
	legs []model.Leg
}

func groupLegs(legs []model.Leg) []legGroup {
	var groups []legGroup
	pos := make(map[string]int)
	for _, l := range legs {
		g := l.EntryGroup()
		i, ok := pos[g]
		if !ok {
			i = len(groups)
			pos[g] = i
			groups = append(groups, legGroup{id: g})
		}
		groups[i].legs = append(groups[i].legs, l)
	}
	return groups
}

func (s *Service) transactions(legs []model.Leg) ([]model.Transaction, error) {
	var txns []model.Transaction
	for _, g := range groupLegs(legs) {
		if g.legs[0].Status == model.StatusVoided {
			continue
		}
		t, err := s.transaction(g.legs)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", g.id, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// transaction rebuilds one transaction from the legs of an entry.
func (s *Service) transaction(legs []model.Leg) (model.Transaction, error) {
	legs = slices.Clone(legs)
	sort.SliceStable(legs, func(i, j int) bool { return legs[i].LegIndex() < legs[j].LegIndex() })
	if len(legs)%2 != 0 {
		return model.Transaction{}, fmt.Errorf("odd number of legs (%d)", len(legs))
	}

	first := legs[0]
	t := model.Transaction{
		Date:   first.Date,
		Memo:   first.Description,
		Payee:  first.Payee,
		Number: first.Reference,
	}
	for i := 0; i < len(legs); i += 2 {
		debit, credit := legs[i], legs[i+1]
		t.Entries = append(t.Entries, model.Entry{
			Debit:  s.account(debit.Account),
			Credit: s.account(credit.Account),
			Amount: debit.Debit,
			Memo:   debit.Description,
		})
	}
	return t, nil
}

func (s *Service) account(path string) model.Account {
	if a, ok := s.chart.Get(path); ok {
		return a
	}
	return model.Account{Path: path}
}

func (s *Service) writeMonth(year, month int, legs []model.Leg) error {
	path := s.monthPath(year, month)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating journal: %w", err)
	}
	if err := WriteLegs(f, legs); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("rewriting journal: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing journal: %w", err)
	}
	return nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.root, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}
