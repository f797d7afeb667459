package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/ledgerimport/internal/accounts"
	"github.com/cleared-dev/ledgerimport/internal/id"
	"github.com/cleared-dev/ledgerimport/internal/matcher"
	"github.com/cleared-dev/ledgerimport/internal/metrics"
	"github.com/cleared-dev/ledgerimport/internal/model"
)

// Ledger is the storage collaborator an import reads from and commits to.
type Ledger interface {
	accounts.Lister
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	AddTransaction(ctx context.Context, t model.Transaction) error
	RemoveTransaction(ctx context.Context, t model.Transaction) (bool, error)
}

// Options configures a Session.
type Options struct {
	Format       string // parser name, "standard" when empty
	Registry     *Registry
	DefaultPayee string   // split tag used when the Payee column is empty
	Actors       []string // known actors, in remainder order
	DateLayouts  []string
	Resolver     accounts.ResolverConfig
	Matcher      matcher.Config
	Clock        func() time.Time
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
}

// Session converts CSV files into transaction batches against one ledger.
type Session struct {
	ledger   Ledger
	index    *matcher.Index
	resolver *accounts.Resolver
	dates    *DateResolver
	opts     Options
	log      zerolog.Logger
}

// NewSession creates a session. index is shared state owned by the caller; it
// is trained on first use and invalidated after each commit.
func NewSession(ledger Ledger, index *matcher.Index, opts Options) *Session {
	if opts.Format == "" {
		opts.Format = "standard"
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry("")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.DefaultPayee == "" && len(opts.Actors) > 0 {
		opts.DefaultPayee = opts.Actors[0]
	}
	if opts.Matcher.ExcludeMarker == "" {
		opts.Matcher.ExcludeMarker = opts.Resolver.ExcludeMarker
	}
	return &Session{
		ledger:   ledger,
		index:    index,
		resolver: accounts.NewResolver(ledger, opts.Resolver),
		dates:    NewDateResolver(opts.DateLayouts...),
		opts:     opts,
		log:      opts.Logger.With().Str("component", "import").Logger(),
	}
}

// Run imports the file at path. The ledger is not modified.
func (s *Session) Run(ctx context.Context, path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer f.Close()
	return s.RunReader(ctx, f, path)
}

// RunReader imports CSV data from r; source names it in logs and the batch.
func (s *Session) RunReader(ctx context.Context, r io.Reader, source string) (*Batch, error) {
	start := time.Now()
	log := s.log.With().Str("source", source).Logger()

	parser := s.opts.Registry.Get(s.opts.Format)
	if parser == nil {
		return nil, fmt.Errorf("unknown import format %q", s.opts.Format)
	}
	records, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	catalog, err := s.resolver.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	s.opts.Metrics.Catalog(len(catalog))

	history, err := s.ledger.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	if !s.index.Built() {
		s.index.Build(history, catalog)
		log.Debug().Int("keys", s.index.Len()).Int("history", len(history)).Msg("trained memo index")
	}

	run := &run{
		session: s,
		log:     log,
		matcher: matcher.New(s.index, s.resolver, s.opts.Matcher, log),
		builder: NewBuilder(s.opts.Clock(), len(history)+1),
		filter:  NewDuplicateFilter(history),
	}

	kept, ignored, blank := Filter(records)
	for range ignored {
		s.opts.Metrics.Row("ignored")
	}
	for range blank {
		s.opts.Metrics.Row("blank")
	}

	for _, rec := range kept {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.opts.Metrics.Row("read")
		if err := run.convert(ctx, rec); err != nil {
			if !errors.As(err, new(RowError)) {
				return nil, err
			}
		}
	}

	b := &Batch{
		id:            id.NewBatchID(),
		source:        source,
		created:       s.opts.Clock(),
		accepted:      run.accepted,
		duplicates:    run.duplicates,
		errors:        run.errors,
		auto:          run.matcher.AutoCategorized().Mappings(),
		uncategorized: run.matcher.Uncategorized().Mappings(),
		stats: Stats{
			Accounts:        len(catalog),
			Rows:            len(records),
			Ignored:         ignored,
			Blank:           blank,
			Converted:       len(run.accepted) + len(run.duplicates),
			Accepted:        len(run.accepted),
			Duplicates:      len(run.duplicates),
			AutoCategorized: run.matcher.AutoCategorized().Hits(),
			Uncategorized:   run.matcher.Uncategorized().Hits(),
			Errors:          len(run.errors),
		},
	}
	s.opts.Metrics.ObserveImport(time.Since(start).Seconds())
	log.Info().
		Str("batch", b.id).
		Int("accepted", b.stats.Accepted).
		Int("duplicates", b.stats.Duplicates).
		Int("uncategorized", b.stats.Uncategorized).
		Int("errors", b.stats.Errors).
		Msg("import complete")
	return b, nil
}

// Commit writes the batch's accepted transactions to the ledger. On failure,
// transactions already written by this call are removed again.
func (s *Session) Commit(ctx context.Context, b *Batch) (int, error) {
	ctx = id.ContextWithBatchID(ctx, b.id)
	var written []model.Transaction
	for _, t := range b.accepted {
		if err := s.ledger.AddTransaction(ctx, t); err != nil {
			rolledBack := s.rollback(ctx, written)
			s.opts.Metrics.Commit(0, rolledBack)
			return 0, fmt.Errorf("committing %s: %w", t.Number, err)
		}
		written = append(written, t)
	}
	s.index.Invalidate()
	s.opts.Metrics.Commit(len(written), 0)
	s.log.Info().Str("batch", b.id).Int("written", len(written)).Msg("batch committed")
	return len(written), nil
}

func (s *Session) rollback(ctx context.Context, written []model.Transaction) int {
	removed := 0
	for i := len(written) - 1; i >= 0; i-- {
		ok, err := s.ledger.RemoveTransaction(ctx, written[i])
		if err != nil {
			s.log.Error().Err(err).Str("number", written[i].Number).Msg("rollback failed")
			continue
		}
		if ok {
			removed++
		}
	}
	return removed
}

// run holds the state of one RunReader call.
type run struct {
	session *Session
	log     zerolog.Logger
	matcher *matcher.Matcher
	builder *Builder
	filter  *DuplicateFilter

	accepted   []model.Transaction
	duplicates []model.Transaction
	errors     []RowError
}

func (r *run) convert(ctx context.Context, rec Record) error {
	t, err := r.build(ctx, rec)
	if err != nil {
		var re RowError
		if !errors.As(err, &re) {
			re = RowError{Line: rec.Line, Row: rec.String(), Err: err}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.errors = append(r.errors, re)
		r.session.opts.Metrics.RowError(re.Kind())
		r.log.Warn().Err(re.Err).Int("line", re.Line).Str("row", re.Row).Msg("skipping row")
		return re
	}

	if r.filter.IsDuplicate(t, r.accepted) {
		r.duplicates = append(r.duplicates, t)
		r.session.opts.Metrics.Transaction("duplicate")
		r.log.Debug().Int("line", rec.Line).Str("memo", t.Memo).Msg("duplicate")
		return nil
	}
	r.accepted = append(r.accepted, r.builder.Number(t))
	r.session.opts.Metrics.Transaction("accepted")
	return nil
}

func (r *run) build(ctx context.Context, rec Record) (model.Transaction, error) {
	opts := r.session.opts
	if rec.Err != nil {
		return model.Transaction{}, rec.Err
	}

	date, err := r.session.dates.Parse(rec.Get(ColDate))
	if err != nil {
		return model.Transaction{}, err
	}
	base, err := r.session.resolver.Resolve(ctx, rec.Get(ColAccount))
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := ParseAmount(rec.Get(ColAmount))
	if err != nil {
		return model.Transaction{}, err
	}
	if amount.IsZero() {
		return model.Transaction{}, fmt.Errorf("%w: zero amount", ErrInvalidAmount)
	}
	if scale := base.AmountScale(); !amount.Equal(amount.Round(scale)) {
		return model.Transaction{}, fmt.Errorf("%w: %s has more than %d decimals for %s", ErrInvalidAmount, amount, scale, base.Path)
	}
	payee := rec.Value(ColPayee, opts.DefaultPayee)
	shares, err := ParseSplitTag(payee, opts.Actors)
	if err != nil {
		return model.Transaction{}, err
	}

	memo := rec.Memo()
	keyword := rec.Get(ColKeyword)
	amounts := Allocate(amount, shares, base.AmountScale())

	blocked := []model.Account{base}
	entries := make([]model.Entry, 0, len(shares))
	for i, share := range shares {
		if amounts[i].IsZero() {
			continue
		}
		counter, matched, err := r.matcher.Match(ctx, matcher.Request{
			Memo:    memo,
			Keyword: keyword,
			Actor:   share.Actor,
			Blocked: blocked,
		})
		if err != nil {
			return model.Transaction{}, err
		}
		opts.Metrics.Match(matched)
		entries = append(entries, model.NewEntry(amounts[i], base, counter, memo))
		blocked = append(blocked, counter)
	}

	if len(entries) == 0 {
		return model.Transaction{}, fmt.Errorf("%w: %s rounds to zero for every share of %q", ErrInvalidAmount, amount, payee)
	}
	return r.builder.Build(date, memo, payee, base, amount, entries)
}
