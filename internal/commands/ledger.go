package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerimport/internal/accounts"
	"github.com/cleared-dev/ledgerimport/internal/config"
	"github.com/cleared-dev/ledgerimport/internal/gitops"
	"github.com/cleared-dev/ledgerimport/internal/importer"
	"github.com/cleared-dev/ledgerimport/internal/importlog"
	"github.com/cleared-dev/ledgerimport/internal/journal"
	"github.com/cleared-dev/ledgerimport/internal/logger"
	"github.com/cleared-dev/ledgerimport/internal/matcher"
	"github.com/cleared-dev/ledgerimport/internal/metrics"
)

// ledger bundles everything loaded from a ledger directory.
type ledger struct {
	root    string
	cfg     *config.Config
	log     zerolog.Logger
	chart   *accounts.Service
	journal *journal.Service
}

func openLedger(cmd *cobra.Command, opts *rootOptions) (*ledger, error) {
	root, err := filepath.Abs(opts.root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	chart, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}

	return &ledger{
		root:    root,
		cfg:     cfg,
		log:     logger.NewWithWriter(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.ErrOrStderr()),
		chart:   chart,
		journal: journal.NewService(root, chart),
	}, nil
}

// session builds an import session from the ledger configuration.
func (l *ledger) session(format string, m *metrics.Metrics) *importer.Session {
	cfg := l.cfg
	if format == "" {
		format = cfg.Import.Format
	}

	index := matcher.NewIndex(matcher.IndexConfig{
		Normalizer: matcher.Normalizer{
			Words: cfg.Import.MemoWords,
			Fold:  cfg.Import.FoldCase,
		},
		ExpenseMarker: cfg.Matching.ExpenseMarker,
		ExpenseFactor: cfg.Matching.ExpenseFactor,
	})

	resolver := accounts.DefaultResolverConfig()
	resolver.BankPrefix = cfg.Import.BankPrefix
	resolver.ExcludeMarker = cfg.Import.ExcludeMarker

	return importer.NewSession(l.journal, index, importer.Options{
		Format:       format,
		Registry:     importer.DefaultRegistry(cfg.Import.SourceAccount),
		DefaultPayee: cfg.Import.DefaultPayee,
		Actors:       cfg.ActorNames(),
		DateLayouts:  cfg.Import.DateLayouts,
		Resolver:     resolver,
		Matcher: matcher.Config{
			ExcludeMarker:     cfg.Import.ExcludeMarker,
			ExpenseMarker:     cfg.Matching.ExpenseMarker,
			KeywordBoost:      cfg.Matching.KeywordBoost,
			CreditCardMarkers: cfg.Matching.CreditCardMarkers,
			Uncategorized:     cfg.Buckets(),
		},
		Metrics: m,
		Logger:  l.log,
	})
}

// importOptions are the flags shared by import and scan.
type importOptions struct {
	format      string
	dryRun      bool
	show        bool
	metricsFile string
}

func (o *importOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", "", "input format (standard, chase); defaults to import.format")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "convert and report without writing the ledger")
	cmd.Flags().BoolVar(&o.show, "show", false, "print the memo to account mappings")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "write import metrics in node-exporter textfile format")
}

// importFile converts path and, unless dry-running, commits the batch, records
// it in the import log and commits the ledger to git.
func (l *ledger) importFile(ctx context.Context, s *importer.Session, path string, opts importOptions, out io.Writer) (*importer.Batch, error) {
	b, err := s.Run(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", filepath.Base(path), err)
	}

	st := b.Stats()
	if opts.show {
		if err := b.WriteSummary(out); err != nil {
			return nil, fmt.Errorf("writing summary: %w", err)
		}
	}

	if opts.dryRun {
		fmt.Fprintf(out, "%s: %d new, %d duplicate, %d rejected (dry run)\n",
			filepath.Base(path), st.Accepted, st.Duplicates, st.Errors)
		return b, nil
	}
	if b.Empty() {
		fmt.Fprintf(out, "%s: nothing new (%d duplicate, %d rejected)\n",
			filepath.Base(path), st.Duplicates, st.Errors)
		return b, nil
	}

	written, err := s.Commit(ctx, b)
	if err != nil {
		return nil, err
	}

	hash, err := l.commitGit(ctx, gitops.ImportMessage(path, st.Accepted, st.Duplicates, b.ID()))
	if err != nil {
		return nil, err
	}

	entry := importlog.Entry{
		Timestamp:     b.Created(),
		Source:        filepath.Base(path),
		BatchID:       b.ID(),
		Accepted:      written,
		Duplicates:    st.Duplicates,
		Uncategorized: st.Uncategorized,
		CommitHash:    hash,
	}
	if err := importlog.Append(l.root, []importlog.Entry{entry}); err != nil {
		l.log.Warn().Err(err).Msg("failed to write import log")
	}

	fmt.Fprintf(out, "%s: %d new, %d duplicate, %d rejected\n",
		filepath.Base(path), written, st.Duplicates, st.Errors)
	return b, nil
}

func (l *ledger) commitGit(ctx context.Context, message string) (string, error) {
	if !l.cfg.Git.AutoCommit || !gitops.IsRepo(l.root) {
		return "", nil
	}
	author := gitops.Author{Name: l.cfg.Git.AuthorName, Email: l.cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(ctx, l.root, message, author)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	l.log.Info().Str("commit", hash).Msg("ledger committed")
	return hash, nil
}
