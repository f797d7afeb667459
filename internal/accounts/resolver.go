package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cleared-dev/ledgerimport/internal/model"
)

var (
	// ErrAccountNotFound is returned when a name resolves to no catalog account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmptyCatalog is returned when the ledger keeps reporting no accounts.
	ErrEmptyCatalog = errors.New("ledger returned no accounts")
)

// Lister supplies the ledger's accounts.
type Lister interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
}

// ResolverConfig controls catalog filtering and load retries.
type ResolverConfig struct {
	BankPrefix      string // prepended when a bare nickname is not a full path
	ExcludeMarker   string // accounts whose path contains this are never resolvable
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultResolverConfig returns the stock resolver settings.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		BankPrefix:      "Bank Accounts:",
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// Resolver maps literal account tokens from import files onto ledger accounts.
// The catalog is loaded on first use and cached until Reset.
type Resolver struct {
	lister Lister
	cfg    ResolverConfig

	mu      sync.Mutex
	catalog []model.Account
	byPath  map[string]model.Account
}

// NewResolver creates a Resolver. Nothing is loaded until first use.
func NewResolver(lister Lister, cfg ResolverConfig) *Resolver {
	return &Resolver{lister: lister, cfg: cfg}
}

// Load warms the catalog. It is a no-op once a non-empty catalog is cached.
func (r *Resolver) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx)
}

func (r *Resolver) loadLocked(ctx context.Context) error {
	if r.byPath != nil {
		return nil
	}

	b := backoff.NewExponentialBackOff()
	if r.cfg.InitialInterval > 0 {
		b.InitialInterval = r.cfg.InitialInterval
	}
	if r.cfg.MaxInterval > 0 {
		b.MaxInterval = r.cfg.MaxInterval
	}

	var accts []model.Account
	err := backoff.Retry(func() error {
		list, err := r.lister.ListAccounts(ctx)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("listing accounts: %w", err))
		}
		if len(list) == 0 {
			return ErrEmptyCatalog
		}
		accts = list
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(b, r.cfg.MaxRetries), ctx))
	if err != nil {
		return err
	}

	catalog := make([]model.Account, 0, len(accts))
	byPath := make(map[string]model.Account, len(accts))
	for _, a := range accts {
		if r.cfg.ExcludeMarker != "" && a.Contains(r.cfg.ExcludeMarker) {
			continue
		}
		catalog = append(catalog, a)
		byPath[a.Path] = a
	}
	r.catalog = catalog
	r.byPath = byPath
	return nil
}

// Resolve looks name up as an exact path, then under the bank prefix.
func (r *Resolver) Resolve(ctx context.Context, name string) (model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(ctx); err != nil {
		return model.Account{}, err
	}

	name = strings.TrimSpace(name)
	if a, ok := r.byPath[name]; ok {
		return a, nil
	}
	if r.cfg.BankPrefix != "" {
		if a, ok := r.byPath[r.cfg.BankPrefix+name]; ok {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("%w: %q", ErrAccountNotFound, name)
}

// Lookup resolves an exact account path.
func (r *Resolver) Lookup(ctx context.Context, path string) (model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(ctx); err != nil {
		return model.Account{}, err
	}
	if a, ok := r.byPath[path]; ok {
		return a, nil
	}
	return model.Account{}, fmt.Errorf("%w: %q", ErrAccountNotFound, path)
}

// Accounts returns the resolvable catalog in ledger order.
func (r *Resolver) Accounts(ctx context.Context) ([]model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(ctx); err != nil {
		return nil, err
	}
	return append([]model.Account(nil), r.catalog...), nil
}

// Reset drops the cached catalog so the next call reloads it.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = nil
	r.byPath = nil
}
