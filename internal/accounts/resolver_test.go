package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerimport/internal/model"
)

// stubLister returns a fixed sequence of account lists, one per call.
type stubLister struct {
	results [][]model.Account
	err     error
	calls   int
}

func (s *stubLister) ListAccounts(context.Context) ([]model.Account, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls - 1
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i], nil
}

func testResolverConfig() ResolverConfig {
	cfg := DefaultResolverConfig()
	cfg.ExcludeMarker = "_Archive"
	cfg.InitialInterval = time.Millisecond
	cfg.MaxInterval = 2 * time.Millisecond
	return cfg
}

func sampleCatalog() []model.Account {
	return []model.Account{
		{Path: "Bank Accounts:Chequing"},
		{Path: "Bank Accounts:Savings"},
		{Path: "Bank Accounts:Old Chequing_Archive"},
		{Path: "Liabilities:Mastercard"},
	}
}

func TestResolver_ExactPathThenPrefix(t *testing.T) {
	r := NewResolver(&stubLister{results: [][]model.Account{sampleCatalog()}}, testResolverConfig())
	ctx := context.Background()

	acct, err := r.Resolve(ctx, "Liabilities:Mastercard")
	require.NoError(t, err)
	assert.Equal(t, "Liabilities:Mastercard", acct.Path)

	acct, err = r.Resolve(ctx, "Chequing")
	require.NoError(t, err)
	assert.Equal(t, "Bank Accounts:Chequing", acct.Path)

	acct, err = r.Resolve(ctx, " Savings ")
	require.NoError(t, err)
	assert.Equal(t, "Bank Accounts:Savings", acct.Path)
}

func TestResolver_NotFound(t *testing.T) {
	r := NewResolver(&stubLister{results: [][]model.Account{sampleCatalog()}}, testResolverConfig())

	_, err := r.Resolve(context.Background(), "Brokerage")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestResolver_ExcludesMarkedAccounts(t *testing.T) {
	r := NewResolver(&stubLister{results: [][]model.Account{sampleCatalog()}}, testResolverConfig())
	ctx := context.Background()

	_, err := r.Resolve(ctx, "Old Chequing_Archive")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	accts, err := r.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accts, 3)
}

func TestResolver_LazyAndCached(t *testing.T) {
	lister := &stubLister{results: [][]model.Account{sampleCatalog()}}
	r := NewResolver(lister, testResolverConfig())
	assert.Equal(t, 0, lister.calls, "construction must not touch the ledger")

	ctx := context.Background()
	_, err := r.Resolve(ctx, "Chequing")
	require.NoError(t, err)
	_, err = r.Lookup(ctx, "Liabilities:Mastercard")
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	r.Reset()
	require.NoError(t, r.Load(ctx))
	assert.Equal(t, 2, lister.calls)
}

func TestResolver_RetriesEmptyCatalog(t *testing.T) {
	lister := &stubLister{results: [][]model.Account{nil, nil, sampleCatalog()}}
	r := NewResolver(lister, testResolverConfig())

	require.NoError(t, r.Load(context.Background()))
	assert.Equal(t, 3, lister.calls)
}

func TestResolver_GivesUpOnEmptyCatalog(t *testing.T) {
	lister := &stubLister{results: [][]model.Account{nil}}
	r := NewResolver(lister, testResolverConfig())

	err := r.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
	assert.Equal(t, 4, lister.calls, "one attempt plus MaxRetries")
}

func TestResolver_ListErrorIsPermanent(t *testing.T) {
	lister := &stubLister{err: errors.New("disk on fire")}
	r := NewResolver(lister, testResolverConfig())

	err := r.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, 1, lister.calls)
}

func TestResolver_ServiceAsLister(t *testing.T) {
	svc := NewService(DefaultChart("CAD", "Alex", "Sam"))
	r := NewResolver(svc, testResolverConfig())

	acct, err := r.Lookup(context.Background(), "Expenses:Sam:NoCategory")
	require.NoError(t, err)
	assert.Equal(t, "CAD", acct.Currency)
}
