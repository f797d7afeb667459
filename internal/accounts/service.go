package accounts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/ledgerimport/internal/model"
)

// ChartFile is the chart of accounts location relative to the ledger root.
const ChartFile = "accounts/chart-of-accounts.csv"

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byPath   map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byPath := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byPath[a.Path] = a
	}
	return &Service{accounts: accounts, byPath: byPath}
}

// Load reads chart-of-accounts.csv from a ledger root and returns a Service.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, ChartFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// ListAccounts returns all accounts. It satisfies Lister.
func (s *Service) ListAccounts(context.Context) ([]model.Account, error) {
	return s.accounts, nil
}

// Get returns an account by path.
func (s *Service) Get(path string) (model.Account, bool) {
	a, ok := s.byPath[path]
	return a, ok
}

// Exists reports whether an account path exists.
func (s *Service) Exists(path string) bool {
	_, ok := s.byPath[path]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type() == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(root string) error {
	path := filepath.Join(root, ChartFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
