package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Household", "CAD", "Alex", "Sam")
	cfg.Actors[1].Uncategorized = "Expenses:Sam:Misc"
	cfg.Import.SourceAccount = "Bank Accounts:Chequing"
	cfg.Import.DateLayouts = []string{"2006-01-02"}

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Ledger, got.Ledger)
	assert.Equal(t, cfg.Import, got.Import)
	assert.Equal(t, cfg.Matching, got.Matching)
	assert.Equal(t, cfg.Actors, got.Actors)
	assert.Equal(t, cfg.Git, got.Git)
	assert.Equal(t, cfg.Log, got.Log)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Ledger", "")

	assert.Equal(t, "My Ledger", cfg.Ledger.Name)
	assert.Equal(t, "CAD", cfg.Ledger.Currency)
	assert.Equal(t, "standard", cfg.Import.Format)
	assert.Equal(t, "Bank Accounts:", cfg.Import.BankPrefix)
	assert.Equal(t, "_Brazil", cfg.Import.ExcludeMarker)
	assert.Equal(t, 2, cfg.Import.MemoWords)
	assert.Equal(t, "Expenses", cfg.Matching.ExpenseMarker)
	assert.InDelta(t, 1.1, cfg.Matching.ExpenseFactor, 0.001)
	assert.InDelta(t, 10.0, cfg.Matching.KeywordBoost, 0.001)
	assert.Equal(t, []string{"mastercard", ":visa"}, cfg.Matching.CreditCardMarkers)
	assert.True(t, cfg.Git.AutoCommit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Actors)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	yml := "ledger:\n  name: Home\nactors:\n  - name: Alex\n  - name: Sam\n    uncategorized: Expenses:Sam:Misc\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Home", cfg.Ledger.Name)
	assert.Equal(t, "CAD", cfg.Ledger.Currency)
	assert.Equal(t, "Bank Accounts:", cfg.Import.BankPrefix)
	assert.Equal(t, []string{"Alex", "Sam"}, cfg.ActorNames())
	assert.Equal(t, map[string]string{"Sam": "Expenses:Sam:Misc"}, cfg.Buckets())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Home", "CAD", "Alex")))

	t.Setenv("LEDGERIMPORT_LOG_LEVEL", "debug")
	t.Setenv("LEDGERIMPORT_LOG_FORMAT", "json")
	t.Setenv("LEDGERIMPORT_DEFAULT_PAYEE", "Alex-50")
	t.Setenv("LEDGERIMPORT_BANK_PREFIX", "Assets:")
	t.Setenv("LEDGERIMPORT_EXCLUDE_MARKER", "_Old")
	t.Setenv("LEDGERIMPORT_GIT_AUTO_COMMIT", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "Alex-50", cfg.Import.DefaultPayee)
	assert.Equal(t, "Assets:", cfg.Import.BankPrefix)
	assert.Equal(t, "_Old", cfg.Import.ExcludeMarker)
	assert.False(t, cfg.Git.AutoCommit)
}

func TestLoad_BadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Home", "CAD")))
	t.Setenv("LEDGERIMPORT_GIT_AUTO_COMMIT", "maybe")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing environment")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("ledger: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test Ledger", "CAD", "Alex")
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Ledger")
	assert.Contains(t, contents, "bank_prefix:")
	assert.Contains(t, contents, "Bank Accounts:")
	assert.Contains(t, contents, "expense_factor: 1.1")
	assert.Contains(t, contents, "- name: Alex")
	assert.Contains(t, contents, "auto_commit: true")
	assert.NotContains(t, contents, "source_account")
}
