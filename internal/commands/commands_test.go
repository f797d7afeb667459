package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerimport/internal/accounts"
	"github.com/cleared-dev/ledgerimport/internal/commands"
	"github.com/cleared-dev/ledgerimport/internal/config"
	"github.com/cleared-dev/ledgerimport/internal/importlog"
	"github.com/cleared-dev/ledgerimport/internal/journal"
)

const bankCSV = `Date,Account,Amount,Payee,Memo
2024-03-01,Chequing,-45.20,Alex,LOBLAWS 1234
2024-03-02,Chequing,-100.00,Alex-50,HYDRO ONE
2024-03-05,Chequing,2500.00,Sam,PAYROLL ACME
2024-03-06,Nowhere,-9.99,Sam,MYSTERY
`

const aprilCSV = `Date,Account,Amount,Payee,Memo
2024-04-02,Savings,12.34,Alex,INTEREST APRIL
2024-04-09,Chequing,-60.00,Sam,PETRO CANADA 0042
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func initLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := run(t, "init", dir, "--name", "Household", "--no-git")
	require.NoError(t, err)
	return dir
}

func writeImport(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "import", name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func journalTransactions(t *testing.T, dir string) int {
	t.Helper()
	chart, err := accounts.Load(dir)
	require.NoError(t, err)
	txns, err := journal.NewService(dir, chart).ListTransactions(t.Context())
	require.NoError(t, err)
	return len(txns)
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initLedger(t)

	for _, d := range []string{"accounts", "logs", "import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Household", cfg.Ledger.Name)
	assert.Equal(t, []string{"Alex", "Sam"}, cfg.ActorNames())
	assert.False(t, cfg.Git.AutoCommit)

	chart, err := accounts.Load(dir)
	require.NoError(t, err)
	assert.True(t, chart.Exists("Expenses:Alex:NoCategory"))
	assert.True(t, chart.Exists("Expenses:Sam:NoCategory"))
}

func TestInit_Actors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "init", dir, "--name", "Solo", "--actor", "Kim", "--currency", "USD", "--no-git")
	require.NoError(t, err)

	chart, err := accounts.Load(dir)
	require.NoError(t, err)
	acct, ok := chart.Get("Expenses:Kim:Groceries")
	require.True(t, ok)
	assert.Equal(t, "USD", acct.Currency)
	assert.False(t, chart.Exists("Expenses:Alex:Groceries"))
}

func TestInit_RequiresName(t *testing.T) {
	_, err := run(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}

func TestInit_GitRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	out, err := run(t, "init", dir, "--name", "Household")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized ledger at")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	msg, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "init: Initialize Household")
}

func TestImport_DryRun(t *testing.T) {
	dir := initLedger(t)
	path := writeImport(t, dir, "bank.csv", bankCSV)

	out, err := run(t, "import", path, "--root", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "bank.csv: 3 new, 0 duplicate, 1 rejected (dry run)")
	assert.Equal(t, 0, journalTransactions(t, dir))

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImport_CommitsAndLogs(t *testing.T) {
	dir := initLedger(t)
	path := writeImport(t, dir, "bank.csv", bankCSV)
	metricsFile := filepath.Join(t.TempDir(), "import.prom")

	out, err := run(t, "import", path, "--root", dir, "--show", "--metrics-file", metricsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Final count:")
	assert.Contains(t, out, "bank.csv: 3 new, 0 duplicate, 1 rejected")
	assert.Equal(t, 3, journalTransactions(t, dir))

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bank.csv", entries[0].Source)
	assert.Equal(t, 3, entries[0].Accepted)
	assert.NotEmpty(t, entries[0].BatchID)
	assert.Empty(t, entries[0].CommitHash)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "ledgerimport_rows_total")

	// Importing the same file again finds only duplicates.
	out, err = run(t, "import", path, "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing new (3 duplicate, 1 rejected)")
	assert.Equal(t, 3, journalTransactions(t, dir))
}

func TestImport_MissingFile(t *testing.T) {
	dir := initLedger(t)
	_, err := run(t, "import", filepath.Join(dir, "import", "missing.csv"), "--root", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestImport_NotALedger(t *testing.T) {
	_, err := run(t, "import", "bank.csv", "--root", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestScan_MovesProcessedFiles(t *testing.T) {
	dir := initLedger(t)
	writeImport(t, dir, "march.csv", bankCSV)
	writeImport(t, dir, "april.csv", aprilCSV)

	out, err := run(t, "scan", "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "march.csv: 3 new")
	assert.Contains(t, out, "april.csv: 2 new, 0 duplicate, 0 rejected")
	assert.Equal(t, 5, journalTransactions(t, dir))

	for _, name := range []string{"march.csv", "april.csv"} {
		_, err := os.Stat(filepath.Join(dir, "import", "processed", name))
		require.NoError(t, err, "%s should be moved to processed", name)
		_, err = os.Stat(filepath.Join(dir, "import", name))
		assert.True(t, os.IsNotExist(err), "%s should leave the inbox", name)
	}

	out, err = run(t, "scan", "--root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No files to import.")
}

func TestAccounts_List(t *testing.T) {
	dir := initLedger(t)

	out, err := run(t, "accounts", "--root", dir, "--prefix", "Bank Accounts:")
	require.NoError(t, err)
	assert.Contains(t, out, "Bank Accounts:Chequing")
	assert.Contains(t, out, "Bank Accounts:Savings")
	assert.NotContains(t, out, "Expenses:")
}
