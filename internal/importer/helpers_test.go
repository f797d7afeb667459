package importer

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerimport/internal/accounts"
	"github.com/cleared-dev/ledgerimport/internal/id"
	"github.com/cleared-dev/ledgerimport/internal/matcher"
	"github.com/cleared-dev/ledgerimport/internal/model"
)

var (
	chequing  = model.Account{Path: "Bank Accounts:Chequing", Scale: 2}
	visa      = model.Account{Path: "Liabilities:Visa", Scale: 2}
	alexFood  = model.Account{Path: "Expenses:Alex:Groceries", Scale: 2}
	alexGas   = model.Account{Path: "Expenses:Alex:Transportation", Scale: 2}
	alexNone  = model.Account{Path: "Expenses:Alex:NoCategory", Scale: 2}
	samGas    = model.Account{Path: "Expenses:Sam:Transportation", Scale: 2}
	samDining = model.Account{Path: "Expenses:Sam:Dining", Scale: 2}
	samNone   = model.Account{Path: "Expenses:Sam:NoCategory", Scale: 2}
	salary    = model.Account{Path: "Income:Salary", Scale: 2}
	brazil    = model.Account{Path: "Expenses:Alex_Brazil:Groceries", Scale: 2}
)

var importStamp = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func simple(date time.Time, memo, amount string, base, counter model.Account) model.Transaction {
	return model.Transaction{
		Date:    date,
		Memo:    memo,
		Payee:   "Alex",
		Entries: []model.Entry{model.NewEntry(amt(amount), base, counter, memo)},
	}
}

// memLedger is an in-memory Ledger.
type memLedger struct {
	accounts []model.Account
	txns     []model.Transaction
	failAt   int // AddTransaction fails on this call number (1-based) when > 0
	adds     int
	batchIDs []string
	listErr  error
}

func newMemLedger() *memLedger {
	return &memLedger{
		accounts: []model.Account{chequing, visa, alexFood, alexGas, alexNone, samGas, samDining, samNone, salary, brazil},
		txns: []model.Transaction{
			simple(day(2012, 11, 2), "LOBLAWS STORE 99", "-50.00", chequing, alexFood),
			simple(day(2012, 11, 3), "SHELL OIL 1", "-40.00", chequing, alexGas),
			simple(day(2012, 11, 4), "SHELL OIL 2", "-30.00", chequing, samGas),
			simple(day(2012, 11, 30), "PAYROLL ACME", "2000.00", chequing, salary),
		},
	}
}

func (l *memLedger) ListAccounts(context.Context) ([]model.Account, error) {
	if l.listErr != nil {
		return nil, l.listErr
	}
	return append([]model.Account(nil), l.accounts...), nil
}

func (l *memLedger) ListTransactions(context.Context) ([]model.Transaction, error) {
	return append([]model.Transaction(nil), l.txns...), nil
}

func (l *memLedger) AddTransaction(ctx context.Context, t model.Transaction) error {
	l.adds++
	if l.failAt > 0 && l.adds == l.failAt {
		return errors.New("disk full")
	}
	l.batchIDs = append(l.batchIDs, id.BatchIDFromContext(ctx))
	l.txns = append(l.txns, t)
	return nil
}

func (l *memLedger) RemoveTransaction(_ context.Context, t model.Transaction) (bool, error) {
	for i, x := range l.txns {
		if x.Number == t.Number && x.EqualIgnoreDate(t) {
			l.txns = append(l.txns[:i], l.txns[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func testOptions() Options {
	rc := accounts.DefaultResolverConfig()
	rc.ExcludeMarker = "_Brazil"
	rc.MaxRetries = 1
	rc.InitialInterval = time.Millisecond
	rc.MaxInterval = time.Millisecond

	return Options{
		Actors:   []string{"Alex", "Sam"},
		Resolver: rc,
		Matcher:  matcher.DefaultConfig(),
		Clock:    func() time.Time { return importStamp },
		Logger:   zerolog.Nop(),
	}
}

func matcherIndex() *matcher.Index {
	return matcher.NewIndex(matcher.DefaultIndexConfig())
}

func newTestSession(l *memLedger) (*Session, *matcher.Index) {
	ix := matcherIndex()
	return NewSession(l, ix, testOptions()), ix
}
