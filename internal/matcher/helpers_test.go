package matcher

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerimport/internal/accounts"
	"github.com/cleared-dev/ledgerimport/internal/model"
)

var (
	chequing   = model.Account{Path: "Bank Accounts:Chequing"}
	savings    = model.Account{Path: "Bank Accounts:Savings"}
	mastercard = model.Account{Path: "Liabilities:Mastercard"}
	visa       = model.Account{Path: "Liabilities:Visa"}
	alexFood   = model.Account{Path: "Expenses:Alex:Groceries"}
	alexTaxi   = model.Account{Path: "Expenses:Alex:Transportation"}
	alexNone   = model.Account{Path: "Expenses:Alex:NoCategory"}
	samFood    = model.Account{Path: "Expenses:Sam:Groceries"}
	samTaxi    = model.Account{Path: "Expenses:Sam:Transportation"}
	samNone    = model.Account{Path: "Expenses:Sam:NoCategory"}
	brazilFood = model.Account{Path: "Expenses:Alex_Brazil:Groceries"}
)

func catalog() []model.Account {
	return []model.Account{chequing, savings, mastercard, visa, alexFood, alexTaxi, alexNone, samFood, samTaxi, samNone, brazilFood}
}

// mapLookup resolves paths from a fixed catalog.
type mapLookup map[string]model.Account

func newLookup(accts ...model.Account) mapLookup {
	m := make(mapLookup, len(accts))
	for _, a := range accts {
		m[a.Path] = a
	}
	return m
}

func (m mapLookup) Lookup(_ context.Context, path string) (model.Account, error) {
	a, ok := m[path]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %q", accounts.ErrAccountNotFound, path)
	}
	return a, nil
}

func txn(memo string, amount string, base, counter model.Account) model.Transaction {
	return model.Transaction{
		Memo:    memo,
		Entries: []model.Entry{model.NewEntry(decimal.RequireFromString(amount), base, counter, memo)},
	}
}
