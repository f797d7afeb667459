package accounts

import "github.com/cleared-dev/ledgerimport/internal/model"

// DefaultChart returns a starter household chart for the given actors. Every
// actor gets an expense subtree with a NoCategory bucket.
func DefaultChart(currency string, actors ...string) []model.Account {
	if currency == "" {
		currency = "CAD"
	}
	acct := func(path, desc string) model.Account {
		return model.Account{Path: path, Currency: currency, Scale: model.DefaultScale, Description: desc}
	}

	chart := []model.Account{
		acct("Bank Accounts:Chequing", "Primary chequing account"),
		acct("Bank Accounts:Savings", "Savings account"),
		acct("Liabilities:Mastercard", "Shared credit card"),
		acct("Liabilities:Visa", "Travel credit card"),
		acct("Equity:Opening Balances", ""),
		acct("Income:Salary", ""),
		acct("Income:Interest", ""),
	}
	for _, actor := range actors {
		chart = append(chart,
			acct("Expenses:"+actor+":Groceries", ""),
			acct("Expenses:"+actor+":Dining", ""),
			acct("Expenses:"+actor+":Transportation", ""),
			acct("Expenses:"+actor+":Utilities", ""),
			acct("Expenses:"+actor+":NoCategory", "Uncategorized imports"),
		)
	}
	return chart
}
