package model

import "strings"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// PathSeparator separates segments of an account path.
const PathSeparator = ":"

// DefaultScale is the number of decimal places used when an account has none.
const DefaultScale = 2

// Account is a node in the ledger's account hierarchy, identified by its path
// ("Expenses:Alex:Groceries").
type Account struct {
	Path        string
	Currency    string
	Scale       int32
	Description string
}

// Name returns the last path segment.
func (a Account) Name() string {
	if i := strings.LastIndex(a.Path, PathSeparator); i >= 0 {
		return a.Path[i+1:]
	}
	return a.Path
}

// Parent returns the parent path, or "" for a top-level account.
func (a Account) Parent() string {
	if i := strings.LastIndex(a.Path, PathSeparator); i >= 0 {
		return a.Path[:i]
	}
	return ""
}

// Contains reports whether the account path contains s.
func (a Account) Contains(s string) bool {
	return strings.Contains(a.Path, s)
}

// IsZero reports whether a is the zero Account.
func (a Account) IsZero() bool {
	return a.Path == ""
}

// Type classifies the account from its top-level segment.
func (a Account) Type() AccountType {
	top := a.Path
	if i := strings.Index(top, PathSeparator); i >= 0 {
		top = top[:i]
	}
	switch strings.ToLower(top) {
	case "expenses", "expense":
		return AccountTypeExpense
	case "income", "revenue":
		return AccountTypeRevenue
	case "equity":
		return AccountTypeEquity
	case "liabilities", "liability", "credit cards":
		return AccountTypeLiability
	default:
		return AccountTypeAsset
	}
}

// IsExpense reports whether the path contains the expense marker.
// Matching is by substring so nested charts ("Household:Expenses:...") qualify.
func (a Account) IsExpense(marker string) bool {
	return marker != "" && strings.Contains(a.Path, marker)
}

// IsCreditCard reports whether the lowercased path contains any of markers.
// A marker like ":visa" therefore matches every segment that starts with
// "visa", including non-card accounts such as "Visas and Passports".
func (a Account) IsCreditCard(markers []string) bool {
	name := strings.ToLower(a.Path)
	for _, m := range markers {
		if m != "" && strings.Contains(name, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// AmountScale returns Scale, or DefaultScale when unset.
func (a Account) AmountScale() int32 {
	if a.Scale <= 0 {
		return DefaultScale
	}
	return a.Scale
}
