package model

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Entry moves Amount from the debit account to the credit account.
// The credit side receives +Amount and the debit side -Amount, so an entry
// always balances on its own.
type Entry struct {
	Debit  Account
	Credit Account
	Amount decimal.Decimal // non-negative
	Memo   string
}

// NewEntry builds an entry from a signed statement amount. A positive amount
// credits base and debits counter; a negative amount is the reverse.
func NewEntry(amount decimal.Decimal, base, counter Account, memo string) Entry {
	if amount.IsPositive() {
		return Entry{Debit: counter, Credit: base, Amount: amount, Memo: memo}
	}
	return Entry{Debit: base, Credit: counter, Amount: amount.Abs(), Memo: memo}
}

// CreditAmount is the signed change applied to the credit account.
func (e Entry) CreditAmount() decimal.Decimal { return e.Amount }

// DebitAmount is the signed change applied to the debit account.
func (e Entry) DebitAmount() decimal.Decimal { return e.Amount.Neg() }

// AmountFor returns the signed change the entry applies to acct.
func (e Entry) AmountFor(acct Account) decimal.Decimal {
	total := decimal.Zero
	if e.Credit.Path == acct.Path {
		total = total.Add(e.CreditAmount())
	}
	if e.Debit.Path == acct.Path {
		total = total.Add(e.DebitAmount())
	}
	return total
}

func (e Entry) key() string {
	return e.Debit.Path + "\x00" + e.Credit.Path + "\x00" + e.Amount.String()
}

// Transaction is a dated, balanced set of entries. Treat values as immutable:
// use the With* methods to derive modified copies.
type Transaction struct {
	Date    time.Time
	Memo    string
	Payee   string
	Number  string
	Entries []Entry
}

// IsSplit reports whether the transaction has more than one entry.
func (t Transaction) IsSplit() bool {
	return len(t.Entries) > 1
}

// Balance returns the sum of all signed entry amounts. Zero for a valid transaction.
func (t Transaction) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.CreditAmount()).Add(e.DebitAmount())
	}
	return total
}

// Total returns the sum of entry amounts.
func (t Transaction) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.Amount)
	}
	return total
}

// Accounts returns every account touched, in first-seen order.
func (t Transaction) Accounts() []Account {
	seen := make(map[string]bool, len(t.Entries)*2)
	var out []Account
	for _, e := range t.Entries {
		for _, a := range [2]Account{e.Debit, e.Credit} {
			if a.IsZero() || seen[a.Path] {
				continue
			}
			seen[a.Path] = true
			out = append(out, a)
		}
	}
	return out
}

// Touches reports whether any entry references the account path.
func (t Transaction) Touches(path string) bool {
	for _, e := range t.Entries {
		if e.Debit.Path == path || e.Credit.Path == path {
			return true
		}
	}
	return false
}

// CommonAccount returns the account shared by every entry.
func (t Transaction) CommonAccount() (Account, bool) {
	if len(t.Entries) == 0 {
		return Account{}, false
	}
	for _, cand := range [2]Account{t.Entries[0].Debit, t.Entries[0].Credit} {
		shared := true
		for _, e := range t.Entries[1:] {
			if e.Debit.Path != cand.Path && e.Credit.Path != cand.Path {
				shared = false
				break
			}
		}
		if shared {
			return cand, true
		}
	}
	return Account{}, false
}

// EqualIgnoreDate reports whether t and o have the same payee, memo and
// entries, ignoring date, reference number and entry order.
func (t Transaction) EqualIgnoreDate(o Transaction) bool {
	if t.Payee != o.Payee || t.Memo != o.Memo || len(t.Entries) != len(o.Entries) {
		return false
	}
	a := entryKeys(t.Entries)
	b := entryKeys(o.Entries)
	return slices.Equal(a, b)
}

func entryKeys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key()
	}
	slices.Sort(keys)
	return keys
}

// WithNumber returns a copy of t with a new reference number.
func (t Transaction) WithNumber(number string) Transaction {
	c := t.clone()
	c.Number = number
	return c
}

// WithMemo returns a copy of t with a new memo.
func (t Transaction) WithMemo(memo string) Transaction {
	c := t.clone()
	c.Memo = memo
	return c
}

// WithPayee returns a copy of t with a new payee.
func (t Transaction) WithPayee(payee string) Transaction {
	c := t.clone()
	c.Payee = payee
	return c
}

// WithEntries returns a copy of t holding a copy of entries.
func (t Transaction) WithEntries(entries ...Entry) Transaction {
	c := t
	c.Entries = slices.Clone(entries)
	return c
}

func (t Transaction) clone() Transaction {
	c := t
	c.Entries = slices.Clone(t.Entries)
	return c
}

// String renders a one-line description for logs and summaries.
func (t Transaction) String() string {
	var b strings.Builder
	b.WriteString(t.Date.Format("2006-01-02"))
	b.WriteString(" ")
	b.WriteString(t.Number)
	b.WriteString(" ")
	b.WriteString(t.Payee)
	b.WriteString(" '")
	b.WriteString(t.Memo)
	b.WriteString("'")
	for _, e := range t.Entries {
		b.WriteString(" [")
		b.WriteString(e.Debit.Path)
		b.WriteString(" -> ")
		b.WriteString(e.Credit.Path)
		b.WriteString(" ")
		b.WriteString(e.Amount.StringFixed(2))
		b.WriteString("]")
	}
	return b.String()
}
