package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerimport/internal/id"
	"github.com/cleared-dev/ledgerimport/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.EntryID, e.Description)
}

// AccountChecker tests whether an account path exists in the chart of accounts.
type AccountChecker interface {
	Exists(path string) bool
}

// ValidateLegs enforces the journal invariants on a set of legs for a given month.
func ValidateLegs(legs []model.Leg, accounts AccountChecker, year, month int) []ValidationError {
	var errs []ValidationError

	// Group legs by entry.
	groups := make(map[string][]model.Leg)
	var groupOrder []string
	for _, leg := range legs {
		g := leg.EntryGroup()
		if _, seen := groups[g]; !seen {
			groupOrder = append(groupOrder, g)
		}
		groups[g] = append(groups[g], leg)
	}

	// Invariant 1: Entry groups balance (sum(debits) == sum(credits) per group).
	for _, g := range groupOrder {
		groupLegs := groups[g]
		totalDebit := decimal.Zero
		totalCredit := decimal.Zero
		for _, leg := range groupLegs {
			totalDebit = totalDebit.Add(leg.Debit)
			totalCredit = totalCredit.Add(leg.Credit)
		}
		if !totalDebit.Equal(totalCredit) {
			errs = append(errs, ValidationError{
				Invariant:   1,
				EntryID:     g,
				Description: fmt.Sprintf("debits (%s) != credits (%s)", totalDebit.StringFixed(2), totalCredit.StringFixed(2)),
			})
		}
	}

	hundred := decimal.NewFromInt(100)
	for _, leg := range legs {
		// Invariant 2: Exactly one of debit/credit per row.
		hasDebit := !leg.Debit.IsZero()
		hasCredit := !leg.Credit.IsZero()
		if hasDebit == hasCredit {
			errs = append(errs, ValidationError{
				Invariant:   2,
				EntryID:     leg.EntryID,
				Description: "leg must have exactly one of debit or credit",
			})
		}

		// Invariant 3: Valid account references.
		if !accounts.Exists(leg.Account) {
			errs = append(errs, ValidationError{
				Invariant:   3,
				EntryID:     leg.EntryID,
				Description: fmt.Sprintf("unknown account %q", leg.Account),
			})
		}

		// Invariant 4: Date within month.
		if leg.Date.Year() != year || int(leg.Date.Month()) != month {
			errs = append(errs, ValidationError{
				Invariant:   4,
				EntryID:     leg.EntryID,
				Description: fmt.Sprintf("date %s not in %04d-%02d", leg.Date.Format(dateFormat), year, month),
			})
		}

		// Invariant 6: Exact decimals, no more than 2 decimal places.
		for _, side := range []struct {
			name string
			v    decimal.Decimal
		}{{"debit", leg.Debit}, {"credit", leg.Credit}} {
			if !side.v.IsZero() && !side.v.Mul(hundred).Equal(side.v.Mul(hundred).Floor()) {
				errs = append(errs, ValidationError{
					Invariant:   6,
					EntryID:     leg.EntryID,
					Description: fmt.Sprintf("%s %s has more than 2 decimal places", side.name, side.v),
				})
			}
		}
	}

	// Invariant 5: Unique, well-formed leg IDs.
	seen := make(map[string]bool, len(legs))
	for _, leg := range legs {
		if _, _, _, err := id.ParseEntryID(leg.EntryGroup()); err != nil {
			errs = append(errs, ValidationError{
				Invariant:   5,
				EntryID:     leg.EntryID,
				Description: fmt.Sprintf("invalid entry ID: %v", err),
			})
			continue
		}
		if seen[leg.EntryID] {
			errs = append(errs, ValidationError{
				Invariant:   5,
				EntryID:     leg.EntryID,
				Description: "duplicate leg ID",
			})
		}
		seen[leg.EntryID] = true
	}

	// Invariant 7: Legs pair up as debit then credit, so entries can be rebuilt.
	for _, g := range groupOrder {
		for _, leg := range groups[g] {
			i := leg.LegIndex()
			if i < 0 {
				errs = append(errs, ValidationError{
					Invariant:   7,
					EntryID:     leg.EntryID,
					Description: "missing leg suffix",
				})
				continue
			}
			wantDebit := i%2 == 0
			oneSide := leg.Debit.IsZero() != leg.Credit.IsZero()
			if oneSide && wantDebit != leg.IsDebit() {
				errs = append(errs, ValidationError{
					Invariant:   7,
					EntryID:     leg.EntryID,
					Description: fmt.Sprintf("leg %d must be a %s", i, sideName(wantDebit)),
				})
			}
		}
		if len(groups[g])%2 != 0 {
			errs = append(errs, ValidationError{
				Invariant:   7,
				EntryID:     g,
				Description: fmt.Sprintf("odd number of legs (%d)", len(groups[g])),
			})
		}
	}

	return errs
}

func sideName(debit bool) string {
	if debit {
		return "debit"
	}
	return "credit"
}
