package importer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerimport/internal/id"
	"github.com/cleared-dev/ledgerimport/internal/model"
)

// Builder assembles balanced transactions and numbers accepted ones.
type Builder struct {
	refs *id.ReferenceSequence
}

// NewBuilder numbers transactions "[year-month] n" from stamp, starting at
// start.
func NewBuilder(stamp time.Time, start int) *Builder {
	return &Builder{refs: id.NewReferenceSequence(stamp, start)}
}

// Build returns an unnumbered transaction over entries. The entries must move
// exactly amount through base, signed as on the statement; otherwise Build
// returns ErrUnbalanced.
func (b *Builder) Build(date time.Time, memo, payee string, base model.Account, amount decimal.Decimal, entries []model.Entry) (model.Transaction, error) {
	if len(entries) == 0 {
		return model.Transaction{}, fmt.Errorf("%w: no entries", ErrUnbalanced)
	}
	t := model.Transaction{Date: date, Memo: memo, Payee: payee}.WithEntries(entries...)
	moved := decimal.Zero
	for _, e := range t.Entries {
		if e.Amount.IsNegative() {
			return model.Transaction{}, fmt.Errorf("%w: negative entry amount %s", ErrUnbalanced, e.Amount)
		}
		moved = moved.Add(e.AmountFor(base))
	}
	if !moved.Equal(amount) {
		return model.Transaction{}, fmt.Errorf("%w: entries move %s through %s, statement says %s",
			ErrUnbalanced, moved, base.Path, amount)
	}
	return t, nil
}

// Number stamps t with the next reference number.
func (b *Builder) Number(t model.Transaction) model.Transaction {
	return t.WithNumber(b.refs.Next())
}

// Next returns the counter the next Number call will use.
func (b *Builder) Next() int {
	return b.refs.Peek()
}
