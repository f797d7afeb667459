package importer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Share is one actor's percentage of a transaction.
type Share struct {
	Actor   string
	Percent decimal.Decimal
}

// ParseSplitTag parses a payee split tag such as "A", "A-33" or "A-50,B-30".
// A bare name takes 100%. When the listed percentages fall short of 100 the
// first configured actor not already named takes the rest.
func ParseSplitTag(tag string, actors []string) ([]Share, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("%w: empty tag", ErrInvalidSplit)
	}

	var shares []Share
	total := decimal.Zero
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: %q has an empty share", ErrInvalidSplit, tag)
		}
		share, err := parseShare(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSplit, tag, err)
		}
		if slices.ContainsFunc(shares, func(s Share) bool { return s.Actor == share.Actor }) {
			return nil, fmt.Errorf("%w: %q names %s twice", ErrInvalidSplit, tag, share.Actor)
		}
		shares = append(shares, share)
		total = total.Add(share.Percent)
	}

	switch total.Cmp(hundred) {
	case 1:
		return nil, fmt.Errorf("%w: %q exceeds 100%%", ErrInvalidSplit, tag)
	case -1:
		rest, ok := otherActor(shares, actors)
		if !ok {
			return nil, fmt.Errorf("%w: %q leaves %s%% with no actor to take it",
				ErrInvalidSplit, tag, hundred.Sub(total))
		}
		shares = append(shares, Share{Actor: rest, Percent: hundred.Sub(total)})
	}
	return shares, nil
}

func parseShare(part string) (Share, error) {
	i := strings.LastIndex(part, "-")
	if i < 0 {
		return Share{Actor: part, Percent: hundred}, nil
	}
	actor := strings.TrimSpace(part[:i])
	if actor == "" {
		return Share{}, fmt.Errorf("missing actor in %q", part)
	}
	pct, err := decimal.NewFromString(strings.TrimSpace(part[i+1:]))
	if err != nil {
		return Share{}, fmt.Errorf("bad percentage in %q", part)
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return Share{}, fmt.Errorf("percentage out of range in %q", part)
	}
	return Share{Actor: actor, Percent: pct}, nil
}

func otherActor(shares []Share, actors []string) (string, bool) {
	for _, a := range actors {
		if !slices.ContainsFunc(shares, func(s Share) bool { return s.Actor == a }) {
			return a, true
		}
	}
	return "", false
}

// Allocate divides total between shares. Every share but the last is rounded
// half-to-even at scale; the last share takes the remainder so the parts
// always sum to total.
func Allocate(total decimal.Decimal, shares []Share, scale int32) []decimal.Decimal {
	if len(shares) == 0 {
		return nil
	}
	amounts := make([]decimal.Decimal, len(shares))
	allocated := decimal.Zero
	for i, s := range shares[:len(shares)-1] {
		amounts[i] = total.Mul(s.Percent).Div(hundred).RoundBank(scale)
		allocated = allocated.Add(amounts[i])
	}
	amounts[len(shares)-1] = total.Sub(allocated)
	return amounts
}
