package importer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cleared-dev/ledgerimport/internal/matcher"
)

// WriteSummary prints the batch counters and memo mappings.
func (b *Batch) WriteSummary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	s := b.stats
	lines := []struct {
		label string
		n     int
	}{
		{"Accounts", s.Accounts},
		{"CSV transactions", s.Converted},
		{"Ignored rows", s.Ignored},
		{"Rejected rows", s.Errors},
		{"Auto-categorized", s.AutoCategorized},
		{"Uncategorized", s.Uncategorized},
		{"Duplicates", s.Duplicates},
		{"Final count", s.Accepted},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(tw, "%s:\t%d\n", l.label, l.n); err != nil {
			return err
		}
	}
	if err := writeMappings(tw, "Auto-categorized memos", b.auto); err != nil {
		return err
	}
	if err := writeMappings(tw, "Uncategorized memos", b.uncategorized); err != nil {
		return err
	}
	for _, e := range b.errors {
		if _, err := fmt.Fprintf(tw, "  ! %s\n", e.Error()); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeMappings(w io.Writer, title string, mappings []matcher.Mapping) error {
	if len(mappings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%s:\n", title); err != nil {
		return err
	}
	for _, m := range mappings {
		if _, err := fmt.Fprintf(w, "  %s\t-> %s\n", m.Memo, m.Account); err != nil {
			return err
		}
	}
	return nil
}
