package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAccountsCommand(root *rootOptions) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger(cmd, root)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, a := range l.chart.All() {
				if prefix != "" && !strings.HasPrefix(a.Path, prefix) {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Path, a.Currency, a.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list accounts under this path")

	return cmd
}
