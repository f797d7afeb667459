package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerimport/internal/importer"
	"github.com/cleared-dev/ledgerimport/internal/metrics"
)

func newImportCommand(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import one CSV file into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger(cmd, root)
			if err != nil {
				return err
			}

			m := metrics.New()
			s := l.session(opts.format, m)
			if _, err := l.importFile(cmd.Context(), s, args[0], opts, cmd.OutOrStdout()); err != nil {
				return err
			}
			if opts.metricsFile != "" {
				return m.WriteTextfile(opts.metricsFile)
			}
			return nil
		},
	}
	opts.register(cmd)

	return cmd
}

func newScanCommand(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Import every CSV in import/ and move it to import/processed/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger(cmd, root)
			if err != nil {
				return err
			}

			files, err := importer.Scan(l.root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No files to import.")
				return nil
			}

			start := time.Now()
			m := metrics.New()
			s := l.session(opts.format, m)
			for _, f := range files {
				if _, err := l.importFile(cmd.Context(), s, f.Path, opts, out); err != nil {
					return err
				}
				if opts.dryRun {
					continue
				}
				if err := importer.MarkProcessed(l.root, f.Name); err != nil {
					return err
				}
			}
			l.log.Info().Int("files", len(files)).Dur("elapsed", time.Since(start)).Msg("scan complete")
			if opts.metricsFile != "" {
				return m.WriteTextfile(opts.metricsFile)
			}
			return nil
		},
	}
	opts.register(cmd)

	return cmd
}
