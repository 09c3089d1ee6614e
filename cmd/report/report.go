// Package report summarizes the history held in a Money Manager backup.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"rbc2mm/cmd/root"
	"rbc2mm/internal/mmbak"

	"github.com/spf13/cobra"
)

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report <backup.mmbak>",
	Short: "Summarize income, expenses, transfers and currencies of a .mmbak backup",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		logger := root.GetLogrusAdapter()

		backup, err := mmbak.Open(args[0], logger)
		if err != nil {
			logger.Fatalf("Error opening backup: %v", err)
		}
		defer backup.Close()

		movements, err := backup.Movements(ctx)
		if err != nil {
			logger.Fatalf("Error reading movements: %v", err)
		}
		currencies, err := backup.Currencies(ctx)
		if err != nil {
			logger.Fatalf("Error reading currencies: %v", err)
		}
		if err := Write(cmd.OutOrStdout(), movements, currencies); err != nil {
			logger.Fatalf("Error writing report: %v", err)
		}
	},
}

// Write renders the movement summary followed by the currency table.
func Write(w io.Writer, movements []mmbak.MovementSummary, currencies mmbak.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tCOUNT\tTOTAL\tFIRST\tLAST")
	for _, m := range movements {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", m.Kind, m.Count, m.Total.StringFixed(2), day(m.First), day(m.Last))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Currencies:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(currencies.Columns, "\t"))
	for _, r := range currencies.Rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
