package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ovenledger/internal/ledger"
)

// timeLayout is how load and unload times are printed.
const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatThickness(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// newFormatter builds the OutputFormatter for cmd.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// renderBoard renders the oven summary and the in-oven detail as text.
// The result has no trailing newline.
func renderBoard(v ledger.View) string {
	var b strings.Builder

	b.WriteString("Oven Summary\n")
	if len(v.Summary) == 0 {
		b.WriteString("No cylinders in any oven.\n")
	} else {
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "OVEN\tCOUNT")
		for _, row := range v.Summary {
			fmt.Fprintf(tw, "%s\t%d\n", row.OvenNumber, row.Count)
		}
		tw.Flush()
	}

	b.WriteString("\nCurrently in the Oven\n")
	if len(v.InOven) == 0 {
		b.WriteString("All cylinders have been unloaded.\n")
	} else {
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tORDER\tCURRENT\tNEEDED\tOVEN\tOPERATOR\tMATERIAL\tTHICKNESS\tLOADED\tEST\tELAPSED\tSTATUS")
		for _, item := range v.InOven {
			r := item.Record
			status := "in oven"
			if item.Overdue {
				status = "OVERDUE"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				r.ID, r.OrderNumber, r.CurrentID, r.NeededID, r.OvenNumber,
				r.Operator, r.Material, formatThickness(r.Thickness),
				formatTime(r.LoadTime), r.EstimatedDuration, item.ElapsedMinutes, status)
		}
		tw.Flush()
	}

	fmt.Fprintf(&b, "\nOverdue: %d  Unloaded: %d", v.Overdue(), v.Unloaded)
	return b.String()
}
