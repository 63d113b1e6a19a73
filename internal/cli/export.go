package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ovenledger/internal/export"
	"github.com/roach88/ovenledger/internal/ledger"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out string
}

// ExportResult is the JSON payload of a successful export.
type ExportResult struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Regenerate the unloaded-cylinder export",
		Long: `Regenerate the export of unloaded cylinders from the ledger.

The configured export file is rewritten unless --out names another file.
The format follows the extension (.xlsx or .csv).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the export to this file instead")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	return withSession(cmd.Context(), opts.RootOptions, out, func(s *session) error {
		if opts.Out == "" {
			if err := s.ledger.ExportNow(cmd.Context()); err != nil {
				return out.Fail(err)
			}
			rows := len(s.ledger.Unloaded())
			return out.Success(ExportResult{Path: s.exporter.Path(), Rows: rows},
				fmt.Sprintf("Exported %d unloaded cylinder(s) to %s", rows, s.exporter.Path()))
		}

		w, err := export.New(opts.Out)
		if err != nil {
			return out.Fail(WrapExitError(ExitCommandError, "invalid export path", err))
		}
		rows := s.ledger.Unloaded()
		if err := w.Export(cmd.Context(), rows); err != nil {
			return out.Fail(&ledger.StorageWriteError{Op: ledger.OpExport, Path: w.Path(), Err: err})
		}
		return out.Success(ExportResult{Path: w.Path(), Rows: len(rows)},
			fmt.Sprintf("Exported %d unloaded cylinder(s) to %s", len(rows), w.Path()))
	})
}
