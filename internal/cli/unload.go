package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ovenledger/internal/ledger"
)

// UnloadResult is the JSON payload of a successful unload.
type UnloadResult struct {
	Record ledger.Record `json:"record"`
	Export string        `json:"export"`
	View   ledger.View   `json:"view"`
}

// NewUnloadCommand creates the unload command.
func NewUnloadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unload <id>",
		Short: "Unload a cylinder from its oven",
		Long: `Unload a cylinder from its oven.

Stamps the unload time and regenerates the export of unloaded cylinders.
IDs are shown by the status command.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnload(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runUnload(opts *RootOptions, id string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	return withSession(cmd.Context(), opts, out, func(s *session) error {
		rec, err := s.ledger.UnloadCylinder(cmd.Context(), id)
		warns, ok := warnings(err)
		if !ok {
			return out.Fail(err)
		}

		view := s.ledger.View()
		text := fmt.Sprintf("Unloaded cylinder %s (order %s) from %s at %s.\n\n%s",
			rec.ID, rec.OrderNumber, rec.OvenNumber, formatTime(*rec.UnloadTime), renderBoard(view))
		return out.Success(UnloadResult{
			Record: rec,
			Export: s.exporter.Path(),
			View:   view,
		}, text, warns...)
	})
}
