package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ovenledger/internal/ledger"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Cylinder ledger.NewCylinder
}

// AddResult is the JSON payload of a successful add.
type AddResult struct {
	Record ledger.Record `json:"record"`
	View   ledger.View   `json:"view"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a cylinder into an oven",
		Long: `Log a cylinder into an oven.

The load time is the current time. Every field is required; the oven must be
one of the configured ovens.

Example:
  ovenledger add --order O-1001 --current C-17 --needed C-18 \
    --oven "Oven 2" --duration 90 --operator Alice --material Steel --thickness 2.5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Cylinder.OrderNumber, "order", "", "order number")
	f.StringVar(&opts.Cylinder.CurrentID, "current", "", "current cylinder ID")
	f.StringVar(&opts.Cylinder.NeededID, "needed", "", "needed cylinder ID")
	f.StringVar(&opts.Cylinder.OvenNumber, "oven", "", "oven the cylinder goes into")
	f.IntVar(&opts.Cylinder.EstimatedDuration, "duration", 60, "estimated duration in minutes")
	f.StringVar(&opts.Cylinder.Operator, "operator", "", "operator name")
	f.StringVar(&opts.Cylinder.Material, "material", "", "material")
	f.Float64Var(&opts.Cylinder.Thickness, "thickness", 0, "thickness in mm")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	return withSession(cmd.Context(), opts.RootOptions, out, func(s *session) error {
		rec, err := s.ledger.AddCylinder(cmd.Context(), opts.Cylinder)
		warns, ok := warnings(err)
		if !ok {
			return out.Fail(err)
		}

		view := s.ledger.View()
		text := fmt.Sprintf("Added cylinder %s (order %s) to %s.\n\n%s",
			rec.ID, rec.OrderNumber, rec.OvenNumber, renderBoard(view))
		return out.Success(AddResult{Record: rec, View: view}, text, warns...)
	})
}
