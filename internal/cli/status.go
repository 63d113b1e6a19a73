package cli

import (
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what is in each oven",
		Long: `Show the oven summary and every cylinder still in an oven.

Elapsed minutes are computed against the current time; a cylinder whose
elapsed time exceeds its estimated duration is flagged OVERDUE.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}

	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	return withSession(cmd.Context(), opts, out, func(s *session) error {
		view := s.ledger.View()
		return out.Success(view, renderBoard(view))
	})
}
