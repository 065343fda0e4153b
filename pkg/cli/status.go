package cli

import (
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Show whose turn it is and how the game stands",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			p := newPrinter(cmd.OutOrStdout(), opts)
			white, black := a.ctl.Players()
			p.Line("game:   %s", a.ctl.GameID())
			p.Line("result: %s", a.ctl.Result())
			p.Line("moves:  %d", len(a.ctl.MoveHistory()))
			p.Line("fen:    %s", a.ctl.FEN())
			p.Status(a.ctl.Status(), white, black)
			return nil
		},
	}
	return cmd
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:          "history",
		Short:        "List the moves played so far",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			p := newPrinter(cmd.OutOrStdout(), opts)
			history := a.ctl.MoveHistory()
			if len(history) == 0 {
				p.Dim("no moves yet")
				return nil
			}
			for i, rec := range history {
				n := i/2 + 1
				dots := "."
				if i%2 == 1 {
					dots = "..."
				}
				if verbose {
					p.Line("%d%s %-7s %-5s %s %s", n, dots, rec.Move, rec.UCI, rec.Timestamp, rec.FEN)
				} else {
					p.Line("%d%s %s", n, dots, rec.Move)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "long", "l", false, "include UCI, time and position")
	return cmd
}
