package cli

import (
	"fmt"
	"sort"
	"strings"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/spf13/cobra"

	"github.com/qnkhuat/chesswidget/pkg/session"
)

// mutation runs fn against a freshly opened app and reports the result.
func mutation(opts *RootOptions, cmd *cobra.Command, force bool, fn func(a *app, p *printer) (session.Outcome, error)) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	p := newPrinter(cmd.OutOrStdout(), opts)
	out, err := fn(a, p)
	if err != nil {
		return err
	}
	p.Saved(a.persist(out, force))
	white, black := a.ctl.Players()
	p.Status(a.ctl.Status(), white, black)
	return nil
}

// NewNewCommand creates the new command.
func NewNewCommand(opts *RootOptions) *cobra.Command {
	var (
		white, black string
		random, save bool
	)
	cmd := &cobra.Command{
		Use:          "new",
		Short:        "Start a new game",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if random {
				white = petname.Generate(2, "-")
				black = petname.Generate(2, "-")
			}
			return mutation(opts, cmd, save, func(a *app, p *printer) (session.Outcome, error) {
				out := a.ctl.NewGame()
				if white != "" || black != "" {
					out = a.ctl.SetPlayers(white, black)
				}
				w, b := a.ctl.Players()
				p.Line("new game %s: %s vs %s", a.ctl.GameID(), w, b)
				return out, nil
			})
		},
	}
	cmd.Flags().StringVar(&white, "white", "", "name of the white player")
	cmd.Flags().StringVar(&black, "black", "", "name of the black player")
	cmd.Flags().BoolVar(&random, "random-names", false, "pick random player names")
	cmd.Flags().BoolVar(&save, "save", false, "save even when auto-save is off")
	return cmd
}

// NewResetCommand creates the reset command.
func NewResetCommand(opts *RootOptions) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:          "reset",
		Short:        "Reset the board to the starting position",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutation(opts, cmd, save, func(a *app, p *printer) (session.Outcome, error) {
				out := a.ctl.ResetBoard()
				p.Line("board reset")
				return out, nil
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "save even when auto-save is off")
	return cmd
}

// NewMoveCommand creates the move command.
func NewMoveCommand(opts *RootOptions) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:          "move <uci>",
		Short:        "Play a move such as e2e4 or e7e8q",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutation(opts, cmd, save, func(a *app, p *printer) (session.Outcome, error) {
				uci := strings.ToLower(args[0])
				out := a.ctl.MakeMove(uci)
				if !out.Applied {
					return out, fmt.Errorf("illegal move %q", uci)
				}
				if last := a.ctl.MoveHistory(); len(last) > 0 {
					p.Line("played %s", last[len(last)-1].Move)
				}
				return out, nil
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "save even when auto-save is off")
	return cmd
}

// NewFENCommand creates the fen command. Without an argument it prints
// the current position.
func NewFENCommand(opts *RootOptions) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:          "fen [position]",
		Short:        "Print or set the position in FEN",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				a, err := openApp(opts)
				if err != nil {
					return err
				}
				defer a.close()
				newPrinter(cmd.OutOrStdout(), opts).Line("%s", a.ctl.FEN())
				return nil
			}
			return mutation(opts, cmd, save, func(a *app, p *printer) (session.Outcome, error) {
				out := a.ctl.SetFEN(args[0])
				if !out.Applied {
					return out, fmt.Errorf("invalid position %q", args[0])
				}
				p.Line("%s", a.ctl.FEN())
				return out, nil
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "save even when auto-save is off")
	return cmd
}

// NewMovesCommand creates the moves command.
func NewMovesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "moves <square>",
		Short:        "List the legal moves of the piece on a square",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			p := newPrinter(cmd.OutOrStdout(), opts)
			moves := a.ctl.LegalMovesFrom(strings.ToLower(args[0]))
			if len(moves) == 0 {
				p.Dim("no legal moves from %s", args[0])
				return nil
			}
			ucis := make([]string, len(moves))
			for i, m := range moves {
				ucis[i] = m.String()
			}
			sort.Strings(ucis)
			p.Line("%s", strings.Join(ucis, " "))
			return nil
		},
	}
	return cmd
}
