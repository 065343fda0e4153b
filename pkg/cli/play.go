package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/qnkhuat/chesswidget/pkg/gui"
)

// KeyBoardColors overrides the board theme, e.g.
// {"light": "#eeeed2", "dark": "#769656"}.
const KeyBoardColors = "board_colors"

var errNotTerminal = errors.New("play needs an interactive terminal")

// NewPlayCommand creates the play command.
func NewPlayCommand(opts *RootOptions) *cobra.Command {
	var flipped bool
	cmd := &cobra.Command{
		Use:          "play",
		Short:        "Open the board",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errNotTerminal
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			return runBoard(cmd, a, flipped)
		},
	}
	cmd.Flags().BoolVarP(&flipped, "flip", "f", false, "black at the bottom")
	return cmd
}

func runBoard(cmd *cobra.Command, a *app, flipped bool) error {
	v, _ := a.settings.Settings().Get(KeyBoardColors)
	theme, err := gui.ThemeFromSetting(v)
	if err != nil {
		a.logger.Warn("ignoring board colors", zap.Error(err))
	}

	board := gui.NewBoard(a.ctl, theme, a.logger)
	if flipped {
		board.Flip()
	}

	done := make(chan struct{})
	defer close(done)
	go func() { // Down when the process is asked to stop
		select {
		case <-cmd.Context().Done():
			board.App.Stop()
		case <-done:
		}
	}()

	a.logger.Info("board opened", zap.String("game_id", a.ctl.GameID()))
	if err := board.Run(); err != nil {
		return err
	}
	if a.settings.AutoSave() {
		if res := a.ctl.Save(); !res.OK {
			a.logger.Warn("failed to save on exit", zap.Error(res.Err))
		}
	}
	return nil
}
