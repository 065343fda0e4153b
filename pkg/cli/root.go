// Package cli is the chesswidget command line. Every subcommand opens the
// encrypted save file, acts on it through a session.Controller and exits;
// play keeps the board open in the terminal.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/qnkhuat/chesswidget/pkg/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	NoColor bool
}

// NewRootCommand creates the root command for the chesswidget CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "chesswidget",
		Short:   "A chess board that remembers your game",
		Long:    "Play chess in the terminal. The game is encrypted and saved after every move.",
		Version: config.AppVersion,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewMovesCommand(opts))
	cmd.AddCommand(NewFENCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))

	return cmd
}
