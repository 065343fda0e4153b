package cli

import (
	"github.com/spf13/cobra"
)

// NewSaveCommand creates the save command.
func NewSaveCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "save",
		Short:        "Write the current game to the encrypted save file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			p := newPrinter(cmd.OutOrStdout(), opts)
			if res := a.ctl.Save(); !res.OK {
				return res.Err
			}
			p.OK("saved %s to %s", a.ctl.GameID(), a.paths.SaveFile())
			return nil
		},
	}
	return cmd
}

// NewLoadCommand creates the load command. Every command loads the save
// on start; this one reports whether that worked.
func NewLoadCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "load",
		Short:        "Check the encrypted save file and show the game it holds",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			p := newPrinter(cmd.OutOrStdout(), opts)
			if res := a.ctl.Load(); !res.OK {
				p.Bad("could not load %s: %v", a.paths.SaveFile(), res.Err)
				return res.Err
			}
			white, black := a.ctl.Players()
			p.OK("loaded %s: %s vs %s, %d moves", a.ctl.GameID(), white, black, len(a.ctl.MoveHistory()))
			p.Status(a.ctl.Status(), white, black)
			return nil
		},
	}
	return cmd
}
