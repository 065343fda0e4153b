package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qnkhuat/chesswidget/pkg/config"
)

// NewSettingsCommand creates the settings command with its list and set
// subcommands.
func NewSettingsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the widget settings",
	}
	cmd.AddCommand(newSettingsListCommand(opts))
	cmd.AddCommand(newSettingsSetCommand(opts))
	return cmd
}

func newSettingsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "Print every setting",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := config.LoadPaths()
			if err != nil {
				return err
			}
			s := config.LoadSettings(paths.SettingsFile(), nil)
			p := newPrinter(cmd.OutOrStdout(), opts)
			for _, k := range s.Keys() {
				v, _ := s.Get(k)
				data, err := json.Marshal(v)
				if err != nil {
					return fmt.Errorf("encode %s: %w", k, err)
				}
				p.Line("%s = %s", k, data)
			}
			return nil
		},
	}
}

// newSettingsSetCommand stores a value. Anything that parses as JSON is
// stored as such, so "false" is a bool and "0.5" a number.
func newSettingsSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "set <key> <value>",
		Short:        "Change one setting",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := config.LoadPaths()
			if err != nil {
				return err
			}
			s := config.LoadSettings(paths.SettingsFile(), nil)

			var v interface{}
			if err := json.Unmarshal([]byte(args[1]), &v); err != nil {
				v = args[1]
			}
			s.Set(args[0], v)
			if err := s.Save(); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), opts).OK("%s = %s", args[0], args[1])
			return nil
		},
	}
}
