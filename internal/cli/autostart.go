package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VladimirGitsarev/Tinytosh/internal/autostart"
)

func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage starting the bridge minimized at login",
	}
	set := func(enable bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			m, err := autostart.New()
			if err != nil {
				return err
			}
			if err := m.Set(enable); err != nil {
				return err
			}
			return printAutostart(cmd, m.Enabled())
		}
	}
	cmd.AddCommand(
		&cobra.Command{Use: "enable", Short: "Start at login", Args: cobra.NoArgs, RunE: set(true)},
		&cobra.Command{Use: "disable", Short: "Do not start at login", Args: cobra.NoArgs, RunE: set(false)},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether autostart is enabled",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := autostart.New()
				if err != nil {
					return printAutostart(cmd, false)
				}
				return printAutostart(cmd, m.Enabled())
			},
		},
	)
	return cmd
}

func printAutostart(cmd *cobra.Command, on bool) error {
	state := "disabled"
	if on {
		state = "enabled"
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "autostart %s\n", state)
	return err
}
