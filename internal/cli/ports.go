package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/VladimirGitsarev/Tinytosh/internal/model"
	"github.com/VladimirGitsarev/Tinytosh/internal/ports"
)

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports; * marks the one auto-discovery would pick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := ports.System{}.List()
			if err != nil {
				return fmt.Errorf("enumerate ports: %w", err)
			}
			return writePorts(cmd.OutOrStdout(), list)
		},
	}
}

func writePorts(w io.Writer, list []model.PortDescriptor) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No Ports Found")
		return err
	}
	cand, ok := ports.FindCandidate(list)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tPORT\tKIND\tPRODUCT")
	for _, p := range list {
		mark := ""
		if ok && p.Name == cand.Name {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, p.Name, p.Kind, p.Product)
	}
	return tw.Flush()
}
