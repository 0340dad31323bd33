package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/VladimirGitsarev/Tinytosh/internal/bridge"
	"github.com/VladimirGitsarev/Tinytosh/internal/sampler"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print one telemetry sample as the display would receive it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := sampler.New(nil)
			// CPU usage needs two readings.
			s.Sample()
			select {
			case <-time.After(bridge.TickInterval):
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
			out, err := json.Marshal(s.Sample())
			if err != nil {
				return fmt.Errorf("encode sample: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
