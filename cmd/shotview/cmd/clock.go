package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ShotView/pkg/topology"
)

var clockCmd = &cobra.Command{
	Use:   "clock FILE DEVICE",
	Short: "Show which clock times a device",
	Long: `Walks the connection table from DEVICE up to the root and prints
the lineage, the clocking device, and the clock array the device uses.

Example:
  shotview clock shot.h5 ni_pcie_6363_0`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return ErrMissingArgument
		}
		if len(args) != 2 {
			return fmt.Errorf("accepts FILE and DEVICE, received %d arg(s)", len(args))
		}
		return nil
	},
	RunE: runClock,
}

func init() {
	rootCmd.AddCommand(clockCmd)
}

func runClock(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, idx, resolver, err := openTopology(args[0], cfg, stderrLog)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := resolver.Resolve(args[1])
	if err != nil {
		return err
	}
	writeClockReport(cmd.OutOrStdout(), res, idx.Children(args[1]))
	return nil
}

// writeClockReport prints a resolution and the names attached to the
// device.
func writeClockReport(out io.Writer, res topology.Resolution, children []string) {
	fmt.Fprintf(out, "Device:          %s\n", res.Lineage.Device)
	fmt.Fprintf(out, "Lineage:         %s\n", strings.Join(res.Lineage.Chain, " -> "))
	fmt.Fprintf(out, "Clocking device: %s\n", res.Lineage.ClockingDevice)
	fmt.Fprintf(out, "Connection:      %s (%q)\n", res.Lineage.ClockSourceConnection, res.Label)
	fmt.Fprintf(out, "Clock:           %s\n", res.Kind)
	fmt.Fprintf(out, "Samples:         %d\n", len(res.Samples))
	if n := len(res.Samples); n > 0 {
		fmt.Fprintf(out, "Span:            %g .. %g s\n", res.Samples[0], res.Samples[n-1])
	}
	if len(children) == 0 {
		fmt.Fprintf(out, "Attached:        (none)\n")
		return
	}
	fmt.Fprintf(out, "Attached:        %s\n", strings.Join(children, ", "))
}
