package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
	strict     bool
)

// ErrMissingArgument is returned when no shot file is given.
var ErrMissingArgument = errors.New("no hdf5 file provided as a command line argument")

var rootCmd = &cobra.Command{
	Use:   "shotview [flags] FILE",
	Short: "Preview the output waveforms of a labscript shot file",
	Long: `Reads an HDF5 shot file, resolves the clock of every supported
output device, and shows one stacked axis per output channel on a shared
time axis. Scroll pans in time; ctrl+scroll zooms the value range of the
axis under the cursor; R resets the view.

Examples:
  shotview shot.h5                          # Open the preview window
  shotview channels shot.h5 --format json   # List extracted channels
  shotview clock shot.h5 ni_pcie_6363_0     # Show how a device is clocked`,
	Version:       "0.1.0",
	Args:          requireFile(1),
	RunE:          runView,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// requireFile accepts exactly n positional arguments, reporting a missing
// shot file as ErrMissingArgument.
func requireFile(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return ErrMissingArgument
		}
		if len(args) != n {
			return fmt.Errorf("accepts %d arg(s), received %d", n, len(args))
		}
		return nil
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the platform config directory)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "fail on duplicate connection-table keys and unsupported devices")
}
