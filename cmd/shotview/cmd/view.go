package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ShotView/internal/ui"
)

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	state := ui.NewState()
	state.SetAppVersion(rootCmd.Version)
	state.SetStatus("Loading")

	logf := func(format string, a ...interface{}) {
		stderrLog(format, a...)
		state.Logf(format, a...)
	}

	s, err := loadShot(args[0], cfg, logf)
	if err != nil {
		return err
	}

	state.SetShot(s.Path, s.Result.Channels)
	state.SetStatus(fmt.Sprintf("Loaded %d devices", len(s.Devices)))
	if err := s.Result.UnsupportedError(); err != nil {
		state.SetError(err)
	}

	if verbose {
		fmt.Println("Launching preview window...")
	}

	return ui.Run(state, ui.Options{
		Title:       cfg.Window.Title,
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		PanStep:     cfg.PanStep,
		ZoomStep:    cfg.ZoomStep,
		GridSamples: cfg.GridSamples,
	})
}
