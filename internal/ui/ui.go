// Package ui implements the interactive preview window: one axis per
// channel, stacked on a shared time axis, with scroll to pan and
// ctrl+scroll to zoom.
package ui

import (
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
)

// Run launches the Gio UI and blocks until the window closes.
func Run(state *AppState, opts Options) error {
	if state == nil {
		state = NewState()
	}

	opts = opts.withDefaults()

	w := new(app.Window)
	ui, err := New(w, state, opts)
	if err != nil {
		return err
	}

	go func() {
		w.Option(app.Title(opts.Title), app.Size(unit.Dp(float32(opts.Width)), unit.Dp(float32(opts.Height))))
		if err := ui.Run(); err != nil {
			log.Printf("ui: %v", err)
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}
