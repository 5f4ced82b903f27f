package ui

import (
	"github.com/OpenTraceLab/ShotView/pkg/waveform"
)

// minZoomFactor keeps a zoom step from collapsing or inverting a range.
const minZoomFactor = 0.05

// ScrollEvent is one wheel notch as seen by the plot. Step is positive when
// scrolling up (away from the user), so an upward notch pans towards later
// time and widens the zoomed value range. Ctrl reports the control modifier and
// Axis is the index of the axis under the cursor, or -1 when the cursor is
// outside every axis.
type ScrollEvent struct {
	Step float64
	Ctrl bool
	Axis int
}

// ViewState is the pan/zoom state of the stacked axes. Every axis shares
// the time range; each has its own value range.
type ViewState struct {
	XMin, XMax float64
	Y          []waveform.Range

	PanStep  float64
	ZoomStep float64

	initX waveform.Range
	initY []waveform.Range
}

// NewViewState fits the ranges to channels.
func NewViewState(channels []waveform.Channel, panStep, zoomStep float64) *ViewState {
	v := &ViewState{PanStep: panStep, ZoomStep: zoomStep}

	first := true
	for _, ch := range channels {
		if ch.Len() == 0 {
			v.initY = append(v.initY, waveform.ValueRange(nil))
			continue
		}
		lo, hi := ch.Span()
		if first || lo < v.initX.Min {
			v.initX.Min = lo
		}
		if first || hi > v.initX.Max {
			v.initX.Max = hi
		}
		first = false
		v.initY = append(v.initY, waveform.ValueRange(ch.Data))
	}
	if first {
		v.initX = waveform.Range{Min: 0, Max: 1}
	} else if v.initX.Width() == 0 {
		v.initX = v.initX.Shift(-0.5)
		v.initX.Max += 1
	}

	v.Reset()
	return v
}

// X returns the shared time range.
func (v *ViewState) X() waveform.Range {
	return waveform.Range{Min: v.XMin, Max: v.XMax}
}

// Reset restores the ranges the view was created with.
func (v *ViewState) Reset() {
	v.XMin, v.XMax = v.initX.Min, v.initX.Max
	v.Y = append(v.Y[:0], v.initY...)
}

// OnScroll applies ev and reports whether any range changed. A plain scroll
// pans every axis in time by Step*PanStep. A control scroll scales the
// value range of the axis under the cursor about its centre by
// 1+Step*ZoomStep and is ignored outside the axes.
func (v *ViewState) OnScroll(ev ScrollEvent) bool {
	if ev.Step == 0 {
		return false
	}

	if !ev.Ctrl {
		d := ev.Step * v.PanStep
		v.XMin += d
		v.XMax += d
		return true
	}

	if ev.Axis < 0 || ev.Axis >= len(v.Y) {
		return false
	}
	factor := 1 + ev.Step*v.ZoomStep
	if factor < minZoomFactor {
		factor = minZoomFactor
	}
	v.Y[ev.Axis] = v.Y[ev.Axis].Scale(factor)
	return true
}
