package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"

	"github.com/OpenTraceLab/ShotView/pkg/waveform"
)

// axisFrame maps one axis' data ranges onto its screen rectangle.
// Values grow upwards, times to the right.
type axisFrame struct {
	Rect image.Rectangle
	X    waveform.Range
	Y    waveform.Range
}

// ToScreen converts data coordinates to pixels.
func (f axisFrame) ToScreen(t, v float64) f32.Point {
	w := float64(f.Rect.Dx())
	h := float64(f.Rect.Dy())

	x := float64(f.Rect.Min.X)
	if f.X.Width() != 0 {
		x += (t - f.X.Min) / f.X.Width() * w
	}
	y := float64(f.Rect.Max.Y)
	if f.Y.Width() != 0 {
		y -= (v - f.Y.Min) / f.Y.Width() * h
	}
	return f32.Pt(float32(x), float32(y))
}

// stackAxes splits area into n rows with no gap between them. Rounding
// leftovers go to the last row.
func stackAxes(area image.Rectangle, n int) []image.Rectangle {
	if n <= 0 || area.Empty() {
		return nil
	}
	rows := make([]image.Rectangle, n)
	h := area.Dy() / n
	for i := range rows {
		top := area.Min.Y + i*h
		bottom := top + h
		if i == n-1 {
			bottom = area.Max.Y
		}
		rows[i] = image.Rect(area.Min.X, top, area.Max.X, bottom)
	}
	return rows
}

// axisAt returns the index of the row containing p, or -1.
func axisAt(rows []image.Rectangle, p f32.Point) int {
	pt := image.Pt(int(p.X), int(p.Y))
	for i, r := range rows {
		if pt.In(r) {
			return i
		}
	}
	return -1
}

// majorTicks returns the labelled ticks gonum/plot would place on r.
func majorTicks(r waveform.Range) []plot.Tick {
	if !(r.Width() > 0) || math.IsInf(r.Width(), 0) {
		return nil
	}
	var out []plot.Tick
	for _, t := range (plot.DefaultTicks{}).Ticks(r.Min, r.Max) {
		if t.Label == "" || !r.Contains(t.Value) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// valueTicks returns the y ticks of an axis with the lowest and highest
// removed, so labels of stacked axes never collide at the shared border.
func valueTicks(r waveform.Range) []plot.Tick {
	ticks := majorTicks(r)
	if len(ticks) < 3 {
		return ticks
	}
	return ticks[1 : len(ticks)-1]
}

var tracePalette = []color.RGBA{
	colornames.Steelblue,
	colornames.Darkorange,
	colornames.Seagreen,
	colornames.Firebrick,
	colornames.Mediumpurple,
	colornames.Sienna,
	colornames.Orchid,
	colornames.Darkcyan,
}

// traceColor returns the colour of the i-th channel.
func traceColor(i int) color.NRGBA {
	c := tracePalette[i%len(tracePalette)]
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// trace is a channel resampled onto the display grid.
type trace struct {
	Name  string
	T     []float64
	V     []float64
	Color color.NRGBA
}

func buildTraces(channels []waveform.Channel, gridSamples int) ([]trace, error) {
	traces := make([]trace, 0, len(channels))
	for i, ch := range channels {
		t, v, err := waveform.Resample(ch.Times, ch.Data, gridSamples)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ch.Name, err)
		}
		traces = append(traces, trace{Name: ch.Name, T: t, V: v, Color: traceColor(i)})
	}
	return traces, nil
}
