package ui

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"path/filepath"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

// Options configures the preview window.
type Options struct {
	Title       string
	Width       int
	Height      int
	PanStep     float64
	ZoomStep    float64
	GridSamples int
}

// DefaultOptions returns the stock window settings.
func DefaultOptions() Options {
	return Options{
		Title:       "Labscript experiment preview",
		Width:       400,
		Height:      300,
		PanStep:     0.5,
		ZoomStep:    0.1,
		GridSamples: 10000,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Title == "" {
		o.Title = def.Title
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.PanStep == 0 {
		o.PanStep = def.PanStep
	}
	if o.ZoomStep == 0 {
		o.ZoomStep = def.ZoomStep
	}
	if o.GridSamples <= 0 {
		o.GridSamples = def.GridSamples
	}
	return o
}

var (
	plotBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	axisColor      = color.NRGBA{R: 34, G: 37, B: 49, A: 255}
	windowColor    = color.NRGBA{R: 238, G: 241, B: 251, A: 255}
)

// App drives the Gio preview window.
type App struct {
	Window *app.Window
	Theme  *material.Theme
	State  *AppState
	View   *ViewState

	ops op.Ops

	traces []trace
	rows   []image.Rectangle

	plotTag  bool
	resetBtn widget.Clickable
	resetIco *widget.Icon
	logList  layout.List
}

// New wires the Gio window, theme, and shared state together. The loaded
// channels are resampled once here.
func New(window *app.Window, state *AppState, opts Options) (*App, error) {
	if state == nil {
		state = NewState()
	}
	opts = opts.withDefaults()
	channels := state.Channels()
	traces, err := buildTraces(channels, opts.GridSamples)
	if err != nil {
		return nil, err
	}

	baseTheme := material.NewTheme()
	baseTheme.Palette = material.Palette{
		Bg:         color.NRGBA{R: 245, G: 246, B: 252, A: 255},
		Fg:         axisColor,
		ContrastBg: color.NRGBA{R: 80, G: 120, B: 255, A: 255},
		ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}

	a := &App{
		Window:  window,
		Theme:   baseTheme,
		State:   state,
		View:    NewViewState(channels, opts.PanStep, opts.ZoomStep),
		traces:  traces,
		logList: layout.List{Axis: layout.Vertical, ScrollToEnd: true},
	}
	icon, err := widget.NewIcon(icons.NavigationRefresh)
	if err != nil {
		log.Printf("ui: failed to load reset icon: %v", err)
	} else {
		a.resetIco = icon
	}
	return a, nil
}

// Run processes Gio events until the window is closed.
func (a *App) Run() error {
	for {
		e := a.Window.Event()
		switch ev := e.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&a.ops, ev)
			a.layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

func (a *App) invalidate() {
	if a.Window != nil {
		a.Window.Invalidate()
	}
}

func (a *App) resetView() {
	a.View.Reset()
	a.State.SetStatus("View reset")
	a.invalidate()
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	state := a.State.Snapshot()

	for {
		ev, ok := gtx.Event(key.Filter{Name: "R"})
		if !ok {
			break
		}
		if e, ok := ev.(key.Event); ok && e.State == key.Press {
			a.resetView()
		}
	}

	paint.FillShape(gtx.Ops, windowColor, clip.Rect{Max: gtx.Constraints.Max}.Op())

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutTopBar(gtx, state)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, a.layoutPlot)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutLogPane(gtx, state)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutStatus(gtx, state)
		}),
	)
}

func (a *App) layoutTopBar(gtx layout.Context, state StateSnapshot) layout.Dimensions {
	for a.resetBtn.Clicked(gtx) {
		a.resetView()
	}

	title := "No shot loaded"
	if state.ShotFile != "" {
		title = filepath.Base(state.ShotFile)
	}

	return layout.Inset{
		Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(8),
	}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(material.Body1(a.Theme, title).Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Dimensions{}
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.resetIco == nil {
					btn := material.Button(a.Theme, &a.resetBtn, "Reset")
					btn.Inset = layout.UniformInset(unit.Dp(4))
					return btn.Layout(gtx)
				}
				btn := material.IconButton(a.Theme, &a.resetBtn, a.resetIco, "Reset view")
				btn.Size = unit.Dp(18)
				btn.Inset = layout.UniformInset(unit.Dp(4))
				return btn.Layout(gtx)
			}),
		)
	})
}

// handleScroll turns wheel events over the plot into ViewState updates.
func (a *App) handleScroll(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  &a.plotTag,
			Kinds:   pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: math.MinInt32, Max: math.MaxInt32},
		})
		if !ok {
			break
		}
		pev, ok := ev.(pointer.Event)
		if !ok || pev.Kind != pointer.Scroll || pev.Scroll.Y == 0 {
			continue
		}

		if a.View.OnScroll(ScrollEvent{
			Step: scrollStep(pev.Scroll.Y),
			Ctrl: pev.Modifiers.Contain(key.ModCtrl),
			Axis: axisAt(a.rows, pev.Position),
		}) {
			gtx.Execute(op.InvalidateCmd{})
		}
	}
}

// scrollStep maps a Gio wheel delta to one notch. Gio reports scrolling up
// (away from the user) as a negative Y, which becomes +1.
func scrollStep(dy float32) float64 {
	switch {
	case dy < 0:
		return 1
	case dy > 0:
		return -1
	}
	return 0
}

func (a *App) layoutPlot(gtx layout.Context) layout.Dimensions {
	a.handleScroll(gtx)

	size := gtx.Constraints.Max
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, &a.plotTag)

	if len(a.traces) == 0 {
		a.rows = nil
		return layout.Center.Layout(gtx, material.Body2(a.Theme, "No channels to display").Layout)
	}

	area := image.Rect(
		gtx.Dp(unit.Dp(120)), gtx.Dp(unit.Dp(8)),
		size.X-gtx.Dp(unit.Dp(12)), size.Y-gtx.Dp(unit.Dp(40)),
	)
	a.rows = stackAxes(area, len(a.traces))

	x := a.View.X()
	for i, tr := range a.traces {
		frame := axisFrame{Rect: a.rows[i], X: x, Y: a.View.Y[i]}
		a.drawAxis(gtx, frame, tr)
		a.drawValueTicks(gtx, frame)
		a.drawLabel(gtx, image.Rect(0, frame.Rect.Min.Y, gtx.Dp(unit.Dp(64)), frame.Rect.Max.Y), tr.Name, text.Start)
	}
	a.drawTimeTicks(gtx, axisFrame{Rect: a.rows[len(a.rows)-1], X: x})

	return layout.Dimensions{Size: size}
}

func (a *App) drawAxis(gtx layout.Context, frame axisFrame, tr trace) {
	r := frame.Rect
	paint.FillShape(gtx.Ops, plotBackground, clip.Rect(r).Op())

	stack := clip.Rect(r).Push(gtx.Ops)
	if len(tr.T) > 0 {
		var p clip.Path
		p.Begin(gtx.Ops)
		p.MoveTo(frame.ToScreen(tr.T[0], tr.V[0]))
		for j := 1; j < len(tr.T); j++ {
			p.LineTo(frame.ToScreen(tr.T[j], tr.V[j]))
		}
		paint.FillShape(gtx.Ops, tr.Color, clip.Stroke{
			Path:  p.End(),
			Width: float32(gtx.Dp(unit.Dp(1))),
		}.Op())
	}
	stack.Pop()

	paint.FillShape(gtx.Ops, axisColor, clip.Stroke{
		Path:  clip.Rect(r).Path(),
		Width: 1,
	}.Op())
}

func (a *App) drawValueTicks(gtx layout.Context, frame axisFrame) {
	tickLen := gtx.Dp(unit.Dp(4))
	labelW := gtx.Dp(unit.Dp(48))
	labelH := gtx.Dp(unit.Dp(14))
	for _, t := range valueTicks(frame.Y) {
		y := int(frame.ToScreen(frame.X.Min, t.Value).Y)
		paint.FillShape(gtx.Ops, axisColor, clip.Rect(image.Rect(frame.Rect.Min.X-tickLen, y, frame.Rect.Min.X, y+1)).Op())
		box := image.Rect(frame.Rect.Min.X-tickLen-labelW-2, y-labelH/2, frame.Rect.Min.X-tickLen-2, y+labelH/2)
		a.drawLabel(gtx, box, t.Label, text.End)
	}
}

func (a *App) drawTimeTicks(gtx layout.Context, frame axisFrame) {
	tickLen := gtx.Dp(unit.Dp(4))
	labelW := gtx.Dp(unit.Dp(60))
	labelH := gtx.Dp(unit.Dp(14))
	bottom := frame.Rect.Max.Y
	for _, t := range majorTicks(frame.X) {
		x := int(frame.ToScreen(t.Value, 0).X)
		paint.FillShape(gtx.Ops, axisColor, clip.Rect(image.Rect(x, bottom, x+1, bottom+tickLen)).Op())
		box := image.Rect(x-labelW/2, bottom+tickLen, x+labelW/2, bottom+tickLen+labelH)
		a.drawLabel(gtx, box, t.Label, text.Middle)
	}
	box := image.Rect(frame.Rect.Min.X, bottom+tickLen+labelH, frame.Rect.Max.X, bottom+tickLen+2*labelH+4)
	a.drawLabel(gtx, box, "Time (seconds)", text.Middle)
}

func (a *App) drawLabel(gtx layout.Context, box image.Rectangle, txt string, align text.Alignment) {
	if box.Empty() {
		return
	}
	defer op.Offset(box.Min).Push(gtx.Ops).Pop()

	lgtx := gtx
	lgtx.Constraints = layout.Constraints{
		Min: image.Pt(box.Dx(), 0),
		Max: box.Size(),
	}
	lbl := material.Caption(a.Theme, txt)
	lbl.Alignment = align
	lbl.MaxLines = 1
	layout.W.Layout(lgtx, lbl.Layout)
}

func (a *App) layoutLogPane(gtx layout.Context, state StateSnapshot) layout.Dimensions {
	if len(state.Logs) == 0 {
		return layout.Dimensions{}
	}
	height := gtx.Dp(unit.Dp(56))
	gtx.Constraints.Min.Y = height
	gtx.Constraints.Max.Y = height

	return layout.Inset{Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return a.logList.Layout(gtx, len(state.Logs), func(gtx layout.Context, i int) layout.Dimensions {
			lbl := material.Caption(a.Theme, state.Logs[i])
			lbl.Color.A = 180
			return lbl.Layout(gtx)
		})
	})
}

func (a *App) layoutStatus(gtx layout.Context, state StateSnapshot) layout.Dimensions {
	status := state.Status
	if state.LastError != nil {
		status = fmt.Sprintf("%s | error: %v", status, state.LastError)
	}
	status = fmt.Sprintf("%s | %d channels | scroll to pan, ctrl+scroll to zoom, R to reset", status, len(a.traces))

	return layout.Inset{
		Top: unit.Dp(2), Bottom: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(12),
	}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		lbl := material.Caption(a.Theme, status)
		lbl.MaxLines = 1
		return lbl.Layout(gtx)
	})
}
