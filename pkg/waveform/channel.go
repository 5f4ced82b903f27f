package waveform

import (
	"gonum.org/v1/gonum/floats"
)

// Channel is one discretised output ready for plotting.
type Channel struct {
	Name       string    `json:"name" msgpack:"name"`
	Times      []float64 `json:"times" msgpack:"times"`
	Data       []float64 `json:"data" msgpack:"data"`
	Device     string    `json:"device" msgpack:"device"`
	Connection string    `json:"connection" msgpack:"connection"`
}

// NewChannel discretises samples taken at clock and stamps the result with
// the channel's identity. The hold of the last sample ends at stop.
func NewChannel(name, device, connection string, clock, samples []float64, stop float64) (Channel, error) {
	times, data, err := Discretize(clock, samples, stop)
	if err != nil {
		return Channel{}, err
	}
	return Channel{
		Name:       name,
		Times:      times,
		Data:       data,
		Device:     device,
		Connection: connection,
	}, nil
}

// Len returns the number of discretised points.
func (c Channel) Len() int {
	return len(c.Times)
}

// Span returns the first and last time of the channel.
func (c Channel) Span() (float64, float64) {
	if len(c.Times) == 0 {
		return 0, 0
	}
	return floats.Min(c.Times), floats.Max(c.Times)
}

// Range is a closed interval on one axis.
type Range struct {
	Min float64
	Max float64
}

// Width returns Max-Min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Shift moves both ends by d.
func (r Range) Shift(d float64) Range {
	return Range{Min: r.Min + d, Max: r.Max + d}
}

// Scale grows or shrinks the range around its centre by factor.
func (r Range) Scale(factor float64) Range {
	c := (r.Min + r.Max) / 2
	h := r.Width() / 2 * factor
	return Range{Min: c - h, Max: c + h}
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ValueRange returns the data extent padded by 10% of its span on both
// sides. Flat data is padded by 0.5 so the trace is not drawn on an edge.
func ValueRange(data []float64) Range {
	if len(data) == 0 {
		return Range{Min: -0.5, Max: 0.5}
	}
	lo, hi := floats.Min(data), floats.Max(data)
	span := hi - lo
	if span == 0 {
		return Range{Min: lo - 0.5, Max: hi + 0.5}
	}
	return Range{Min: lo - 0.1*span, Max: hi + 0.1*span}
}
