package topology

import (
	"fmt"
	"strings"
)

// ClockKind names a time base of a clocking device. The value is also the
// dataset name under the clocking device's group.
type ClockKind string

const (
	FastClock ClockKind = "FAST_CLOCK"
	SlowClock ClockKind = "SLOW_CLOCK"
)

// ParseClockKind accepts the dataset spelling of a clock kind.
func ParseClockKind(s string) (ClockKind, error) {
	switch ClockKind(s) {
	case FastClock:
		return FastClock, nil
	case SlowClock:
		return SlowClock, nil
	}
	return "", fmt.Errorf("unknown clock kind %q", s)
}

// Connection labels written by the control system on clocked edges. The two
// spellings differ and both are matched literally.
const (
	FastClockLabel = "fast clock"
	SlowClockLabel = "slow_clock"
)

// DefaultLabels returns the connection-label table used when no
// configuration overrides it.
func DefaultLabels() map[string]ClockKind {
	return map[string]ClockKind{
		FastClockLabel: FastClock,
		SlowClockLabel: SlowClock,
	}
}

// Lineage is the ancestry of a device, with the positions that clock
// resolution depends on pulled out by name.
type Lineage struct {
	Device string
	// ClockSourceConnection is the child of ClockingDevice that Device hangs
	// from; its connection label selects the clock kind.
	ClockSourceConnection string
	ClockingDevice        string
	RootSentinel          string
	// Chain is the full walk from Device up to and including RootSentinel.
	Chain []string
}

// Ancestry walks parents from device up to the root sentinel. The walk is
// bounded by the table size so a cyclic table fails instead of looping.
func Ancestry(idx *Index, device string) (Lineage, error) {
	chain := []string{device}
	current := device
	for current != RootSentinel {
		if len(chain) > idx.Len()+1 {
			return Lineage{}, fmt.Errorf("%w: parent cycle above %q (%s)",
				ErrMalformedTopology, device, strings.Join(chain, " -> "))
		}
		parent, ok := idx.Parent(current)
		if !ok {
			return Lineage{}, fmt.Errorf("%w: %q is not in the connection table",
				ErrMalformedTopology, current)
		}
		chain = append(chain, parent)
		current = parent
	}

	// device, clocking device, sentinel
	if len(chain) < 3 {
		return Lineage{}, fmt.Errorf("%w: %q has no clocking device (ancestry %s)",
			ErrMalformedTopology, device, strings.Join(chain, " -> "))
	}

	n := len(chain)
	return Lineage{
		Device:                device,
		ClockSourceConnection: chain[n-3],
		ClockingDevice:        chain[n-2],
		RootSentinel:          chain[n-1],
		Chain:                 chain,
	}, nil
}

// ClockSource reads the time base arrays stored for clocking devices.
type ClockSource interface {
	ReadClock(device string, kind ClockKind) ([]float64, error)
}

// Resolution is the outcome of resolving a device's clock.
type Resolution struct {
	Lineage Lineage
	Label   string
	Kind    ClockKind
	Samples []float64
}

// Resolver maps devices to the clock array that times their outputs.
type Resolver struct {
	Index  *Index
	Labels map[string]ClockKind
	Source ClockSource
}

// Classify resolves the clocking device and clock kind without reading samples.
func (r *Resolver) Classify(device string) (Lineage, string, ClockKind, error) {
	lin, err := Ancestry(r.Index, device)
	if err != nil {
		return Lineage{}, "", "", err
	}

	label, ok := r.Index.Connection(lin.ClockSourceConnection)
	if !ok {
		return Lineage{}, "", "", fmt.Errorf("%w: no connection recorded for %q",
			ErrMalformedTopology, lin.ClockSourceConnection)
	}

	labels := r.Labels
	if labels == nil {
		labels = DefaultLabels()
	}
	kind, ok := labels[label]
	if !ok {
		return Lineage{}, "", "", fmt.Errorf("%w: %q is connected to %q via unrecognised clock label %q",
			ErrMalformedTopology, lin.ClockSourceConnection, lin.ClockingDevice, label)
	}
	return lin, label, kind, nil
}

// Resolve classifies device and reads the matching clock array from the
// clocking device.
func (r *Resolver) Resolve(device string) (Resolution, error) {
	lin, label, kind, err := r.Classify(device)
	if err != nil {
		return Resolution{}, err
	}
	if r.Source == nil {
		return Resolution{}, fmt.Errorf("topology: resolver has no clock source")
	}

	samples, err := r.Source.ReadClock(lin.ClockingDevice, kind)
	if err != nil {
		return Resolution{}, fmt.Errorf("read %s of %s: %w", kind, lin.ClockingDevice, err)
	}

	return Resolution{
		Lineage: lin,
		Label:   label,
		Kind:    kind,
		Samples: samples,
	}, nil
}
