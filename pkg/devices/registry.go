// Package devices turns the output datasets of a device group into plottable
// channels. Each supported device type registers a ChannelExtractor under its
// name prefix.
package devices

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/ShotView/pkg/topology"
	"github.com/OpenTraceLab/ShotView/pkg/waveform"
)

// ErrUnsupportedDeviceType is returned for devices whose type prefix has no
// registered extractor.
var ErrUnsupportedDeviceType = errors.New("unsupported device type")

// DeviceSource is the per-device view of a shot file an extractor reads from.
type DeviceSource interface {
	ReadDeviceFloats(device, dataset string) ([]float64, error)
	ReadDeviceWords(device, dataset string) ([]uint32, error)
	DeviceAttribute(device, name string) (string, error)
	HasDeviceDataset(device, dataset string) bool
	DeviceRowCount(device, dataset string) (int, error)
}

// ExtractContext carries the lookups shared by every extractor.
type ExtractContext struct {
	Index    *topology.Index
	Resolver *topology.Resolver
	Source   DeviceSource
	// Logf receives progress and warning lines. May be nil.
	Logf func(format string, args ...interface{})
}

func (c ExtractContext) logf(format string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// ChannelExtractor extracts the channels of one device type.
type ChannelExtractor interface {
	Prefix() string
	Extract(ctx ExtractContext, device string) ([]waveform.Channel, error)
}

// DevicePrefix strips the trailing _<instance> from a device name:
// "ni_pcie_6363_0" has prefix "ni_pcie_6363". A name without an underscore
// has an empty prefix.
func DevicePrefix(device string) string {
	i := strings.LastIndex(device, "_")
	if i < 0 {
		return ""
	}
	return device[:i]
}

// Registry dispatches devices to extractors by prefix.
type Registry struct {
	extractors map[string]ChannelExtractor
}

// NewRegistry creates a registry holding extractors.
func NewRegistry(extractors ...ChannelExtractor) *Registry {
	r := &Registry{extractors: make(map[string]ChannelExtractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// DefaultRegistry returns a registry with every built-in device type, using
// lines digital lines per port.
func DefaultRegistry(lines int) *Registry {
	return NewRegistry(&NIPCIe6363{Lines: lines})
}

// Register adds or replaces the extractor for e.Prefix().
func (r *Registry) Register(e ChannelExtractor) {
	r.extractors[e.Prefix()] = e
}

// Prefixes returns the registered prefixes, sorted.
func (r *Registry) Prefixes() []string {
	out := make([]string, 0, len(r.extractors))
	for p := range r.extractors {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the extractor for device.
func (r *Registry) Lookup(device string) (ChannelExtractor, error) {
	prefix := DevicePrefix(device)
	e, ok := r.extractors[prefix]
	if !ok {
		return nil, fmt.Errorf("%w: %s (type %q)", ErrUnsupportedDeviceType, device, prefix)
	}
	return e, nil
}

// Result is the outcome of extracting every device in a shot.
type Result struct {
	Channels []waveform.Channel
	// Unsupported lists devices skipped because no extractor handles them.
	Unsupported []string
	// ClockSources lists root devices, which time other devices and have no
	// outputs of their own.
	ClockSources []string
}

// UnsupportedError reports the skipped devices as an error wrapping
// ErrUnsupportedDeviceType, or nil when every device was handled.
func (res Result) UnsupportedError() error {
	if len(res.Unsupported) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedDeviceType, strings.Join(res.Unsupported, ", "))
}

// ExtractAll extracts devices in order. Devices without an extractor are
// collected in Result.Unsupported; an extraction failure aborts.
func (r *Registry) ExtractAll(ctx ExtractContext, devices []string) (Result, error) {
	var res Result
	for _, device := range devices {
		e, err := r.Lookup(device)
		if err != nil {
			if isClockSource(ctx.Index, device) {
				ctx.logf("%s: clock source, no outputs to extract", device)
				res.ClockSources = append(res.ClockSources, device)
				continue
			}
			ctx.logf("WARNING: skipping %s: %v", device, err)
			res.Unsupported = append(res.Unsupported, device)
			continue
		}

		channels, err := e.Extract(ctx, device)
		if err != nil {
			return res, fmt.Errorf("extract %s: %w", device, err)
		}
		ctx.logf("%s: %d channels", device, len(channels))
		res.Channels = append(res.Channels, channels...)
	}
	return res, nil
}

func isClockSource(idx *topology.Index, device string) bool {
	if idx == nil {
		return false
	}
	parent, ok := idx.Parent(device)
	return ok && parent == topology.RootSentinel
}
