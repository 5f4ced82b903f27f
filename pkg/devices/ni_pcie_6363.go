package devices

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/OpenTraceLab/ShotView/pkg/topology"
	"github.com/OpenTraceLab/ShotView/pkg/waveform"
)

// Dataset and attribute names of a NI PCIe-6363 device group.
const (
	AnalogOutsDataset   = "ANALOG_OUTS"
	DigitalOutsDataset  = "DIGITAL_OUTS"
	AcquisitionsDataset = "ACQUISITIONS"
	AnalogChannelsAttr  = "analog_out_channels"
	DefaultDigitalLines = 32
	digitalLineFormat   = "port0/line%d"
)

// NIPCIe6363 extracts the analog and digital outputs of a NI PCIe-6363 card.
type NIPCIe6363 struct {
	// Lines is the number of port0 digital lines to inspect.
	Lines int
}

// Prefix implements ChannelExtractor.
func (*NIPCIe6363) Prefix() string {
	return "ni_pcie_6363"
}

// DigitalLine returns the connection name of digital line b.
func DigitalLine(b int) string {
	return fmt.Sprintf(digitalLineFormat, b)
}

// Extract implements ChannelExtractor. Analog channels come first in
// attribute order, then every named digital line in ascending line order.
func (n *NIPCIe6363) Extract(ctx ExtractContext, device string) ([]waveform.Channel, error) {
	res, err := ctx.Resolver.Resolve(device)
	if err != nil {
		return nil, err
	}
	clock := res.Samples
	if len(clock) == 0 {
		return nil, fmt.Errorf("%w: %s of %s has no samples",
			topology.ErrMalformedTopology, res.Kind, res.Lineage.ClockingDevice)
	}
	stop := clock[len(clock)-1]

	var channels []waveform.Channel

	analog, err := n.analogChannels(ctx, device, clock, stop)
	if err != nil {
		return nil, err
	}
	channels = append(channels, analog...)

	digital, err := n.digitalChannels(ctx, device, clock, stop)
	if err != nil {
		return nil, err
	}
	channels = append(channels, digital...)

	if ctx.Source.HasDeviceDataset(device, AcquisitionsDataset) {
		count, err := ctx.Source.DeviceRowCount(device, AcquisitionsDataset)
		if err != nil {
			ctx.logf("WARNING: %s: %v", device, err)
		} else {
			ctx.logf("%s: %d acquisitions", device, count)
		}
	}

	return channels, nil
}

func (n *NIPCIe6363) analogChannels(ctx ExtractContext, device string, clock []float64, stop float64) ([]waveform.Channel, error) {
	list, err := ctx.Source.DeviceAttribute(device, AnalogChannelsAttr)
	if err != nil {
		return nil, err
	}
	paths, err := ParseChannelList(list)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", device, err)
	}
	if len(paths) == 0 {
		return nil, nil
	}

	flat, err := ctx.Source.ReadDeviceFloats(device, AnalogOutsDataset)
	if err != nil {
		return nil, err
	}
	cols := len(paths)
	if len(flat) == 0 || len(flat)%cols != 0 {
		return nil, fmt.Errorf("%w: %s/%s has %d values for %d channels",
			topology.ErrMalformedTopology, device, AnalogOutsDataset, len(flat), cols)
	}
	outs := mat.NewDense(len(flat)/cols, cols, flat)

	channels := make([]waveform.Channel, 0, cols)
	for i, p := range paths {
		conn := p.Connection()
		name, ok := ctx.Index.Name(device, conn)
		if !ok {
			ctx.logf("WARNING: %s %s is not in the connection table, using %q", device, conn, conn)
			name = conn
		}

		ch, err := waveform.NewChannel(name, device, conn, clock, mat.Col(nil, i, outs), stop)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", device, conn, err)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

func (n *NIPCIe6363) digitalChannels(ctx ExtractContext, device string, clock []float64, stop float64) ([]waveform.Channel, error) {
	if !ctx.Source.HasDeviceDataset(device, DigitalOutsDataset) {
		return nil, nil
	}
	words, err := ctx.Source.ReadDeviceWords(device, DigitalOutsDataset)
	if err != nil {
		return nil, err
	}

	lines := n.Lines
	if lines <= 0 {
		lines = DefaultDigitalLines
	}
	bits, err := waveform.DecomposeBits(words, lines)
	if err != nil {
		return nil, err
	}

	var channels []waveform.Channel
	for b := 0; b < lines; b++ {
		conn := DigitalLine(b)
		name, ok := ctx.Index.Name(device, conn)
		if !ok {
			continue
		}
		ch, err := waveform.NewChannel(name, device, conn, clock, waveform.BitColumn(bits, b), stop)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", device, conn, err)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}
