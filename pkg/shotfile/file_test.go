package shotfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/scigolib/hdf5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/ShotView/pkg/topology"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "shot.h5")

	fw, err := hdf5.CreateForWrite(filename, hdf5.CreateTruncate)
	require.NoError(t, err)

	clock, err := fw.CreateDataset("/FAST_CLOCK", hdf5.Float64, []uint64{4})
	require.NoError(t, err)
	require.NoError(t, clock.Write([]float64{0, 0.5, 1.25, 2}))

	words, err := fw.CreateDataset("/DIGITAL_OUTS", hdf5.Uint32, []uint64{3})
	require.NoError(t, err)
	require.NoError(t, words.Write([]uint32{1, 0x80000001, 0xFFFFFFFF}))
	require.NoError(t, words.WriteAttribute("analog_out_channels", "Dev1/ao0,Dev1/ao1"))

	analog, err := fw.CreateDataset("/ANALOG_OUTS", hdf5.Float64, []uint64{2, 2})
	require.NoError(t, err)
	require.NoError(t, analog.Write([]float64{1, 2, 3, 4}))

	require.NoError(t, fw.Close())
	return filename
}

// writeDeviceFixture lays out /devices the way a shot file does: one group
// per device holding its clock and output datasets.
func writeDeviceFixture(t *testing.T) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "devices.h5")

	fw, err := hdf5.CreateForWrite(filename, hdf5.CreateTruncate)
	require.NoError(t, err)

	require.NoError(t, fw.CreateGroup("/devices"))
	require.NoError(t, fw.CreateGroup("/devices/pulseblaster_0"))
	require.NoError(t, fw.CreateGroup("/devices/ni_pcie_6363_0"))

	pb, err := fw.CreateDataset("/devices/pulseblaster_0/FAST_CLOCK", hdf5.Float64, []uint64{3})
	require.NoError(t, err)
	require.NoError(t, pb.Write([]float64{0, 1, 2}))

	clock, err := fw.CreateDataset("/devices/ni_pcie_6363_0/FAST_CLOCK", hdf5.Float64, []uint64{3})
	require.NoError(t, err)
	require.NoError(t, clock.Write([]float64{0, 0.25, 0.75}))

	analog, err := fw.CreateDataset("/devices/ni_pcie_6363_0/ANALOG_OUTS", hdf5.Float64, []uint64{3, 2})
	require.NoError(t, err)
	require.NoError(t, analog.Write([]float64{1, -1, 2, -2, 3, -3}))

	words, err := fw.CreateDataset("/devices/ni_pcie_6363_0/DIGITAL_OUTS", hdf5.Uint32, []uint64{3})
	require.NoError(t, err)
	require.NoError(t, words.Write([]uint32{0, 0x9, 0x80000000}))

	require.NoError(t, fw.Close())
	return filename
}

func TestOpenMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.h5")
	_, err := Open(missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.Contains(t, err.Error(), missing)
}

func TestOpenNotHDF5(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(bogus, []byte("just some text, not hdf5"), 0644))

	_, err := Open(bogus)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreadableFile))
	assert.Contains(t, err.Error(), bogus)
}

func TestOpenDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir)
	assert.True(t, errors.Is(err, ErrUnreadableFile))
}

func TestReadDatasets(t *testing.T) {
	f, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer f.Close()

	clock, err := f.ReadFloats("/FAST_CLOCK")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1.25, 2}, clock)

	words, err := f.ReadUint32s("/DIGITAL_OUTS")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 0x80000001, 0xFFFFFFFF}, words)

	analog, err := f.ReadFloats("/ANALOG_OUTS")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, analog)

	n, err := f.RowCount("/FAST_CLOCK")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	channels, err := f.StringAttribute("/DIGITAL_OUTS", "analog_out_channels")
	require.NoError(t, err)
	assert.Equal(t, "Dev1/ao0,Dev1/ao1", channels)

	assert.True(t, f.Has("/FAST_CLOCK"))
	assert.False(t, f.Has("/SLOW_CLOCK"))
}

func TestDeviceGroups(t *testing.T) {
	f, err := Open(writeDeviceFixture(t))
	require.NoError(t, err)
	defer f.Close()

	devices, err := f.Devices()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pulseblaster_0", "ni_pcie_6363_0"}, devices)

	clock, err := f.ReadClock("ni_pcie_6363_0", topology.FastClock)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.75}, clock)

	pb, err := f.ReadClock("pulseblaster_0", topology.FastClock)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, pb)

	_, err = f.ReadClock("ni_pcie_6363_0", topology.SlowClock)
	assert.True(t, errors.Is(err, ErrMissingObject))

	analog, err := f.ReadDeviceFloats("ni_pcie_6363_0", "ANALOG_OUTS")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1, 2, -2, 3, -3}, analog)

	words, err := f.ReadDeviceWords("ni_pcie_6363_0", "DIGITAL_OUTS")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0x9, 0x80000000}, words)

	assert.True(t, f.HasDeviceDataset("ni_pcie_6363_0", "ANALOG_OUTS"))
	assert.False(t, f.HasDeviceDataset("ni_pcie_6363_0", "ACQUISITIONS"))
	assert.False(t, f.HasDeviceDataset("novatechdds9m_0", "ANALOG_OUTS"))

	n, err := f.DeviceRowCount("ni_pcie_6363_0", "DIGITAL_OUTS")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = f.DeviceAttribute("ni_pcie_6363_0", "analog_out_channels")
	assert.True(t, errors.Is(err, ErrMissingObject))
}

func TestStringValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{"Dev1/ao0", "Dev1/ao0"},
		{[]byte("Dev1/ao0\x00\x00"), "Dev1/ao0"},
		{[]string{"Dev1/ao0", "Dev1/ao1"}, "Dev1/ao0,Dev1/ao1"},
		{[]interface{}{}, ""},
		{[]interface{}{"Dev1/ao0"}, "Dev1/ao0"},
		{nil, ""},
		{int32(3), "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stringValue(tt.in), "stringValue(%#v)", tt.in)
	}
}

func TestMissingObjects(t *testing.T) {
	f, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.ReadFloats("/SLOW_CLOCK")
	assert.True(t, errors.Is(err, ErrMissingObject))

	_, err = f.Devices()
	assert.True(t, errors.Is(err, ErrMissingObject))

	_, err = f.ConnectionTable()
	assert.True(t, errors.Is(err, ErrMissingObject))

	_, err = f.ReadClock("pulseblaster_0", topology.FastClock)
	assert.True(t, errors.Is(err, ErrMissingObject))

	_, err = f.StringAttribute("/DIGITAL_OUTS", "missing_attr")
	assert.True(t, errors.Is(err, ErrMissingObject))

	_, err = f.ReadFloats("/FAST_CLOCK/child")
	assert.True(t, errors.Is(err, ErrMissingObject))
}

func TestCloseTwice(t *testing.T) {
	f, err := Open(writeFixture(t))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = f.ReadFloats("/FAST_CLOCK")
	assert.Error(t, err)
}

func TestDecodeConnectionRows(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "pulseblaster_0", "parent": "None", "connected to": "None"},
		{"name": []byte("ni_pcie_6363_0\x00\x00"), "parent": "pulseblaster_0", "connected to": "fast clock"},
	}
	records, err := DecodeConnectionRows(rows)
	require.NoError(t, err)
	assert.Equal(t, []topology.Record{
		{Name: "pulseblaster_0", Parent: "None", ConnectedTo: "None"},
		{Name: "ni_pcie_6363_0", Parent: "pulseblaster_0", ConnectedTo: "fast clock"},
	}, records)

	_, err = DecodeConnectionRows([]map[string]interface{}{{"name": "x", "parent": "None"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"connected to"`)
}

func TestToUint32(t *testing.T) {
	assert.Equal(t, uint32(0xFFFFFFFF), toUint32(-1))
	assert.Equal(t, uint32(0x80000000), toUint32(-2147483648))
	assert.Equal(t, uint32(7), toUint32(7))
}

func TestDevicePath(t *testing.T) {
	assert.Equal(t, "/devices/ni_pcie_6363_0", DevicePath("ni_pcie_6363_0"))
}
