// Package shotfile reads the parts of an HDF5 shot file that the viewer
// needs: the connection table, the device groups and their output and clock
// datasets.
package shotfile

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/scigolib/hdf5"

	"github.com/OpenTraceLab/ShotView/pkg/topology"
)

// Well-known locations inside a shot file.
const (
	ConnectionTablePath = "/connection table"
	DevicesPath         = "/devices"
)

var (
	// ErrFileNotFound is returned when the shot file path does not exist.
	ErrFileNotFound = errors.New("shot file does not exist")
	// ErrUnreadableFile is returned when the path exists but is not a readable HDF5 file.
	ErrUnreadableFile = errors.New("shot file is not a readable HDF5 file")
	// ErrMissingObject is returned when a group, dataset or attribute is absent.
	ErrMissingObject = errors.New("object not found in shot file")
)

// File is an open, read-only shot file.
type File struct {
	path string
	h5   *hdf5.File
}

// Open opens path for reading. A missing path yields ErrFileNotFound and an
// unparseable one ErrUnreadableFile; both errors name the path.
func Open(filename string) (*File, error) {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, filename, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnreadableFile, filename)
	}

	h5, err := hdf5.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, filename, err)
	}
	return &File{path: filename, h5: h5}, nil
}

// Path returns the file name the shot was opened from.
func (f *File) Path() string {
	return f.path
}

// Close releases the underlying file handle.
func (f *File) Close() error {
	if f.h5 == nil {
		return nil
	}
	err := f.h5.Close()
	f.h5 = nil
	return err
}

// lookup resolves an absolute slash-separated path to a group or dataset.
func (f *File) lookup(p string) (hdf5.Object, error) {
	if f.h5 == nil {
		return nil, fmt.Errorf("shotfile: %s is closed", f.path)
	}
	var obj hdf5.Object = f.h5.Root()
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part == "" {
			continue
		}
		group, ok := obj.(*hdf5.Group)
		if !ok {
			return nil, fmt.Errorf("%w: %s (%q is not a group)", ErrMissingObject, p, obj.Name())
		}
		obj = nil
		for _, child := range group.Children() {
			if path.Base(child.Name()) == part {
				obj = child
				break
			}
		}
		if obj == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingObject, p)
		}
	}
	return obj, nil
}

func (f *File) dataset(p string) (*hdf5.Dataset, error) {
	obj, err := f.lookup(p)
	if err != nil {
		return nil, err
	}
	ds, ok := obj.(*hdf5.Dataset)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a dataset", ErrMissingObject, p)
	}
	return ds, nil
}

// Has reports whether an object exists at p.
func (f *File) Has(p string) bool {
	_, err := f.lookup(p)
	return err == nil
}

// ReadFloats reads a numeric dataset, flattened in row-major order.
func (f *File) ReadFloats(p string) ([]float64, error) {
	ds, err := f.dataset(p)
	if err != nil {
		return nil, err
	}
	values, err := ds.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return values, nil
}

// ReadUint32s reads a 32-bit integer dataset as unsigned words.
func (f *File) ReadUint32s(p string) ([]uint32, error) {
	values, err := f.ReadFloats(p)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = toUint32(v)
	}
	return out, nil
}

// toUint32 undoes the signed widening the reader applies to 4-byte integers.
func toUint32(v float64) uint32 {
	if v < 0 {
		return uint32(int32(v))
	}
	return uint32(v)
}

// Attribute reads an attribute of the group or dataset at p.
func (f *File) Attribute(p, name string) (interface{}, error) {
	obj, err := f.lookup(p)
	if err != nil {
		return nil, err
	}

	switch o := obj.(type) {
	case *hdf5.Dataset:
		v, err := o.ReadAttribute(name)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %q of %s: %v", ErrMissingObject, name, p, err)
		}
		return v, nil
	case *hdf5.Group:
		attrs, err := o.Attributes()
		if err != nil {
			return nil, fmt.Errorf("attributes of %s: %w", p, err)
		}
		for _, attr := range attrs {
			if attr.Name == name {
				return attr.ReadValue()
			}
		}
	}
	return nil, fmt.Errorf("%w: attribute %q of %s", ErrMissingObject, name, p)
}

// StringAttribute reads an attribute and renders it as a string.
func (f *File) StringAttribute(p, name string) (string, error) {
	v, err := f.Attribute(p, name)
	if err != nil {
		return "", err
	}
	return stringValue(v), nil
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return strings.TrimRight(string(s), "\x00")
	case []string:
		return strings.Join(s, ",")
	case []interface{}:
		parts := make([]string, len(s))
		for i, e := range s {
			parts[i] = stringValue(e)
		}
		return strings.Join(parts, ",")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ConnectionTable reads every row of the connection table.
func (f *File) ConnectionTable() ([]topology.Record, error) {
	ds, err := f.dataset(ConnectionTablePath)
	if err != nil {
		return nil, err
	}
	rows, err := ds.ReadCompound()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ConnectionTablePath, err)
	}

	fields := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		fields[i] = map[string]interface{}(row)
	}
	return DecodeConnectionRows(fields)
}

// DecodeConnectionRows converts compound rows with "name", "parent" and
// "connected to" members into records.
func DecodeConnectionRows(rows []map[string]interface{}) ([]topology.Record, error) {
	records := make([]topology.Record, 0, len(rows))
	for i, row := range rows {
		var rec topology.Record
		for field, dst := range map[string]*string{
			"name":         &rec.Name,
			"parent":       &rec.Parent,
			"connected to": &rec.ConnectedTo,
		} {
			v, ok := row[field]
			if !ok {
				return nil, fmt.Errorf("connection table row %d: missing %q", i, field)
			}
			*dst = stringValue(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Devices lists the device groups under /devices in file order.
func (f *File) Devices() ([]string, error) {
	obj, err := f.lookup(DevicesPath)
	if err != nil {
		return nil, err
	}
	group, ok := obj.(*hdf5.Group)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a group", ErrMissingObject, DevicesPath)
	}

	var names []string
	for _, child := range group.Children() {
		if _, ok := child.(*hdf5.Group); ok {
			names = append(names, path.Base(child.Name()))
		}
	}
	return names, nil
}

// DevicePath returns the group path of a device.
func DevicePath(device string) string {
	return DevicesPath + "/" + device
}

// ReadClock implements topology.ClockSource.
func (f *File) ReadClock(device string, kind topology.ClockKind) ([]float64, error) {
	return f.ReadFloats(DevicePath(device) + "/" + string(kind))
}

// ReadDeviceFloats reads a numeric dataset of a device group.
func (f *File) ReadDeviceFloats(device, dataset string) ([]float64, error) {
	return f.ReadFloats(DevicePath(device) + "/" + dataset)
}

// ReadDeviceWords reads a packed digital dataset of a device group.
func (f *File) ReadDeviceWords(device, dataset string) ([]uint32, error) {
	return f.ReadUint32s(DevicePath(device) + "/" + dataset)
}

// DeviceAttribute reads a string attribute of a device group.
func (f *File) DeviceAttribute(device, name string) (string, error) {
	return f.StringAttribute(DevicePath(device), name)
}

// HasDeviceDataset reports whether a device group contains dataset.
func (f *File) HasDeviceDataset(device, dataset string) bool {
	return f.Has(DevicePath(device) + "/" + dataset)
}

// RowCount returns the number of elements of a dataset of any supported
// type, compound tables included.
func (f *File) RowCount(p string) (int, error) {
	ds, err := f.dataset(p)
	if err != nil {
		return 0, err
	}
	if rows, err := ds.ReadCompound(); err == nil {
		return len(rows), nil
	}
	values, err := ds.Read()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", p, err)
	}
	return len(values), nil
}

// DeviceRowCount returns the number of rows of a device dataset.
func (f *File) DeviceRowCount(device, dataset string) (int, error) {
	return f.RowCount(DevicePath(device) + "/" + dataset)
}
