package topology

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// RootSentinel is the parent value of the device tree's root.
const RootSentinel = "None"

var (
	// ErrMalformedTopology reports a device tree that cannot be walked to a clock.
	ErrMalformedTopology = errors.New("malformed topology")
	// ErrDuplicateKey reports connection table rows that overwrite each other.
	ErrDuplicateKey = errors.New("duplicate connection table key")
)

// Record is one row of the connection table.
type Record struct {
	Name        string
	Parent      string
	ConnectedTo string
}

// Endpoint identifies a connection point on a parent device.
type Endpoint struct {
	Parent      string
	ConnectedTo string
}

// DuplicateKind names the lookup map a duplicate was found in.
type DuplicateKind string

const (
	DuplicateName     DuplicateKind = "name"
	DuplicateEndpoint DuplicateKind = "endpoint"
)

// Duplicate records one silently overwritten entry.
type Duplicate struct {
	Kind     DuplicateKind
	Key      string
	Previous string
	Current  string
}

func (d Duplicate) String() string {
	return fmt.Sprintf("%s %q: %q replaced by %q", d.Kind, d.Key, d.Previous, d.Current)
}

// Index holds the lookup maps derived from a connection table. It is built
// once and never mutated afterwards.
type Index struct {
	parents     map[string]string
	connections map[string]string
	names       map[Endpoint]string
	order       []string
	duplicates  []Duplicate
}

// NewIndex builds the parent, connection and name maps. Later rows win over
// earlier rows with the same key; every overwrite is kept in Duplicates.
func NewIndex(records []Record) *Index {
	idx := &Index{
		parents:     make(map[string]string, len(records)),
		connections: make(map[string]string, len(records)),
		names:       make(map[Endpoint]string, len(records)),
	}

	for _, rec := range records {
		if prev, ok := idx.parents[rec.Name]; ok {
			idx.duplicates = append(idx.duplicates, Duplicate{
				Kind:     DuplicateName,
				Key:      rec.Name,
				Previous: prev + "/" + idx.connections[rec.Name],
				Current:  rec.Parent + "/" + rec.ConnectedTo,
			})
		} else {
			idx.order = append(idx.order, rec.Name)
		}
		idx.parents[rec.Name] = rec.Parent
		idx.connections[rec.Name] = rec.ConnectedTo

		ep := Endpoint{Parent: rec.Parent, ConnectedTo: rec.ConnectedTo}
		if prev, ok := idx.names[ep]; ok && prev != rec.Name {
			idx.duplicates = append(idx.duplicates, Duplicate{
				Kind:     DuplicateEndpoint,
				Key:      ep.Parent + "/" + ep.ConnectedTo,
				Previous: prev,
				Current:  rec.Name,
			})
		}
		idx.names[ep] = rec.Name
	}

	return idx
}

// Len returns the number of distinct device names.
func (idx *Index) Len() int {
	return len(idx.order)
}

// Parent returns the parent of name.
func (idx *Index) Parent(name string) (string, bool) {
	p, ok := idx.parents[name]
	return p, ok
}

// Connection returns the connection label of name on its parent.
func (idx *Index) Connection(name string) (string, bool) {
	c, ok := idx.connections[name]
	return c, ok
}

// Name returns the device attached to parent at connectedTo.
func (idx *Index) Name(parent, connectedTo string) (string, bool) {
	n, ok := idx.names[Endpoint{Parent: parent, ConnectedTo: connectedTo}]
	return n, ok
}

// Children returns the names whose parent is parent, sorted.
func (idx *Index) Children(parent string) []string {
	var out []string
	for _, name := range idx.order {
		if idx.parents[name] == parent {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Duplicates returns the overwrites seen while building the index.
func (idx *Index) Duplicates() []Duplicate {
	out := make([]Duplicate, len(idx.duplicates))
	copy(out, idx.duplicates)
	return out
}

// Strict returns an ErrDuplicateKey error if any row overwrote another.
func (idx *Index) Strict() error {
	if len(idx.duplicates) == 0 {
		return nil
	}
	parts := make([]string, len(idx.duplicates))
	for i, d := range idx.duplicates {
		parts[i] = d.String()
	}
	return fmt.Errorf("%w: %s", ErrDuplicateKey, strings.Join(parts, "; "))
}
