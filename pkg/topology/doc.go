// Package topology indexes the connection table of a shot file and resolves
// which clock drives a given output device.
//
// # Connection Table
//
// Every hardware device and connection point of an experiment is one row of
// the connection table:
//
//	name            parent          connected to
//	pulseblaster_0  None            None
//	ni_pcie_6363_0  pulseblaster_0  fast clock
//	AO_shutter      ni_pcie_6363_0  ao0
//
// The literal parent "None" marks the root of the device tree. An Index
// answers the three lookups the rest of the program needs: parent of a name,
// connection of a name, and name at a (parent, connection) pair.
//
// # Clock Resolution
//
// A device is clocked by the root's direct child on its ancestry chain. The
// edge below that clocking device carries a label ("fast clock" or
// "slow_clock") that selects which of the clocking device's time bases
// applies:
//
//	idx := topology.NewIndex(records)
//	res := &topology.Resolver{Index: idx, Labels: topology.DefaultLabels(), Source: src}
//	r, err := res.Resolve("ni_pcie_6363_0")
//	// r.Lineage.ClockingDevice == "pulseblaster_0", r.Kind == topology.FastClock
//
// Chains that are too short to name a clocking device, cycles, dangling
// parents and unknown labels all fail with ErrMalformedTopology.
package topology
