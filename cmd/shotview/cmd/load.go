package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/OpenTraceLab/ShotView/internal/config"
	"github.com/OpenTraceLab/ShotView/pkg/devices"
	"github.com/OpenTraceLab/ShotView/pkg/shotfile"
	"github.com/OpenTraceLab/ShotView/pkg/topology"
)

// logFunc receives progress and warning lines while a shot loads.
type logFunc func(format string, args ...interface{})

// stderrLog prints warnings always and progress lines when verbose.
func stderrLog(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if verbose || strings.HasPrefix(msg, "WARNING") {
		fmt.Fprintln(os.Stderr, msg)
	}
}

// loadConfig reads --config if given, otherwise the platform default.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadDefault()
}

// shot is everything extracted from a shot file.
type shot struct {
	Path    string
	Index   *topology.Index
	Devices []string
	Result  devices.Result
}

// openTopology opens path and indexes its connection table. The caller
// closes the returned file.
func openTopology(path string, cfg *config.Config, logf logFunc) (*shotfile.File, *topology.Index, *topology.Resolver, error) {
	f, err := shotfile.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}

	records, err := f.ConnectionTable()
	if err != nil {
		f.Close()
		return nil, nil, nil, err
	}
	idx := topology.NewIndex(records)
	logf("Connection table: %d rows, %d devices", len(records), idx.Len())

	for _, dup := range idx.Duplicates() {
		logf("WARNING: duplicate %s", dup)
	}
	if strict {
		if err := idx.Strict(); err != nil {
			f.Close()
			return nil, nil, nil, err
		}
	}

	resolver := &topology.Resolver{Index: idx, Labels: cfg.Labels(), Source: f}
	return f, idx, resolver, nil
}

// loadShot runs the whole extraction pipeline on path.
func loadShot(path string, cfg *config.Config, logf logFunc) (*shot, error) {
	f, idx, resolver, err := openTopology(path, cfg, logf)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Devices()
	if err != nil {
		return nil, err
	}
	logf("Devices: %s", strings.Join(names, ", "))

	registry := devices.DefaultRegistry(cfg.DigitalLines)
	res, err := registry.ExtractAll(devices.ExtractContext{
		Index:    idx,
		Resolver: resolver,
		Source:   f,
		Logf:     logf,
	}, names)
	if err != nil {
		return nil, err
	}
	if strict {
		if err := res.UnsupportedError(); err != nil {
			return nil, err
		}
	}

	return &shot{Path: path, Index: idx, Devices: names, Result: res}, nil
}
