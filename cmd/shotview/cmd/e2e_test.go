package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scigolib/hdf5"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/OpenTraceLab/ShotView/pkg/shotfile"
	"github.com/OpenTraceLab/ShotView/pkg/topology"
	"github.com/OpenTraceLab/ShotView/pkg/waveform"
)

// runCLI executes the root command with args and returns captured stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Read in background to prevent pipe buffer from blocking on Windows
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	// Reset flags to prevent accumulation between tests
	verbose = false
	strict = false
	outputFormat = "text"
	includeSamples = false
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("pan_step: 0.5\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	// Restore stdout and wait for reader
	w.Close()
	os.Stdout = old
	<-done

	return buf.String(), err
}

// writeNotAShot writes a valid HDF5 file with no connection table.
func writeNotAShot(t *testing.T) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "bare.h5")
	fw, err := hdf5.CreateForWrite(filename, hdf5.CreateTruncate)
	if err != nil {
		t.Fatalf("CreateForWrite: %v", err)
	}
	ds, err := fw.CreateDataset("/FAST_CLOCK", hdf5.Float64, []uint64{2})
	if err != nil {
		t.Fatalf("CreateDataset: %v", err)
	}
	if err := ds.Write([]float64{0, 1}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return filename
}

func TestStartupErrorsE2E(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.h5")
	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("not hdf5"), 0644); err != nil {
		t.Fatal(err)
	}
	bare := writeNotAShot(t)

	tests := []struct {
		name        string
		args        []string
		wantIs      error
		wantContain string
	}{
		{
			name:   "no file argument",
			args:   []string{},
			wantIs: ErrMissingArgument,
		},
		{
			name:   "channels without file",
			args:   []string{"channels"},
			wantIs: ErrMissingArgument,
		},
		{
			name:        "file does not exist",
			args:        []string{"channels", missing},
			wantIs:      shotfile.ErrFileNotFound,
			wantContain: missing,
		},
		{
			name:        "not an hdf5 file",
			args:        []string{"channels", text},
			wantIs:      shotfile.ErrUnreadableFile,
			wantContain: text,
		},
		{
			name:        "hdf5 without connection table",
			args:        []string{"channels", bare},
			wantIs:      shotfile.ErrMissingObject,
			wantContain: "connection table",
		},
		{
			name:        "clock on missing file",
			args:        []string{"clock", missing, "ni_pcie_6363_0"},
			wantIs:      shotfile.ErrFileNotFound,
			wantContain: missing,
		},
		{
			name:   "clock without device",
			args:   []string{"clock"},
			wantIs: ErrMissingArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatalf("Expected error but got none")
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("error %v is not %v", err, tt.wantIs)
			}
			if tt.wantContain != "" && !strings.Contains(err.Error(), tt.wantContain) {
				t.Errorf("error %q does not mention %q", err, tt.wantContain)
			}
		})
	}
}

func TestBadConfigE2E(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfg, []byte("clock_labels:\n  fast clock: NOPE\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := runCLI(t, "channels", "--config", cfg, writeNotAShot(t))
	if err == nil || !strings.Contains(err.Error(), "NOPE") {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestMissingConfigE2E(t *testing.T) {
	absent := filepath.Join(t.TempDir(), "typo.yaml")
	_, err := runCLI(t, "channels", "--config", absent, writeNotAShot(t))
	if err == nil {
		t.Fatal("Expected error but got none")
	}
	if !errors.Is(err, os.ErrNotExist) || !strings.Contains(err.Error(), absent) {
		t.Errorf("error %v does not report the missing config %s", err, absent)
	}
}

func sampleChannels(t *testing.T) []waveform.Channel {
	t.Helper()
	ch, err := waveform.NewChannel("AO_coil", "ni_pcie_6363_0", "ao0", []float64{0, 1}, []float64{2, 3}, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	return []waveform.Channel{ch}
}

func TestWriteChannelsText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeChannels(&buf, "text", sampleChannels(t), false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"1 channel(s)", "AO_coil", "ni_pcie_6363_0", "ao0", "4 points", "0 .. 1.5 s"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing expected string: %q\nGot:\n%s", want, out)
		}
	}
}

func TestWriteChannelsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeChannels(&buf, "json", sampleChannels(t), true); err != nil {
		t.Fatal(err)
	}
	var infos []ChannelInfo
	if err := json.Unmarshal(buf.Bytes(), &infos); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if len(infos) != 1 || infos[0].Name != "AO_coil" || infos[0].Stop != 1.5 {
		t.Errorf("infos = %+v", infos)
	}
	if len(infos[0].Times) != 4 || infos[0].Data[3] != 3 {
		t.Errorf("samples = %v %v", infos[0].Times, infos[0].Data)
	}
}

func TestWriteChannelsMsgpack(t *testing.T) {
	var buf bytes.Buffer
	if err := writeChannels(&buf, "msgpack", sampleChannels(t), false); err != nil {
		t.Fatal(err)
	}
	var infos []ChannelInfo
	if err := msgpack.Unmarshal(buf.Bytes(), &infos); err != nil {
		t.Fatalf("invalid msgpack: %v", err)
	}
	if len(infos) != 1 || infos[0].Connection != "ao0" || infos[0].Points != 4 {
		t.Errorf("infos = %+v", infos)
	}
	if infos[0].Times != nil {
		t.Errorf("samples included without --samples: %v", infos[0].Times)
	}
}

func TestWriteChannelsUnknownFormat(t *testing.T) {
	if err := writeChannels(&bytes.Buffer{}, "csv", nil, false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteClockReport(t *testing.T) {
	res := topology.Resolution{
		Lineage: topology.Lineage{
			Device:                "ni_pcie_6363_0",
			ClockSourceConnection: "ni_pcie_6363_0",
			ClockingDevice:        "pulseblaster_0",
			RootSentinel:          topology.RootSentinel,
			Chain:                 []string{"ni_pcie_6363_0", "pulseblaster_0", topology.RootSentinel},
		},
		Label:   topology.FastClockLabel,
		Kind:    topology.FastClock,
		Samples: []float64{0, 0.5, 2},
	}

	var buf bytes.Buffer
	writeClockReport(&buf, res, []string{"AO_coil", "DO_trigger"})
	out := buf.String()
	for _, want := range []string{
		"ni_pcie_6363_0 -> pulseblaster_0 -> None",
		"Clocking device: pulseblaster_0",
		"FAST_CLOCK",
		"Samples:         3",
		"0 .. 2 s",
		"Attached:        AO_coil, DO_trigger",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing expected string: %q\nGot:\n%s", want, out)
		}
	}

	buf.Reset()
	writeClockReport(&buf, topology.Resolution{Kind: topology.SlowClock}, nil)
	if !strings.Contains(buf.String(), "Attached:        (none)") {
		t.Errorf("missing empty attachment line:\n%s", buf.String())
	}
}
