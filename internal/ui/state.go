package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/OpenTraceLab/ShotView/pkg/waveform"
)

// StateSnapshot captures a copy of the state data for rendering without
// requiring the UI to hold locks while laying out widgets.
type StateSnapshot struct {
	ShotFile string
	Channels []waveform.Channel

	LastError error
	Status    string

	Logs        []string
	AppVersion  string
	LastUpdated time.Time
}

// AppState tracks the data shown by the preview window. Loading happens
// before the window opens; the event loop only reads.
type AppState struct {
	mu sync.RWMutex

	shotFile string
	channels []waveform.Channel

	lastError error
	status    string

	logs       []string
	logLimit   int
	appVersion string

	lastUpdated time.Time
}

// NewState returns a baseline AppState with safe defaults.
func NewState() *AppState {
	return &AppState{
		logLimit:    200,
		status:      "Idle",
		appVersion:  "dev",
		lastUpdated: time.Now(),
	}
}

// Snapshot returns a copy of the mutable state for rendering. Channel
// sample slices are shared, they are never written after loading.
func (s *AppState) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels := make([]waveform.Channel, len(s.channels))
	copy(channels, s.channels)

	logCopy := make([]string, len(s.logs))
	copy(logCopy, s.logs)

	return StateSnapshot{
		ShotFile:    s.shotFile,
		Channels:    channels,
		LastError:   s.lastError,
		Status:      s.status,
		Logs:        logCopy,
		AppVersion:  s.appVersion,
		LastUpdated: s.lastUpdated,
	}
}

// SetShot records the loaded file and its channels.
func (s *AppState) SetShot(path string, channels []waveform.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shotFile = path
	s.channels = make([]waveform.Channel, len(channels))
	copy(s.channels, channels)
	s.lastUpdated = time.Now()
}

// Channels returns the loaded channels.
func (s *AppState) Channels() []waveform.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := make([]waveform.Channel, len(s.channels))
	copy(clone, s.channels)
	return clone
}

// SetStatus updates the user-facing status message.
func (s *AppState) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.lastUpdated = time.Now()
}

// SetError stores the latest error surfaced to the UI.
func (s *AppState) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
	s.lastUpdated = time.Now()
}

// AppendLog appends a log message, trimming the oldest entries past the limit.
func (s *AppState) AppendLog(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, msg)
	if s.logLimit > 0 && len(s.logs) > s.logLimit {
		offset := len(s.logs) - s.logLimit
		s.logs = append([]string(nil), s.logs[offset:]...)
	}
	s.lastUpdated = time.Now()
}

// Logf formats and appends a log message.
func (s *AppState) Logf(format string, args ...interface{}) {
	s.AppendLog(fmt.Sprintf(format, args...))
}

// SetAppVersion records the running application version string.
func (s *AppState) SetAppVersion(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version == "" {
		version = "dev"
	}
	s.appVersion = version
	s.lastUpdated = time.Now()
}

// AppVersion returns the current application version string.
func (s *AppState) AppVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appVersion
}
