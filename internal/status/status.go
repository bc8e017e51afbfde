// Package status provides a thread-safe status tracker for the rf-remote
// daemon. It is the one surface shared between the decode loop and the
// HTTP handlers, so reads always go through a locked snapshot copy.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rf-remote/internal/ev1527"
)

// NetworkInfo contains network state reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Chip        string
	Pin         int
	Invert      bool
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// LastPress records the most recent decoded transmission.
type LastPress struct {
	Address uint32
	Key     uint8
	Time    time.Time
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Last          *LastPress
	Counts        ev1527.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordPress stores the most recent decoded transmission.
func (t *Tracker) RecordPress(address uint32, key uint8, at time.Time) {
	t.mu.Lock()
	t.snap.Last = &LastPress{Address: address, Key: key, Time: at}
	t.mu.Unlock()
}

// SetCounts updates the decoder activity counters.
// Called from the run loop after each pulse batch.
func (t *Tracker) SetCounts(counts ev1527.Counts) {
	t.mu.Lock()
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
