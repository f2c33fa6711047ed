// Package status provides a thread-safe status tracker for the bridge
// daemon. It is read by the HTTP handlers and the periodic stats log.
package status

import (
	"sync"
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
)

// Config contains bridge configuration for display.
type Config struct {
	Interface   string
	Broker      string
	TopicPrefix string
	HTTPAddr    string
}

// Counts tallies frame traffic since startup.
type Counts struct {
	Received    int
	Published   int
	DecodeSkips int
	Transmitted int
	PerKind     map[frame.Kind]int
}

// Snapshot is a point-in-time view of bridge state. It is a value type
// with its own map copy, safe to use after the lock is released.
type Snapshot struct {
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the bridge started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable bridge state behind an RWMutex.
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
			Counts:    Counts{PerKind: make(map[frame.Kind]int)},
		},
	}
}

// RecordFrame counts one received frame. decoded is false for unknown
// or malformed frames, which are skipped rather than published.
func (t *Tracker) RecordFrame(kind frame.Kind, decoded bool) {
	t.mu.Lock()
	t.snap.Counts.Received++
	if decoded {
		t.snap.Counts.Published++
		t.snap.Counts.PerKind[kind]++
	} else {
		t.snap.Counts.DecodeSkips++
	}
	t.mu.Unlock()
}

// RecordTX counts one frame written back to the bus.
func (t *Tracker) RecordTX() {
	t.mu.Lock()
	t.snap.Counts.Transmitted++
	t.mu.Unlock()
}

// SetMQTTConnected sets the broker connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the bridge state. The Now
// field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	perKind := make(map[frame.Kind]int, len(t.snap.Counts.PerKind))
	for k, v := range t.snap.Counts.PerKind {
		perKind[k] = v
	}
	t.mu.RUnlock()
	s.Counts.PerKind = perKind
	s.Now = time.Now()
	return s
}
