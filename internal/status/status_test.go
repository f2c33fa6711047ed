package status

import (
	"sync"
	"testing"
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
)

func TestTrackerCounts(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{Interface: "can0", Broker: "tcp://localhost:1883"})

	tr.RecordFrame(frame.KindLight, true)
	tr.RecordFrame(frame.KindLight, true)
	tr.RecordFrame(frame.KindMMI, true)
	tr.RecordFrame("", false)
	tr.RecordTX()

	snap := tr.Snapshot()
	if snap.Counts.Received != 4 {
		t.Errorf("Received = %d", snap.Counts.Received)
	}
	if snap.Counts.Published != 3 {
		t.Errorf("Published = %d", snap.Counts.Published)
	}
	if snap.Counts.DecodeSkips != 1 {
		t.Errorf("DecodeSkips = %d", snap.Counts.DecodeSkips)
	}
	if snap.Counts.Transmitted != 1 {
		t.Errorf("Transmitted = %d", snap.Counts.Transmitted)
	}
	if snap.Counts.PerKind[frame.KindLight] != 2 || snap.Counts.PerKind[frame.KindMMI] != 1 {
		t.Errorf("PerKind = %v", snap.Counts.PerKind)
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime = %v", snap.StartTime)
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.RecordFrame(frame.KindLight, true)

	snap := tr.Snapshot()
	tr.RecordFrame(frame.KindLight, true)

	if snap.Counts.PerKind[frame.KindLight] != 1 {
		t.Errorf("snapshot map mutated after the fact: %v", snap.Counts.PerKind)
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.RecordFrame(frame.KindMFSW, j%10 != 0)
				tr.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	if snap.Counts.Received != 800 {
		t.Errorf("Received = %d, want 800", snap.Counts.Received)
	}
}

func TestUptime(t *testing.T) {
	start := time.Now().Add(-90 * time.Second)
	tr := NewTracker(start, Config{})
	up := tr.Snapshot().Uptime()
	if up < 89*time.Second || up > 92*time.Second {
		t.Errorf("Uptime = %v", up)
	}
}
