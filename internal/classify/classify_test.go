package classify

import (
	"testing"
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
)

const period = 100 * time.Millisecond

func testConfig() Config {
	return Config{
		LongPress:     DurationForCount(5, period),
		ExtendedPress: DurationForCount(30, period),
		Cooldown:      300 * time.Millisecond,
		Scroll: map[string]Direction{
			"0,32":   DirUp,
			"0,64":   DirDown,
			MFSWUp:   DirUp,
			MFSWDown: DirDown,
		},
		Bindings: Bindings{
			Short: map[string]string{
				"128,0": "down",
				"0,16":  "enter",
				"0,32":  "2",
				"0,64":  "1",
				MFSWUp:   "up",
				MFSWDown: "down",
				MFSWMode: "enter",
			},
			Long: map[string]string{
				"128,0":  "p",
				"0,16":   "playpause",
				MFSWMode: "esc",
			},
			Extended: map[string]string{
				"0,16": "h",
			},
		},
	}
}

// hold feeds n active frames at the repeat period followed by a release
// and returns everything emitted.
func hold(c *Classifier, control string, n int, start time.Time) []Event {
	var events []Event
	now := start
	for i := 0; i < n; i++ {
		events = append(events, c.Active(control, now)...)
		now = now.Add(period)
	}
	events = append(events, c.Release(control, now)...)
	return events
}

func TestShortPress(t *testing.T) {
	c := New(testConfig())
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	events := hold(c, "0,16", 2, start)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Kind != Short || events[0].Action != "enter" {
		t.Errorf("got %+v, want short/enter", events[0])
	}
}

func TestLongPressAtThreshold(t *testing.T) {
	c := New(testConfig())
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Exactly the threshold count classifies as long.
	events := hold(c, "0,16", 5, start)
	if len(events) != 1 || events[0].Kind != Long || events[0].Action != "playpause" {
		t.Fatalf("got %+v, want one long/playpause", events)
	}
}

func TestLongPressBelowThresholdIsShort(t *testing.T) {
	c := New(testConfig())
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	events := hold(c, "0,16", 4, start)
	if len(events) != 1 || events[0].Kind != Short {
		t.Fatalf("got %+v, want one short", events)
	}
}

func TestLongPressSixRepeats(t *testing.T) {
	// Discriminator "128,0" held for 6 repeat frames with threshold 5
	// resolves through the long table.
	c := New(testConfig())
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	events := hold(c, "128,0", 6, start)
	if len(events) != 1 || events[0].Kind != Long || events[0].Action != "p" {
		t.Fatalf("got %+v, want one long/p", events)
	}
}

func TestExtendedPressFiresOnceAtCrossing(t *testing.T) {
	c := New(testConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var events []Event
	var extendedAt int
	for i := 0; i < 40; i++ {
		got := c.Active("0,16", now)
		if len(got) > 0 && extendedAt == 0 {
			extendedAt = i + 1
		}
		events = append(events, got...)
		now = now.Add(period)
	}
	events = append(events, c.Release("0,16", now)...)

	if len(events) != 1 {
		t.Fatalf("got %d events, want exactly 1 (no release emission)", len(events))
	}
	if events[0].Kind != Extended || events[0].Action != "h" {
		t.Errorf("got %+v, want extended/h", events[0])
	}
	if extendedAt != 30 {
		t.Errorf("extended fired at frame %d, want 30", extendedAt)
	}
}

func TestScrollExemptEmitsPerFrame(t *testing.T) {
	c := New(testConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var events []Event
	for i := 0; i < 10; i++ {
		events = append(events, c.Active("0,32", now)...)
		now = now.Add(10 * time.Millisecond) // far faster than cooldown
	}

	if len(events) != 10 {
		t.Fatalf("got %d events, want 10", len(events))
	}
	for _, ev := range events {
		if ev.Kind != ScrollUp || ev.Action != "2" {
			t.Errorf("got %+v, want scroll_up/2", ev)
		}
	}
}

func TestCooldownCoalescesBouncedPress(t *testing.T) {
	c := New(testConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// First press emits at release.
	events := c.Active("0,16", now)
	now = now.Add(period)
	events = append(events, c.Release("0,16", now)...)
	if len(events) != 1 {
		t.Fatalf("first press: got %d events, want 1", len(events))
	}

	// Bounce re-activation inside the cooldown window: same logical
	// press, no second emission.
	now = now.Add(50 * time.Millisecond)
	events = c.Active("0,16", now)
	now = now.Add(period)
	events = append(events, c.Release("0,16", now)...)
	if len(events) != 0 {
		t.Fatalf("bounced press: got %+v, want none", events)
	}

	// Past the cooldown the control re-arms.
	now = now.Add(400 * time.Millisecond)
	events = c.Active("0,16", now)
	now = now.Add(period)
	events = append(events, c.Release("0,16", now)...)
	if len(events) != 1 {
		t.Fatalf("re-armed press: got %d events, want 1", len(events))
	}
}

func TestTickFinalizesStalledPress(t *testing.T) {
	c := New(testConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c.Active("128,0", now)
	// No release frame arrives; cooldown expiry classifies the press.
	events := c.Tick(now.Add(time.Second))
	if len(events) != 1 || events[0].Kind != Short || events[0].Control != "128,0" {
		t.Fatalf("got %+v, want one short for 128,0", events)
	}
	// A later tick must not emit again.
	if events := c.Tick(now.Add(2 * time.Second)); len(events) != 0 {
		t.Errorf("second tick emitted %+v", events)
	}
}

func TestUnboundControlStillEmits(t *testing.T) {
	c := New(testConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	events := hold(c, "0,2", 2, now)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Action != "" {
		t.Errorf("unbound control resolved action %q, want empty", events[0].Action)
	}
}

func TestHandleEventMMI(t *testing.T) {
	c := New(testConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	press := frame.MMIRaw{Action: frame.MMIPress, Mask0: 0, Mask1: 16}
	release := frame.MMIRaw{Action: frame.MMIRelease, Mask0: 0, Mask1: 16}

	if events := c.HandleEvent(press, now); len(events) != 0 {
		t.Fatalf("press emitted early: %+v", events)
	}
	events := c.HandleEvent(release, now.Add(period))
	if len(events) != 1 || events[0].Kind != Short || events[0].Action != "enter" {
		t.Fatalf("got %+v, want short/enter", events)
	}
}

func TestHandleEventMFSW(t *testing.T) {
	c := New(testConfig())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Wheel scrolls bypass debounce.
	events := c.HandleEvent(frame.MFSWRaw{Prefix: 0x39, Command: frame.MFSWScrollUp}, now)
	if len(events) != 1 || events[0].Kind != ScrollUp || events[0].Action != "up" {
		t.Fatalf("scroll: got %+v", events)
	}

	// Mode held past the long threshold, released by the all-clear frame.
	for i := 0; i < 6; i++ {
		c.HandleEvent(frame.MFSWRaw{Prefix: 0x39, Command: frame.MFSWModePress}, now)
		now = now.Add(period)
	}
	events = c.HandleEvent(frame.MFSWRaw{Prefix: 0x39, Command: frame.MFSWRelease}, now)
	if len(events) != 1 || events[0].Kind != Long || events[0].Action != "esc" {
		t.Fatalf("mode: got %+v, want long/esc", events)
	}
}

func TestDurationForCount(t *testing.T) {
	if got := DurationForCount(5, period); got != 400*time.Millisecond {
		t.Errorf("DurationForCount(5) = %v", got)
	}
	if got := DurationForCount(1, period); got != 0 {
		t.Errorf("DurationForCount(1) = %v", got)
	}
	if got := DurationForCount(0, period); got != 0 {
		t.Errorf("DurationForCount(0) = %v", got)
	}
}
