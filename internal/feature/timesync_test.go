package feature

import (
	"testing"
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
)

func clockPayload(t *testing.T, r frame.ClockReading, format frame.ClockFormat) frame.ClockData {
	t.Helper()
	p, err := frame.EncodeClock(r, format)
	if err != nil {
		t.Fatalf("EncodeClock: %v", err)
	}
	return frame.ClockData{Payload: p}
}

func TestTimeSyncCorrectsLargeDrift(t *testing.T) {
	r := &FakeRunner{}
	ts := NewTimeSync(r, "date", frame.ClockHex, time.UTC, 2*time.Minute)

	car := frame.ClockReading{Year: 2026, Month: 3, Day: 1, Hour: 14, Minute: 30, Second: 0}
	system := time.Date(2026, 3, 1, 14, 20, 0, 0, time.UTC) // 10 min behind

	applied, err := ts.OnClock(clockPayload(t, car, frame.ClockHex), system)
	if err != nil || !applied {
		t.Fatalf("applied=%v err=%v", applied, err)
	}
	calls := r.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %v", calls)
	}
	want := []string{"date", "-u", "030114302026.00"}
	for i, arg := range want {
		if calls[0][i] != arg {
			t.Errorf("arg %d = %q, want %q", i, calls[0][i], arg)
		}
	}
}

func TestTimeSyncIgnoresSmallDrift(t *testing.T) {
	r := &FakeRunner{}
	ts := NewTimeSync(r, "date", frame.ClockHex, time.UTC, 2*time.Minute)

	car := frame.ClockReading{Year: 2026, Month: 3, Day: 1, Hour: 14, Minute: 30, Second: 0}
	system := time.Date(2026, 3, 1, 14, 29, 0, 0, time.UTC)

	applied, err := ts.OnClock(clockPayload(t, car, frame.ClockHex), system)
	if err != nil || applied {
		t.Fatalf("applied=%v err=%v, want no correction", applied, err)
	}
	if len(r.Calls()) != 0 {
		t.Errorf("calls = %v", r.Calls())
	}
}

func TestTimeSyncConvertsCarZoneToUTC(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("zone data unavailable: %v", err)
	}
	r := &FakeRunner{}
	ts := NewTimeSync(r, "date", frame.ClockBCD, berlin, 2*time.Minute)

	// 14:30 CET is 13:30 UTC (winter).
	car := frame.ClockReading{Year: 2026, Month: 1, Day: 15, Hour: 14, Minute: 30, Second: 0}
	system := time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC)

	applied, err := ts.OnClock(clockPayload(t, car, frame.ClockBCD), system)
	if err != nil || !applied {
		t.Fatalf("applied=%v err=%v", applied, err)
	}
	if got := r.Calls()[0][2]; got != "011513302026.00" {
		t.Errorf("stamp = %q, want UTC-converted 011513302026.00", got)
	}
}

func TestTimeSyncMalformedPayload(t *testing.T) {
	r := &FakeRunner{}
	ts := NewTimeSync(r, "date", frame.ClockBCD, time.UTC, 2*time.Minute)

	// 0xFF is not a BCD digit pair.
	ev := frame.ClockData{Payload: [8]byte{0x00, 0xFF, 0x00, 0x00, 0x01, 0x01, 0x20, 0x26}}
	applied, err := ts.OnClock(ev, time.Now())
	if applied || err == nil {
		t.Fatalf("applied=%v err=%v, want parse error", applied, err)
	}
	if len(r.Calls()) != 0 {
		t.Errorf("calls = %v", r.Calls())
	}
}
