package main

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/rnse-control/canbridge/internal/classify"
	"github.com/rnse-control/canbridge/internal/feature"
	"github.com/rnse-control/canbridge/internal/frame"
	"github.com/rnse-control/canbridge/internal/keys"
)

func testClassifier() *classify.Classifier {
	return classify.New(classify.Config{
		LongPress:     400 * time.Millisecond,
		ExtendedPress: 3 * time.Second,
		Cooldown:      300 * time.Millisecond,
		Scroll: map[string]classify.Direction{
			classify.MFSWUp: classify.DirUp,
		},
		Bindings: classify.Bindings{
			Short: map[string]string{
				"0,16":          "enter",
				classify.MFSWUp: "up",
			},
		},
	})
}

func envelope(t *testing.T, ev frame.Event, ts time.Time) frame.Envelope {
	t.Helper()
	decoder := frame.NewDecoder(frame.DefaultIDs())
	f, ok := decoder.Encode(ev)
	if !ok {
		t.Fatalf("Encode(%T) failed", ev)
	}
	return frame.NewEnvelope(ts, f, ev)
}

func TestRunLoopInjectsClassifiedPress(t *testing.T) {
	emitter := keys.NewFakeEmitter()
	events := make(chan frame.Envelope, 4)
	sig := make(chan os.Signal, 1)
	base := time.Now()

	events <- envelope(t, frame.MMIRaw{Action: frame.MMIPress, Mask0: 0, Mask1: 16}, base)
	events <- envelope(t, frame.MMIRaw{Action: frame.MMIRelease, Mask0: 0, Mask1: 16}, base)

	go func() {
		time.Sleep(50 * time.Millisecond)
		sig <- syscall.SIGTERM
	}()
	if err := runLoop(testClassifier(), emitter, nil, events, nil, sig, time.Now); err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	got := emitter.Actions()
	if len(got) != 1 || got[0] != "enter" {
		t.Errorf("Actions = %v, want [enter]", got)
	}
}

func TestRunLoopScrollEmitsPerEvent(t *testing.T) {
	emitter := keys.NewFakeEmitter()
	events := make(chan frame.Envelope, 4)
	sig := make(chan os.Signal, 1)
	base := time.Now()

	for i := 0; i < 3; i++ {
		events <- envelope(t, frame.MFSWRaw{Prefix: 0x39, Command: frame.MFSWScrollUp}, base)
	}
	go func() {
		time.Sleep(50 * time.Millisecond)
		sig <- syscall.SIGTERM
	}()
	if err := runLoop(testClassifier(), emitter, nil, events, nil, sig, time.Now); err != nil {
		t.Fatalf("runLoop: %v", err)
	}
	if got := emitter.Actions(); len(got) != 3 {
		t.Errorf("Actions = %v, want 3 scroll presses", got)
	}
}

func TestRunLoopSourcePlayPause(t *testing.T) {
	emitter := keys.NewFakeEmitter()
	source := feature.NewSourcePlay(emitter, [][]byte{{0x37}}, "playpause", "playpause")
	events := make(chan frame.Envelope, 4)
	sig := make(chan os.Signal, 1)
	base := time.Now()

	events <- envelope(t, frame.SourceChange{Data: []byte{0x81, 0x01, 0x12, 0x35, 0, 0, 0, 0}}, base)
	events <- envelope(t, frame.SourceChange{Data: []byte{0x81, 0x01, 0x12, 0x37, 0, 0, 0, 0}}, base)
	events <- envelope(t, frame.SourceChange{Data: []byte{0x81, 0x01, 0x12, 0x37, 0, 0, 0, 0}}, base)

	go func() {
		time.Sleep(50 * time.Millisecond)
		sig <- syscall.SIGTERM
	}()
	if err := runLoop(testClassifier(), emitter, source, events, nil, sig, time.Now); err != nil {
		t.Fatalf("runLoop: %v", err)
	}
	if got := emitter.Actions(); len(got) != 1 || got[0] != "playpause" {
		t.Errorf("Actions = %v, want one playpause", got)
	}
}

func TestRunLoopInjectionFailureIsFatal(t *testing.T) {
	emitter := keys.NewFakeEmitter()
	emitter.PressError = errors.New("device gone")
	events := make(chan frame.Envelope, 2)
	base := time.Now()

	events <- envelope(t, frame.MFSWRaw{Prefix: 0x39, Command: frame.MFSWScrollUp}, base)

	done := make(chan error, 1)
	go func() {
		done <- runLoop(testClassifier(), emitter, nil, events, nil, nil, time.Now)
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("injection failure not fatal")
		}
	case <-time.After(time.Second):
		t.Fatal("runLoop did not exit on injection failure")
	}
}

func TestRunLoopTickFinalizesPress(t *testing.T) {
	emitter := keys.NewFakeEmitter()
	events := make(chan frame.Envelope, 2)
	tick := make(chan time.Time, 1)
	sig := make(chan os.Signal, 1)
	base := time.Now()

	// Press frame with no release; the tick past the cooldown finishes it.
	events <- envelope(t, frame.MMIRaw{Action: frame.MMIPress, Mask0: 0, Mask1: 16}, base)

	go func() {
		time.Sleep(20 * time.Millisecond)
		tick <- time.Now().Add(time.Second)
		time.Sleep(20 * time.Millisecond)
		sig <- syscall.SIGTERM
	}()
	if err := runLoop(testClassifier(), emitter, nil, events, tick, sig, time.Now); err != nil {
		t.Fatalf("runLoop: %v", err)
	}
	if got := emitter.Actions(); len(got) != 1 || got[0] != "enter" {
		t.Errorf("Actions = %v, want [enter]", got)
	}
}
