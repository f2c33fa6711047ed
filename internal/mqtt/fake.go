package mqtt

import (
	"sync"

	"github.com/rnse-control/canbridge/internal/frame"
)

// FakeSink records published events and frames for test assertions.
type FakeSink struct {
	mu sync.Mutex

	// Envelopes contains all events that were published.
	Envelopes []frame.Envelope

	// Frames contains all tx frames that were published.
	Frames []frame.Frame

	// PublishError, if set, is returned by both publish methods.
	PublishError error

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSink creates a FakeSink for testing.
func NewFakeSink() *FakeSink {
	return &FakeSink{Connected: true}
}

// PublishEvent records the envelope.
func (f *FakeSink) PublishEvent(env frame.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Envelopes = append(f.Envelopes, env)
	return nil
}

// PublishFrame records the frame.
func (f *FakeSink) PublishFrame(fr frame.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Frames = append(f.Frames, fr)
	return nil
}

// Events returns a copy of the recorded envelopes.
func (f *FakeSink) Events() []frame.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]frame.Envelope{}, f.Envelopes...)
}

// TXFrames returns a copy of the recorded frames.
func (f *FakeSink) TXFrames() []frame.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]frame.Frame{}, f.Frames...)
}

// IsConnected reports whether the fake is "connected".
func (f *FakeSink) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Close marks the sink as closed.
func (f *FakeSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
