package keys

import "sync"

// FakeEmitter records pressed actions for test assertions.
type FakeEmitter struct {
	mu sync.Mutex

	// Pressed contains the action names in press order.
	Pressed []string

	// PressError, if set, is returned by Press.
	PressError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeEmitter creates a FakeEmitter for testing.
func NewFakeEmitter() *FakeEmitter {
	return &FakeEmitter{}
}

// Press records the action.
func (f *FakeEmitter) Press(action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PressError != nil {
		return f.PressError
	}
	f.Pressed = append(f.Pressed, action)
	return nil
}

// Actions returns a copy of the recorded presses.
func (f *FakeEmitter) Actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.Pressed...)
}

// Close marks the emitter as closed.
func (f *FakeEmitter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
