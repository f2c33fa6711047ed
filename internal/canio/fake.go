package canio

import (
	"sync"

	"github.com/rnse-control/canbridge/internal/frame"
)

// FakeBus is an in-memory Bus for tests. Injected frames are delivered
// synchronously to all subscribed handlers; published frames are
// recorded for assertions.
type FakeBus struct {
	mu        sync.Mutex
	handlers  []func(frame.Frame)
	Published []frame.Frame

	// PublishError, if set, is returned by Publish.
	PublishError error

	done chan struct{}
	once sync.Once
}

// NewFakeBus creates a FakeBus.
func NewFakeBus() *FakeBus {
	return &FakeBus{done: make(chan struct{})}
}

// Subscribe registers a handler.
func (b *FakeBus) Subscribe(handler func(frame.Frame)) {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
}

// Inject delivers a frame to every handler, as if read from the bus.
func (b *FakeBus) Inject(f frame.Frame) {
	b.mu.Lock()
	handlers := append([]func(frame.Frame){}, b.handlers...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(f)
	}
}

// Publish records the frame.
func (b *FakeBus) Publish(f frame.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PublishError != nil {
		return b.PublishError
	}
	b.Published = append(b.Published, f)
	return nil
}

// PublishedFrames returns a copy of the recorded frames.
func (b *FakeBus) PublishedFrames() []frame.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]frame.Frame{}, b.Published...)
}

// ConnectAndPublish blocks until Disconnect is called.
func (b *FakeBus) ConnectAndPublish() error {
	<-b.done
	return nil
}

// Disconnect unblocks ConnectAndPublish.
func (b *FakeBus) Disconnect() error {
	b.once.Do(func() { close(b.done) })
	return nil
}
