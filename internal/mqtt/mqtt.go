// Package mqtt wraps the event-bus transport: one publisher, any number
// of subscribers, at-most-once delivery (QoS 0, nothing retained). A
// subscriber that attaches late misses earlier messages; consumers are
// written to re-derive state from the live stream instead of replay.
package mqtt

import (
	"github.com/rnse-control/canbridge/internal/frame"
)

// DefaultBroker is the broker address used when the config omits one.
const DefaultBroker = "tcp://127.0.0.1:1883"

// DefaultPrefix is the topic namespace used when the config omits one.
const DefaultPrefix = "canbridge"

// EventTopic returns the per-kind topic a decoded event is published on.
func EventTopic(prefix string, kind frame.Kind) string {
	return prefix + "/events/" + string(kind)
}

// TXTopic returns the outbound topic the bridge consumes frames from.
func TXTopic(prefix string) string {
	return prefix + "/tx"
}

// EventSink publishes decoded events toward subscribers.
type EventSink interface {
	// PublishEvent sends one decoded event. At-most-once; an error means
	// the message is gone, not that it will be retried.
	PublishEvent(env frame.Envelope) error
}

// FrameSink queues frames for transmission on the CAN bus.
type FrameSink interface {
	PublishFrame(f frame.Frame) error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}
