// Package canio provides CAN bus access with hardware abstraction.
// The real implementation uses the Linux SocketCAN interface through
// brutella/can. The fake implementation allows testing without a bus.
package canio

import "github.com/rnse-control/canbridge/internal/frame"

// Bus is a connection to a CAN interface. One process holds the only
// read handle; everything else sees the traffic via the event bus.
type Bus interface {
	// Subscribe registers a handler invoked for every received frame.
	// Handlers run on the single bus reader goroutine, in arrival order.
	Subscribe(handler func(frame.Frame))

	// Publish writes a frame to the bus.
	Publish(f frame.Frame) error

	// ConnectAndPublish starts the receive loop. It blocks until
	// Disconnect is called or the interface fails.
	ConnectAndPublish() error

	// Disconnect closes the connection and unblocks ConnectAndPublish.
	Disconnect() error
}
