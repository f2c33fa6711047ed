//go:build linux

package canio

import (
	"fmt"
	"net"
	"time"

	"github.com/brutella/can"

	"github.com/rnse-control/canbridge/internal/frame"
)

// RealBus reads and writes a SocketCAN interface.
type RealBus struct {
	bus *can.Bus
}

// Open connects to the named SocketCAN interface (e.g. "can0").
func Open(ifname string) (*RealBus, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("find interface %s: %w", ifname, err)
	}

	conn, err := can.NewReadWriteCloserForInterface(iface)
	if err != nil {
		return nil, fmt.Errorf("open can interface %s: %w", ifname, err)
	}

	return &RealBus{bus: can.NewBus(conn)}, nil
}

// Subscribe registers a frame handler on the underlying bus.
func (b *RealBus) Subscribe(handler func(frame.Frame)) {
	b.bus.SubscribeFunc(func(cf can.Frame) {
		f := frame.Frame{
			ID:     cf.ID,
			Length: cf.Length,
			Time:   time.Now(),
		}
		if f.Length > 8 {
			f.Length = 8
		}
		copy(f.Data[:], cf.Data[:])
		handler(f)
	})
}

// Publish writes a frame to the bus.
func (b *RealBus) Publish(f frame.Frame) error {
	cf := can.Frame{
		ID:     f.ID,
		Length: f.Length,
	}
	copy(cf.Data[:], f.Data[:])
	if err := b.bus.Publish(cf); err != nil {
		return fmt.Errorf("publish %v: %w", f, err)
	}
	return nil
}

// ConnectAndPublish runs the receive loop until Disconnect.
func (b *RealBus) ConnectAndPublish() error {
	return b.bus.ConnectAndPublish()
}

// Disconnect closes the bus connection.
func (b *RealBus) Disconnect() error {
	return b.bus.Disconnect()
}
