// Package frame defines the CAN frame model for the infotainment bus,
// the identifier-driven decoder that turns raw frames into typed events,
// and the wire envelope used to carry decoded events between processes.
package frame

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Frame is one message on the infotainment CAN bus: an 11-bit identifier
// plus up to 8 data bytes. Frames are immutable once read off the bus.
type Frame struct {
	ID     uint32
	Length uint8
	Data   [8]byte
	Time   time.Time
}

const maxStdID = 0x7FF

var (
	ErrInvalidID  = errors.New("frame: identifier out of 11-bit range")
	ErrInvalidLen = errors.New("frame: data length over 8")
)

// New builds a Frame from an identifier and a payload slice.
func New(id uint32, data []byte) (Frame, error) {
	var f Frame
	if id > maxStdID {
		return f, ErrInvalidID
	}
	if len(data) > 8 {
		return f, ErrInvalidLen
	}
	f.ID = id
	f.Length = uint8(len(data))
	copy(f.Data[:], data)
	return f, nil
}

// MustNew is New for test fixtures; it panics on invalid input.
func MustNew(id uint32, data []byte) Frame {
	f, err := New(id, data)
	if err != nil {
		panic(err)
	}
	return f
}

// Payload returns the valid portion of the data bytes.
func (f Frame) Payload() []byte {
	n := f.Length
	if n > 8 {
		n = 8
	}
	return f.Data[:n]
}

// HexData returns the payload as a lowercase hex string, the form used in
// the wire envelope and in log lines.
func (f Frame) HexData() string {
	return hex.EncodeToString(f.Payload())
}

func (f Frame) String() string {
	return fmt.Sprintf("%03X#%s", f.ID, f.HexData())
}
