package frame

import "encoding/binary"

// IDMap assigns a CAN identifier to each supported record type. The two
// FIS line identifiers are transmit-only and never decoded.
type IDMap struct {
	Light    uint32
	Clock    uint32
	Ignition uint32
	TV       uint32
	Speed    uint32
	RPM      uint32
	Media    uint32
	Nav      uint32
	MMI      uint32
	MFSW     uint32
	Source   uint32
	FISLine1 uint32
	FISLine2 uint32
}

// DefaultIDs returns the identifier assignment of the RNS-E platform.
func DefaultIDs() IDMap {
	return IDMap{
		Light:    0x635,
		Clock:    0x623,
		Ignition: 0x2C3,
		TV:       0x602,
		Speed:    0x5A2,
		RPM:      0x5A0,
		Media:    0x6C1,
		Nav:      0x6C0,
		MMI:      0x461,
		MFSW:     0x5C3,
		Source:   0x661,
		FISLine1: 0x265,
		FISLine2: 0x267,
	}
}

// Decoder maps frames to typed events by identifier. It is a pure
// function of its IDMap and safe for use from a single reader goroutine.
type Decoder struct {
	ids IDMap
}

// NewDecoder builds a decoder over the given identifier assignment.
func NewDecoder(ids IDMap) *Decoder {
	return &Decoder{ids: ids}
}

// Decode extracts the typed event for a frame. The second return value is
// false for unknown identifiers and for frames too short for their
// layout; such frames are skipped, never an error.
func (d *Decoder) Decode(f Frame) (Event, bool) {
	data := f.Payload()
	switch f.ID {
	case d.ids.Light:
		if len(data) < 2 {
			return nil, false
		}
		return LightStatus{Night: data[1] > 0, Level: data[1]}, true
	case d.ids.Clock:
		if len(data) < 8 {
			return nil, false
		}
		var ev ClockData
		copy(ev.Payload[:], data)
		return ev, true
	case d.ids.Ignition:
		if len(data) < 1 {
			return nil, false
		}
		return IgnitionStatus{
			KeyIn:      data[0]&0x01 != 0,
			IgnitionOn: data[0]&0x02 != 0,
		}, true
	case d.ids.TV:
		if len(data) < 1 {
			return nil, false
		}
		var ev TVPresence
		copy(ev.Payload[:], data)
		return ev, true
	case d.ids.Speed:
		if len(data) < 3 {
			return nil, false
		}
		return Speed{Raw: binary.LittleEndian.Uint16(data[1:3])}, true
	case d.ids.RPM:
		if len(data) < 3 {
			return nil, false
		}
		return RPM{Raw: binary.LittleEndian.Uint16(data[1:3])}, true
	case d.ids.Media:
		if len(data) < 2 {
			return nil, false
		}
		return MediaStatus{Status: data[0], Track: data[1]}, true
	case d.ids.Nav:
		if len(data) < 1 {
			return nil, false
		}
		return NavStatus{Status: data[0]}, true
	case d.ids.MMI:
		if len(data) < 5 {
			return nil, false
		}
		return MMIRaw{Action: data[2], Mask0: data[3], Mask1: data[4]}, true
	case d.ids.MFSW:
		if len(data) < 2 {
			return nil, false
		}
		return MFSWRaw{Prefix: data[0], Command: data[1]}, true
	case d.ids.Source:
		if len(data) < 1 {
			return nil, false
		}
		ev := SourceChange{Data: make([]byte, len(data))}
		copy(ev.Data, data)
		return ev, true
	}
	return nil, false
}

// Encode builds the bus frame for an event, the inverse of Decode. Used
// for transmit-direction records and in tests; decoding an encoded event
// reproduces its fields exactly.
func (d *Decoder) Encode(ev Event) (Frame, bool) {
	switch e := ev.(type) {
	case LightStatus:
		return MustNew(d.ids.Light, []byte{0x00, e.Level}), true
	case ClockData:
		return MustNew(d.ids.Clock, e.Payload[:]), true
	case IgnitionStatus:
		var b byte
		if e.KeyIn {
			b |= 0x01
		}
		if e.IgnitionOn {
			b |= 0x02
		}
		return MustNew(d.ids.Ignition, []byte{b}), true
	case TVPresence:
		return MustNew(d.ids.TV, e.Payload[:]), true
	case Speed:
		raw := []byte{0x00, 0x00, 0x00}
		binary.LittleEndian.PutUint16(raw[1:3], e.Raw)
		return MustNew(d.ids.Speed, raw), true
	case RPM:
		raw := []byte{0x00, 0x00, 0x00}
		binary.LittleEndian.PutUint16(raw[1:3], e.Raw)
		return MustNew(d.ids.RPM, raw), true
	case MediaStatus:
		return MustNew(d.ids.Media, []byte{e.Status, e.Track}), true
	case NavStatus:
		return MustNew(d.ids.Nav, []byte{e.Status}), true
	case MMIRaw:
		// Byte layout as sent by the head unit in TV mode.
		return MustNew(d.ids.MMI, []byte{0x37, 0x30, e.Action, e.Mask0, e.Mask1, 0x00}), true
	case MFSWRaw:
		return MustNew(d.ids.MFSW, []byte{e.Prefix, e.Command}), true
	case SourceChange:
		return MustNew(d.ids.Source, e.Data), true
	}
	return Frame{}, false
}

// TVAnnouncePayload is the periodic tuner-presence payload that keeps the
// TV input selectable in the head unit's source menu.
func TVAnnouncePayload() [8]byte {
	return [8]byte{0x09, 0x12, 0x30, 0x00, 0x00, 0x00, 0x00, 0x00}
}
