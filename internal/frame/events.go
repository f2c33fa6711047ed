package frame

// Kind names one decoded event variant. It doubles as the per-variant
// topic suffix on the event bus.
type Kind string

const (
	KindLight    Kind = "light"
	KindClock    Kind = "clock"
	KindIgnition Kind = "ignition"
	KindTV       Kind = "tv"
	KindSpeed    Kind = "speed"
	KindRPM      Kind = "rpm"
	KindMedia    Kind = "media"
	KindNav      Kind = "nav"
	KindMMI      Kind = "mmi"
	KindMFSW     Kind = "mfsw"
	KindSource   Kind = "source"
)

// Event is the closed set of decoded records. Exactly one variant exists
// per supported identifier; consumers switch exhaustively on the concrete
// type.
type Event interface {
	Kind() Kind
}

// LightStatus reports the car's light-sensor state. Level is the raw
// sensor byte; Night is true for any non-zero level.
type LightStatus struct {
	Night bool `json:"night"`
	Level byte `json:"level"`
}

func (LightStatus) Kind() Kind { return KindLight }

// ClockData carries the raw 8-byte broadcast wall-clock payload. The
// field packing varies between head-unit generations, so interpretation
// is deferred to ParseClock with the configured format.
type ClockData struct {
	Payload [8]byte `json:"payload"`
}

func (ClockData) Kind() Kind { return KindClock }

// IgnitionStatus reports the key/ignition bits of the power status frame.
// Bit 0 is the key-in-lock sensor, bit 1 is ignition (terminal 15).
type IgnitionStatus struct {
	KeyIn      bool `json:"key_in"`
	IgnitionOn bool `json:"ignition_on"`
}

func (IgnitionStatus) Kind() Kind { return KindIgnition }

// TVPresence is a TV-tuner presence announcement.
type TVPresence struct {
	Payload [8]byte `json:"payload"`
}

func (TVPresence) Kind() Kind { return KindTV }

// Speed is the vehicle speed sensor reading. Raw is 0.01 km/h per bit.
type Speed struct {
	Raw uint16 `json:"raw"`
}

func (Speed) Kind() Kind { return KindSpeed }

// KMH returns the decoded speed in km/h.
func (s Speed) KMH() float64 { return float64(s.Raw) * 0.01 }

// RPM is the engine speed reading. Raw is 0.25 rpm per bit.
type RPM struct {
	Raw uint16 `json:"raw"`
}

func (RPM) Kind() Kind { return KindRPM }

// RPM returns the decoded engine speed in revolutions per minute.
func (r RPM) RPM() float64 { return float64(r.Raw) * 0.25 }

// MediaStatus reports the head unit's media playback status byte and the
// current track number.
type MediaStatus struct {
	Status byte `json:"status"`
	Track  byte `json:"track"`
}

func (MediaStatus) Kind() Kind { return KindMedia }

// NavStatus reports the navigation unit's status byte.
type NavStatus struct {
	Status byte `json:"status"`
}

func (NavStatus) Kind() Kind { return KindNav }

// MMI button frame actions (data byte 2).
const (
	MMIPress   byte = 0x01
	MMIRelease byte = 0x04
)

// MMIRaw is one raw MMI control frame: the press/release action byte and
// the two bitmask bytes that discriminate which control is active.
type MMIRaw struct {
	Action byte `json:"action"`
	Mask0  byte `json:"mask0"`
	Mask1  byte `json:"mask1"`
}

func (MMIRaw) Kind() Kind { return KindMMI }

// MFSW command bytes (data byte 1). Release is the all-clear command the
// wheel sends when no button is held.
const (
	MFSWScrollUp   byte = 0x04
	MFSWScrollDown byte = 0x05
	MFSWModePress  byte = 0x08
	MFSWRelease    byte = 0x00
)

// MFSWRaw is one raw steering-wheel control frame.
type MFSWRaw struct {
	Prefix  byte `json:"prefix"`
	Command byte `json:"command"`
}

func (MFSWRaw) Kind() Kind { return KindMFSW }

// SourceChange reports the head unit's audio/video source status payload.
type SourceChange struct {
	Data []byte `json:"data"`
}

func (SourceChange) Kind() Kind { return KindSource }
