package frame

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the wire form of a decoded event. Exactly one variant
// pointer is set, matching Kind. The raw payload is carried alongside as
// hex so raw-oriented consumers and log scrapers can see what was on the
// bus.
type Envelope struct {
	Timestamp time.Time `json:"ts"`
	Kind      Kind      `json:"kind"`
	ID        uint32    `json:"id"`
	DLC       uint8     `json:"dlc"`
	Data      string    `json:"data_hex"`

	Light    *LightStatus    `json:"light,omitempty"`
	Clock    *ClockData      `json:"clock,omitempty"`
	Ignition *IgnitionStatus `json:"ignition,omitempty"`
	TV       *TVPresence     `json:"tv,omitempty"`
	Speed    *Speed          `json:"speed,omitempty"`
	RPM      *RPM            `json:"rpm,omitempty"`
	Media    *MediaStatus    `json:"media,omitempty"`
	Nav      *NavStatus      `json:"nav,omitempty"`
	MMI      *MMIRaw         `json:"mmi,omitempty"`
	MFSW     *MFSWRaw        `json:"mfsw,omitempty"`
	Source   *SourceChange   `json:"source,omitempty"`
}

// NewEnvelope wraps a decoded event and its source frame for publishing.
func NewEnvelope(ts time.Time, f Frame, ev Event) Envelope {
	env := Envelope{
		Timestamp: ts,
		Kind:      ev.Kind(),
		ID:        f.ID,
		DLC:       f.Length,
		Data:      f.HexData(),
	}
	switch e := ev.(type) {
	case LightStatus:
		env.Light = &e
	case ClockData:
		env.Clock = &e
	case IgnitionStatus:
		env.Ignition = &e
	case TVPresence:
		env.TV = &e
	case Speed:
		env.Speed = &e
	case RPM:
		env.RPM = &e
	case MediaStatus:
		env.Media = &e
	case NavStatus:
		env.Nav = &e
	case MMIRaw:
		env.MMI = &e
	case MFSWRaw:
		env.MFSW = &e
	case SourceChange:
		env.Source = &e
	}
	return env
}

// Event returns the variant named by Kind, or an error if the envelope
// is inconsistent.
func (e Envelope) Event() (Event, error) {
	switch e.Kind {
	case KindLight:
		if e.Light != nil {
			return *e.Light, nil
		}
	case KindClock:
		if e.Clock != nil {
			return *e.Clock, nil
		}
	case KindIgnition:
		if e.Ignition != nil {
			return *e.Ignition, nil
		}
	case KindTV:
		if e.TV != nil {
			return *e.TV, nil
		}
	case KindSpeed:
		if e.Speed != nil {
			return *e.Speed, nil
		}
	case KindRPM:
		if e.RPM != nil {
			return *e.RPM, nil
		}
	case KindMedia:
		if e.Media != nil {
			return *e.Media, nil
		}
	case KindNav:
		if e.Nav != nil {
			return *e.Nav, nil
		}
	case KindMMI:
		if e.MMI != nil {
			return *e.MMI, nil
		}
	case KindMFSW:
		if e.MFSW != nil {
			return *e.MFSW, nil
		}
	case KindSource:
		if e.Source != nil {
			return *e.Source, nil
		}
	}
	return nil, fmt.Errorf("envelope kind %q missing its payload", e.Kind)
}

// Marshal serializes the envelope for the event bus.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEnvelope parses a wire payload back into an Envelope.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, err
	}
	return env, nil
}

// TXMessage is the wire form of a transmit request on the outbound topic.
type TXMessage struct {
	ID   uint32 `json:"id"`
	Data string `json:"data_hex"`
}

// MarshalTX serializes a frame for the outbound topic.
func MarshalTX(f Frame) ([]byte, error) {
	return json.Marshal(TXMessage{ID: f.ID, Data: f.HexData()})
}

// UnmarshalTX parses an outbound wire payload back into a frame.
func UnmarshalTX(data []byte) (Frame, error) {
	var msg TXMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Frame{}, err
	}
	payload, err := hex.DecodeString(msg.Data)
	if err != nil {
		return Frame{}, fmt.Errorf("tx payload: %w", err)
	}
	return New(msg.ID, payload)
}
