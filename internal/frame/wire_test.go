package frame

import (
	"reflect"
	"testing"
	"time"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	d := NewDecoder(DefaultIDs())
	ts := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	events := []Event{
		LightStatus{Night: true, Level: 0x10},
		IgnitionStatus{KeyIn: true, IgnitionOn: true},
		MMIRaw{Action: MMIPress, Mask0: 0x80, Mask1: 0x00},
		MFSWRaw{Prefix: 0x39, Command: MFSWScrollDown},
		SourceChange{Data: []byte{0x81, 0x01, 0x12, 0x37, 0x00, 0x00, 0x00, 0x00}},
		ClockData{Payload: [8]byte{0x00, 0x11, 0x22, 0x33, 0x04, 0x05, 0x20, 0x26}},
	}

	for _, ev := range events {
		f, _ := d.Encode(ev)
		env := NewEnvelope(ts, f, ev)

		data, err := env.Marshal()
		if err != nil {
			t.Fatalf("Marshal %T: %v", ev, err)
		}
		back, err := UnmarshalEnvelope(data)
		if err != nil {
			t.Fatalf("Unmarshal %T: %v", ev, err)
		}
		if back.Kind != ev.Kind() || back.ID != f.ID || back.Data != f.HexData() {
			t.Errorf("%T: envelope header mismatch: %+v", ev, back)
		}
		got, err := back.Event()
		if err != nil {
			t.Fatalf("Event() %T: %v", ev, err)
		}
		if !reflect.DeepEqual(got, ev) {
			t.Errorf("%T: got %#v, want %#v", ev, got, ev)
		}
	}
}

func TestEnvelopeMissingPayload(t *testing.T) {
	env := Envelope{Kind: KindLight}
	if _, err := env.Event(); err == nil {
		t.Error("expected error for envelope without payload")
	}
}

func TestTXRoundTrip(t *testing.T) {
	f := MustNew(0x265, []byte{0x43, 0x41, 0x4E, 0x42, 0x52, 0x49, 0x44, 0x47})
	data, err := MarshalTX(f)
	if err != nil {
		t.Fatalf("MarshalTX: %v", err)
	}
	got, err := UnmarshalTX(data)
	if err != nil {
		t.Fatalf("UnmarshalTX: %v", err)
	}
	if got.ID != f.ID || got.Length != f.Length || got.Data != f.Data {
		t.Errorf("got %v, want %v", got, f)
	}
}

func TestUnmarshalTXRejectsBadHex(t *testing.T) {
	if _, err := UnmarshalTX([]byte(`{"id":613,"data_hex":"zz"}`)); err == nil {
		t.Error("expected error for invalid hex payload")
	}
}
