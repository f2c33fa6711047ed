//go:build linux

package keys

import (
	"fmt"

	"github.com/bendahl/uinput"
)

// DefaultDevice is the uinput control node.
const DefaultDevice = "/dev/uinput"

// UinputEmitter injects keys through a virtual uinput keyboard device.
type UinputEmitter struct {
	kb uinput.Keyboard
}

// NewUinputEmitter creates the virtual keyboard. Failure here means the
// uinput module is missing or the process lacks device permissions; the
// caller must treat it as fatal since no injection is possible.
func NewUinputEmitter(device, name string) (*UinputEmitter, error) {
	if device == "" {
		device = DefaultDevice
	}
	kb, err := uinput.CreateKeyboard(device, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("create virtual keyboard on %s: %w", device, err)
	}
	return &UinputEmitter{kb: kb}, nil
}

// Press emits the key-down/key-up pair for the action.
func (e *UinputEmitter) Press(action string) error {
	code, ok := Code(action)
	if !ok {
		return fmt.Errorf("unknown key action %q", action)
	}
	if err := e.kb.KeyDown(code); err != nil {
		return fmt.Errorf("key down %q: %w", action, err)
	}
	if err := e.kb.KeyUp(code); err != nil {
		return fmt.Errorf("key up %q: %w", action, err)
	}
	return nil
}

// Close destroys the virtual device.
func (e *UinputEmitter) Close() error {
	return e.kb.Close()
}
