// Package keys provides virtual keyboard injection with hardware
// abstraction. The real implementation creates a uinput device; the fake
// records presses for tests.
package keys

import (
	"fmt"

	"github.com/bendahl/uinput"
)

// Emitter injects key presses into the OS input subsystem.
type Emitter interface {
	// Press emits a key-down immediately followed by its key-up. The
	// pair is issued back-to-back so termination can never leave a key
	// held down.
	Press(action string) error

	// Close releases the virtual device.
	Close() error
}

// codes maps binding action names to Linux input key codes. Only names
// listed here are valid in the binding tables; config loading validates
// against this set so a typo fails at startup, not on the first press.
var codes = map[string]int{
	"up":        uinput.KeyUp,
	"down":      uinput.KeyDown,
	"left":      uinput.KeyLeft,
	"right":     uinput.KeyRight,
	"enter":     uinput.KeyEnter,
	"esc":       uinput.KeyEsc,
	"tab":       uinput.KeyTab,
	"space":     uinput.KeySpace,
	"backspace": uinput.KeyBackspace,
	"home":      uinput.KeyHome,
	"end":       uinput.KeyEnd,
	"pageup":    uinput.KeyPageup,
	"pagedown":  uinput.KeyPagedown,
	"playpause": uinput.KeyPlaypause,
	"nextsong":  uinput.KeyNextsong,
	"prevsong":  uinput.KeyPrevioussong,
	"stop":      uinput.KeyStopcd,
	"mute":      uinput.KeyMute,
	"volumeup":  uinput.KeyVolumeup,
	"volumedown": uinput.KeyVolumedown,

	"1": uinput.Key1, "2": uinput.Key2, "3": uinput.Key3, "4": uinput.Key4,
	"5": uinput.Key5, "6": uinput.Key6, "7": uinput.Key7, "8": uinput.Key8,
	"9": uinput.Key9, "0": uinput.Key0,

	"a": uinput.KeyA, "b": uinput.KeyB, "c": uinput.KeyC, "d": uinput.KeyD,
	"e": uinput.KeyE, "f": uinput.KeyF, "g": uinput.KeyG, "h": uinput.KeyH,
	"i": uinput.KeyI, "j": uinput.KeyJ, "k": uinput.KeyK, "l": uinput.KeyL,
	"m": uinput.KeyM, "n": uinput.KeyN, "o": uinput.KeyO, "p": uinput.KeyP,
	"q": uinput.KeyQ, "r": uinput.KeyR, "s": uinput.KeyS, "t": uinput.KeyT,
	"u": uinput.KeyU, "v": uinput.KeyV, "w": uinput.KeyW, "x": uinput.KeyX,
	"y": uinput.KeyY, "z": uinput.KeyZ,
}

// Code returns the input key code for an action name.
func Code(action string) (int, bool) {
	code, ok := codes[action]
	return code, ok
}

// Validate reports an error for an action name with no key code.
func Validate(action string) error {
	if _, ok := codes[action]; !ok {
		return fmt.Errorf("unknown key action %q", action)
	}
	return nil
}
