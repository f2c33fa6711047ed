package classify

import (
	"fmt"
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
)

// Control discriminator names for the steering-wheel buttons. MMI
// controls are named by their bitmask pair ("64,0"); the wheel commands
// get fixed names since they carry a single command byte.
const (
	MFSWUp   = "mfsw.up"
	MFSWDown = "mfsw.down"
	MFSWMode = "mfsw.mode"
)

// MMIControl returns the discriminator name for an MMI bitmask pair.
func MMIControl(mask0, mask1 byte) string {
	return fmt.Sprintf("%d,%d", mask0, mask1)
}

// HandleEvent feeds one decoded bus event into the state machines and
// returns any classified presses. Events other than MMI/MFSW frames are
// ignored.
func (c *Classifier) HandleEvent(ev frame.Event, now time.Time) []Event {
	switch e := ev.(type) {
	case frame.MMIRaw:
		control := MMIControl(e.Mask0, e.Mask1)
		switch e.Action {
		case frame.MMIPress:
			return c.Active(control, now)
		case frame.MMIRelease:
			return c.Release(control, now)
		}
	case frame.MFSWRaw:
		switch e.Command {
		case frame.MFSWScrollUp:
			return c.Active(MFSWUp, now)
		case frame.MFSWScrollDown:
			return c.Active(MFSWDown, now)
		case frame.MFSWModePress:
			return c.Active(MFSWMode, now)
		case frame.MFSWRelease:
			// The release frame names no control; mode is the only
			// holdable wheel control.
			return c.Release(MFSWMode, now)
		}
	}
	return nil
}
