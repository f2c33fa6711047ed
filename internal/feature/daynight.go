package feature

import (
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
)

// DayNight switches the UI theme from the light sensor. A switch happens
// only when the reading disagrees with the last-applied theme and the
// cooldown since the previous switch has elapsed, so a bouncing sensor
// cannot flicker the theme.
type DayNight struct {
	runner   Runner
	script   string
	cooldown time.Duration

	applied    string
	lastSwitch time.Time
}

// NewDayNight creates the controller. No theme counts as applied until
// the first sensor reading arrives.
func NewDayNight(runner Runner, script string, cooldown time.Duration) *DayNight {
	return &DayNight{runner: runner, script: script, cooldown: cooldown}
}

// Applied returns the currently applied theme, "" before the first switch.
func (d *DayNight) Applied() string { return d.applied }

// OnLight processes one light-sensor reading. Returns whether a switch
// was applied.
func (d *DayNight) OnLight(ev frame.LightStatus, now time.Time) (bool, error) {
	mode := "day"
	if ev.Night {
		mode = "night"
	}
	if mode == d.applied {
		return false, nil
	}
	if !d.lastSwitch.IsZero() && now.Sub(d.lastSwitch) < d.cooldown {
		return false, nil
	}
	if err := d.runner.Run(d.script, "app", mode); err != nil {
		return false, err
	}
	d.applied = mode
	d.lastSwitch = now
	return true, nil
}
