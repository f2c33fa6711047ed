package feature

import (
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
)

// dateStampLayout is the BSD date -u argument form MMDDhhmmYYYY.SS.
const dateStampLayout = "010215042006.05"

// TimeSync corrects the system clock from the car's broadcast time. A
// correction runs only when the drift exceeds the threshold, so the
// clock is not nudged on every broadcast.
type TimeSync struct {
	runner    Runner
	dateCmd   string
	format    frame.ClockFormat
	location  *time.Location
	threshold time.Duration
}

// NewTimeSync creates the controller. location is the zone the car
// broadcasts in; corrections are applied in UTC.
func NewTimeSync(runner Runner, dateCmd string, format frame.ClockFormat, location *time.Location, threshold time.Duration) *TimeSync {
	return &TimeSync{
		runner:    runner,
		dateCmd:   dateCmd,
		format:    format,
		location:  location,
		threshold: threshold,
	}
}

// OnClock processes one wall-clock broadcast against the system time
// now. Returns whether a correction was applied. A malformed payload is
// reported as an error but requires no recovery; the next broadcast is
// independent.
func (t *TimeSync) OnClock(ev frame.ClockData, now time.Time) (bool, error) {
	reading, err := frame.ParseClock(ev.Payload, t.format)
	if err != nil {
		return false, err
	}
	car := reading.Time(t.location).UTC()
	drift := car.Sub(now.UTC())
	if drift < 0 {
		drift = -drift
	}
	if drift <= t.threshold {
		return false, nil
	}
	if err := t.runner.Run(t.dateCmd, "-u", car.Format(dateStampLayout)); err != nil {
		return false, err
	}
	return true, nil
}
