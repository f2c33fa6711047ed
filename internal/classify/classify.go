// Package classify turns streams of raw "control active" frames into
// discrete press events. The head unit repeats a frame for as long as a
// control is held and reports release separately, so press duration is
// reconstructed from the repeat stream; a cooldown window coalesces
// bounced re-activations into one logical press.
//
// The package has no hardware or transport dependencies. Time is always
// injectable via time.Time parameters.
package classify

import "time"

// PressKind classifies one physical press.
type PressKind string

const (
	Short      PressKind = "short"
	Long       PressKind = "long"
	Extended   PressKind = "extended"
	ScrollUp   PressKind = "scroll_up"
	ScrollDown PressKind = "scroll_down"
)

// Direction is the scroll direction assigned to a debounce-exempt control.
type Direction string

const (
	DirUp   Direction = "up"
	DirDown Direction = "down"
)

// Event is one classified press. Action is the bound key action, empty
// when the control has no binding for this press kind; the event is
// still emitted so consumers can observe unbound presses.
type Event struct {
	Control string
	Kind    PressKind
	Action  string
}

// Bindings maps control discriminators to key actions per press kind.
// Scroll events resolve through the Short table. A missing or empty
// entry means "no action" and suppresses injection, not emission.
type Bindings struct {
	Short    map[string]string
	Long     map[string]string
	Extended map[string]string
}

// Resolve returns the bound action for a control and press kind.
func (b Bindings) Resolve(control string, kind PressKind) string {
	switch kind {
	case Long:
		return b.Long[control]
	case Extended:
		return b.Extended[control]
	default:
		return b.Short[control]
	}
}

// Config carries the classifier thresholds. Thresholds are durations;
// configured message counts are converted once at the config boundary
// (see DurationForCount). Controls listed in Scroll bypass debounce and
// cooldown entirely.
type Config struct {
	LongPress     time.Duration
	ExtendedPress time.Duration
	Cooldown      time.Duration
	Scroll        map[string]Direction
	Bindings      Bindings
}

// DurationForCount converts a message-count threshold into the
// equivalent hold duration: a press that produces n repeat frames spans
// n-1 repeat periods.
func DurationForCount(n int, period time.Duration) time.Duration {
	if n <= 1 {
		return 0
	}
	return time.Duration(n-1) * period
}

type phase int

const (
	phaseIdle phase = iota
	phaseActive
	phaseSuppressed
)

// pressState tracks one control between activation and release.
type pressState struct {
	phase       phase
	activeSince time.Time
	lastSeen    time.Time
	lastEmit    time.Time
	repeats     int
}

// Classifier runs one press state machine per control discriminator.
// Not safe for concurrent use; callers process one event at a time.
type Classifier struct {
	cfg    Config
	states map[string]*pressState
}

// New creates a Classifier.
func New(cfg Config) *Classifier {
	return &Classifier{
		cfg:    cfg,
		states: make(map[string]*pressState),
	}
}

func (c *Classifier) state(control string) *pressState {
	st, ok := c.states[control]
	if !ok {
		st = &pressState{}
		c.states[control] = st
	}
	return st
}

// Active processes one "control active" frame. Scroll-exempt controls
// emit immediately on every frame; for the rest the press is tracked
// until release or cooldown expiry, except the extended threshold which
// fires at the moment it is crossed.
func (c *Classifier) Active(control string, now time.Time) []Event {
	if dir, ok := c.cfg.Scroll[control]; ok {
		kind := ScrollUp
		if dir == DirDown {
			kind = ScrollDown
		}
		return []Event{{
			Control: control,
			Kind:    kind,
			Action:  c.cfg.Bindings.Resolve(control, kind),
		}}
	}

	st := c.state(control)
	switch st.phase {
	case phaseIdle:
		st.activeSince = now
		st.lastSeen = now
		st.repeats = 1
		if !st.lastEmit.IsZero() && now.Sub(st.lastEmit) < c.cfg.Cooldown {
			// Bounce after an emission: same logical press, no new event.
			st.phase = phaseSuppressed
		} else {
			st.phase = phaseActive
		}
	case phaseActive:
		st.repeats++
		st.lastSeen = now
		if c.cfg.ExtendedPress > 0 && now.Sub(st.activeSince) >= c.cfg.ExtendedPress {
			// Extended actions are one-shot: fire at the crossing and
			// ignore the rest of this hold.
			st.phase = phaseSuppressed
			st.lastEmit = now
			return []Event{{
				Control: control,
				Kind:    Extended,
				Action:  c.cfg.Bindings.Resolve(control, Extended),
			}}
		}
	case phaseSuppressed:
		st.repeats++
		st.lastSeen = now
	}
	return nil
}

// Release processes a "control released" frame and emits the terminal
// event for the press, if any.
func (c *Classifier) Release(control string, now time.Time) []Event {
	if _, ok := c.cfg.Scroll[control]; ok {
		return nil
	}
	st, ok := c.states[control]
	if !ok {
		return nil
	}
	return c.finish(control, st, now)
}

// Tick finalizes presses whose refresh frames stopped arriving without a
// release frame: once the cooldown window passes with no refresh, the
// press is classified as if released. Callers invoke Tick periodically
// from their event loop.
func (c *Classifier) Tick(now time.Time) []Event {
	var events []Event
	for control, st := range c.states {
		if st.phase == phaseIdle {
			continue
		}
		if now.Sub(st.lastSeen) > c.cfg.Cooldown {
			events = append(events, c.finish(control, st, now)...)
		}
	}
	return events
}

func (c *Classifier) finish(control string, st *pressState, now time.Time) []Event {
	switch st.phase {
	case phaseActive:
		kind := Short
		if st.lastSeen.Sub(st.activeSince) >= c.cfg.LongPress {
			kind = Long
		}
		st.phase = phaseIdle
		st.lastEmit = now
		return []Event{{
			Control: control,
			Kind:    kind,
			Action:  c.cfg.Bindings.Resolve(control, kind),
		}}
	case phaseSuppressed:
		// Extended already fired, or the press was a coalesced bounce.
		st.phase = phaseIdle
	}
	return nil
}
