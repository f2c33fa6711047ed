package feature

import (
	"time"

	"github.com/rnse-control/canbridge/internal/frame"
)

// ShutdownState is the supervisor phase.
type ShutdownState string

const (
	Running      ShutdownState = "running"
	Armed        ShutdownState = "armed"
	ShuttingDown ShutdownState = "shutting_down"
)

// Shutdown powers the host off after the configured trigger signal has
// been off for the full delay. Restoring the signal while armed cancels
// with no side effect; the shutdown command fires at most once.
type Shutdown struct {
	runner  Runner
	command []string
	trigger string
	delay   time.Duration

	state    ShutdownState
	armedAt  time.Time
	lastSeen bool
}

// NewShutdown creates the supervisor. trigger is "ignition_off" or
// "key_pulled". The watched signal starts as present so a process
// started in an already-off car does not shut it down immediately; the
// first off-report arms normally.
func NewShutdown(runner Runner, command []string, trigger string, delay time.Duration) *Shutdown {
	return &Shutdown{
		runner:   runner,
		command:  command,
		trigger:  trigger,
		delay:    delay,
		state:    Running,
		lastSeen: true,
	}
}

// State returns the current supervisor phase.
func (s *Shutdown) State() ShutdownState { return s.state }

// OnIgnition processes a power-status event. Transitions are
// edge-triggered; repeated identical reports change nothing.
func (s *Shutdown) OnIgnition(ev frame.IgnitionStatus, now time.Time) {
	present := ev.IgnitionOn
	if s.trigger == "key_pulled" {
		present = ev.KeyIn
	}
	if present == s.lastSeen || s.state == ShuttingDown {
		s.lastSeen = present
		return
	}
	s.lastSeen = present
	if present {
		s.state = Running
		return
	}
	s.state = Armed
	s.armedAt = now
}

// Tick fires the shutdown command once the delay has elapsed while still
// armed. Returns whether the command ran. A failed command returns the
// supervisor to Running so the next arm cycle can retry.
func (s *Shutdown) Tick(now time.Time) (bool, error) {
	if s.state != Armed || now.Sub(s.armedAt) < s.delay {
		return false, nil
	}
	s.state = ShuttingDown
	if err := s.runner.Run(s.command[0], s.command[1:]...); err != nil {
		s.state = Running
		return false, err
	}
	return true, nil
}
