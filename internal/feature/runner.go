// Package feature holds the controllers that turn decoded bus events
// into host side effects: theme switching, clock correction, shutdown
// supervision, source play/pause and the tuner presence announcement.
// Controllers are pure state machines over injected time; external
// commands go through the Runner boundary.
package feature

import (
	"bytes"
	"fmt"
	"os/exec"
	"sync"
)

// Runner executes an external command. The real implementation shells
// out; tests substitute FakeRunner.
type Runner interface {
	Run(name string, args ...string) error
}

// ExecRunner runs commands through os/exec, waiting for completion.
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w: %s", name, err, bytes.TrimSpace(out))
	}
	return nil
}

// FakeRunner records invocations for test assertions.
type FakeRunner struct {
	mu sync.Mutex

	// Commands holds each invocation as name followed by its args.
	Commands [][]string

	// RunError, if set, is returned by Run.
	RunError error
}

func (f *FakeRunner) Run(name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RunError != nil {
		return f.RunError
	}
	f.Commands = append(f.Commands, append([]string{name}, args...))
	return nil
}

// Calls returns a copy of the recorded invocations.
func (f *FakeRunner) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.Commands))
	copy(out, f.Commands)
	return out
}
