// Package supervisor implements the PTY-multiplexing subprocess manager:
// launching children on pseudo-terminals, draining their output while
// detached, and attaching the controlling terminal to a running child's
// PTY with a screen-like detach escape.
package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"time"
)

// ChildName identifies a discovered program. Unique within one run.
type ChildName string

// ChildRecord is created exactly when a launch succeeds and destroyed
// exactly when the supervisor observes the child has exited and has
// closed the master descriptor.
type ChildRecord struct {
	Name ChildName

	cmd    *exec.Cmd
	master *os.File // non-blocking; closed exactly once

	// output is the append-only accumulator holding bytes read from
	// master while no Attach Session is active. Cleared at Attach entry.
	output []byte

	launchedAt time.Time
	exited     bool
}

// Running reports whether the child's exit has not yet been observed.
func (c *ChildRecord) Running() bool { return !c.exited }

// Uptime reports how long the child has been running, for display
// purposes only.
func (c *ChildRecord) Uptime() time.Duration { return time.Since(c.launchedAt) }

// LaunchFailed is returned by Launch on PTY allocation, spawn, or
// descriptor-flag failure.
type LaunchFailed struct {
	Program string
	Cause   error
}

func (e *LaunchFailed) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Program, e.Cause)
}

func (e *LaunchFailed) Unwrap() error { return e.Cause }

// TerminalRestoreFailed is fatal: the supervisor could not restore the
// controlling terminal's attributes on exit from an Attach Session.
type TerminalRestoreFailed struct {
	Cause error
}

func (e *TerminalRestoreFailed) Error() string {
	return fmt.Sprintf("terminal restore failed: %v", e.Cause)
}

func (e *TerminalRestoreFailed) Unwrap() error { return e.Cause }
