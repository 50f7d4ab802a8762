package supervisor

import "golang.org/x/term"

// TerminalGuard is a scoped acquisition of the controlling terminal's
// attributes: it records them at construction (Save) and guarantees their
// restoration on every exit path of an Attach Session, including
// exceptional ones (Release). It must be the outermost scoped resource of
// any Attach Session; in particular Save happens before the
// TUI collaborator tears itself down, and Release happens after everything
// else in the session has unwound.
type TerminalGuard struct {
	fd    int
	saved *term.State
}

// SaveTerminalState records fd's current attributes without modifying them.
func SaveTerminalState(fd int) (*TerminalGuard, error) {
	saved, err := term.GetState(fd)
	if err != nil {
		return nil, err
	}
	return &TerminalGuard{fd: fd, saved: saved}, nil
}

// SetRaw switches the guarded terminal to raw mode (no line buffering, no
// echo, no signal translation).
func (g *TerminalGuard) SetRaw() error {
	_, err := term.MakeRaw(g.fd)
	return err
}

// Release restores the terminal attributes captured by Save. Safe to call
// more than once; only the first call has effect. Any error here is the
// TerminalRestoreFailed kind: fatal, and must be surfaced to
// the caller rather than swallowed.
func (g *TerminalGuard) Release() error {
	if g == nil || g.saved == nil {
		return nil
	}
	saved := g.saved
	g.saved = nil
	if err := term.Restore(g.fd, saved); err != nil {
		return &TerminalRestoreFailed{Cause: err}
	}
	return nil
}

// Suspend restores the terminal attributes captured by Save, same as
// Release, but keeps the guard alive so SetRaw can reassert raw mode
// afterward. Used to hand a foreground child a clean terminal without
// ending the guard's lifetime, since a failed exec must be able to resume
// the session in raw mode.
func (g *TerminalGuard) Suspend() error {
	if g == nil || g.saved == nil {
		return nil
	}
	if err := term.Restore(g.fd, g.saved); err != nil {
		return &TerminalRestoreFailed{Cause: err}
	}
	return nil
}
