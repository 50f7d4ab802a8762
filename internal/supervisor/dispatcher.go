package supervisor

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// stopGracePeriod bounds how long Stop waits for a soft-terminated child
// before escalating to a hard kill.
const stopGracePeriod = 2 * time.Second

// Interpreter resolves the interpreter binary and argv for a child program,
// letting it be configured per-child or globally. See
// internal/config for the concrete implementation.
type Interpreter interface {
	For(name ChildName, programPath string) (bin string, args []string)
}

// Dispatcher is the Supervisor Loop & Dispatcher: it owns the Registry,
// processes commands from the UI collaborator serially, and performs
// teardown. It is the only component permitted to mutate its Registry.
type Dispatcher struct {
	reg         *Registry
	appsDir     string
	interpreter Interpreter
}

// NewDispatcher returns a Dispatcher that launches children found under
// appsDir, using interp to resolve each child's interpreter.
func NewDispatcher(appsDir string, interp Interpreter) *Dispatcher {
	return &Dispatcher{
		reg:         NewRegistry(),
		appsDir:     appsDir,
		interpreter: interp,
	}
}

// Registry exposes the dispatcher's registry for read-only inspection by
// the TUI collaborator.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Tick runs one Background Drain Loop pass and reaps any children whose
// exit it observed, preserving the single-mutator invariant:
// the drain loop only reports names; the dispatcher performs the mutation.
func (d *Dispatcher) Tick() {
	for _, name := range DrainPass(d.reg) {
		d.reap(name)
	}
}

// reap closes a just-exited child's master descriptor exactly once and
// removes it from the registry.
func (d *Dispatcher) reap(name ChildName) {
	rec := d.reg.Get(name)
	if rec == nil {
		return
	}
	rec.master.Close()
	d.reg.remove(name)
}

// Start launches program (one of the names returned by app discovery) if it
// is not already registered. A no-op if the child is already running.
func (d *Dispatcher) Start(name ChildName, programPath string) error {
	if d.reg.Has(name) {
		return nil
	}

	bin, args := d.interpreter.For(name, programPath)
	rec, err := Launch(name, bin, args...)
	if err != nil {
		log.Printf("duckymux: %v", err)
		return err
	}

	d.reg.insert(rec)
	return nil
}

// Stop delivers a termination request to name's process, waits up to
// stopGracePeriod, hard-kills if still alive, then closes the master and
// removes the entry. Idempotent if name is absent.
func (d *Dispatcher) Stop(name ChildName) {
	rec := d.reg.Get(name)
	if rec == nil {
		return
	}

	if !rec.pollExited() {
		rec.cmd.Process.Signal(syscall.SIGTERM)

		deadline := time.Now().Add(stopGracePeriod)
		for time.Now().Before(deadline) {
			if rec.pollExited() {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}

		if !rec.pollExited() {
			rec.cmd.Process.Kill()
			// Block briefly for the kill to land; this is the only place a
			// bounded blocking Wait is acceptable, since SIGKILL cannot be
			// caught or ignored.
			for i := 0; i < 50 && !rec.pollExited(); i++ {
				time.Sleep(20 * time.Millisecond)
			}
		}
	}

	d.reap(name)
}

// Attach ensures name is running (starting it if absent), then runs an
// Attach Session on its record: saves the controlling terminal's state,
// calls suspend (the TUI collaborator's teardown), switches to raw mode,
// relays bytes until detach or exit, and restores the terminal on every
// exit path before calling resume. On return it re-checks the child's
// liveness and updates the registry accordingly. The TerminalGuard is owned
// entirely by this call: it must be the outermost scoped resource of the
// session.
func (d *Dispatcher) Attach(name ChildName, programPath string, stdin, stdout *os.File, suspend, resume func()) (AttachOutcome, error) {
	if !d.reg.Has(name) {
		if err := d.Start(name, programPath); err != nil {
			return AttachOutcome{}, err
		}
	}

	rec := d.reg.Get(name)
	if rec == nil {
		return AttachOutcome{}, fmt.Errorf("duckymux: %s not running", name)
	}

	guard, err := SaveTerminalState(int(stdin.Fd()))
	if err != nil {
		return AttachOutcome{}, err
	}

	if suspend != nil {
		suspend()
	}

	var outcome AttachOutcome
	var runErr error
	if err := guard.SetRaw(); err != nil {
		runErr = err
	} else {
		outcome, runErr = RunAttach(rec, stdin, stdout)
	}

	restoreErr := guard.Release()
	if resume != nil {
		resume()
	}

	if runErr != nil {
		log.Printf("duckymux: attach %s: %v", name, runErr)
	}
	if outcome.ChildExited || rec.pollExited() {
		d.reap(name)
	}

	if restoreErr != nil {
		// TerminalRestoreFailed is fatal; surface it even if the
		// relay loop itself returned cleanly.
		return outcome, restoreErr
	}
	return outcome, runErr
}

// ForegroundExec stops every other entry, then replaces the supervisor
// process image with a fresh invocation of program. Non-returning on
// success: any state outside the kernel is discarded. The caller must tear
// down the TUI before calling this so the child inherits a clean terminal.
func (d *Dispatcher) ForegroundExec(name ChildName, programPath string) error {
	for _, other := range d.reg.Names() {
		if other != name {
			d.Stop(other)
		}
	}
	if d.reg.Has(name) {
		d.Stop(name)
	}

	bin, args := d.interpreter.For(name, programPath)
	argv := append([]string{bin}, args...)

	binPath, err := exec.LookPath(bin)
	if err != nil {
		return err
	}

	return syscall.Exec(binPath, argv, os.Environ())
}

// Quit stops every entry. The caller performs the actual process exit so it
// can choose the exit code (0 on clean quit, non-zero if teardown hit a
// fatal error such as TerminalRestoreFailed).
func (d *Dispatcher) Quit() {
	for _, name := range d.reg.Names() {
		d.Stop(name)
	}
}
