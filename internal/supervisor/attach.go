package supervisor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Reserved escape bytes for the attach detach protocol.
const (
	Esc1 byte = 0x04 // "attention" prefix
	Esc2 byte = 0x18 // detach, only meaningful right after Esc1
)

// pollTimeoutMillis bounds the readiness wait so the relay loop can
// periodically re-check the child's liveness without a dedicated signal.
const pollTimeoutMillis = 100

// escapeAutomaton recognizes the two-byte Esc1/Esc2 detach sequence while
// letting the operator still deliver a literal Esc1 byte to the child
// (Esc1 Esc1).
//
// The "armed, any other byte" row discards the first Esc1 and forwards only
// the following byte — this mirrors the reference Python implementation's
// observed behavior exactly; a future port could instead forward the
// discarded Esc1 too, but that would diverge from what was actually
// shipped.
type escapeAutomaton struct {
	armed bool
}

// feed consumes one input byte and reports what (if anything) should be
// forwarded to the child, and whether the detach sequence just completed.
func (e *escapeAutomaton) feed(b byte) (toForward byte, forward bool, detach bool) {
	if !e.armed {
		if b == Esc1 {
			e.armed = true
			return 0, false, false
		}
		return b, true, false
	}

	e.armed = false
	switch b {
	case Esc1:
		return Esc1, true, false
	case Esc2:
		return 0, false, true
	default:
		return b, true, false
	}
}

// AttachOutcome reports how an Attach Session ended.
type AttachOutcome struct {
	// Detached is true when the operator sent the Esc1 Esc2 sequence. The
	// child keeps running.
	Detached bool
	// ChildExited is true when the child's exit was observed during the
	// session.
	ChildExited bool
}

// RunAttach reconnects stdin/stdout to rec's master PTY until the operator
// detaches or the child exits. guard must already have SaveTerminalState and
// SetRaw called on the same fd as stdin before RunAttach is invoked, and
// Release must be called by the caller on every return — RunAttach does not
// own the guard's lifetime (the Attach Session's TUI teardown happens
// outside this function; see internal/tui).
//
// This is the central algorithm of the package: a single-threaded,
// cooperative relay loop driven by one unix.Poll call per iteration across
// both descriptors, rather than the goroutine-per-direction io.Copy pattern
// used by remote-attach network protocols, since there is no other side
// of a socket connection to hand one direction of the copy to.
func RunAttach(rec *ChildRecord, stdin, stdout *os.File) (AttachOutcome, error) {
	if len(rec.output) > 0 {
		if _, err := stdout.Write(rec.output); err != nil {
			return AttachOutcome{}, err
		}
		rec.output = rec.output[:0]
	}

	var esc escapeAutomaton
	stdinFd := int32(stdin.Fd())
	masterFd := int32(rec.master.Fd())
	buf := make([]byte, drainBlockSize)

	for {
		fds := []unix.PollFd{
			{Fd: stdinFd, Events: unix.POLLIN},
			{Fd: masterFd, Events: unix.POLLIN},
		}
		n, err := unix.Poll(fds, pollTimeoutMillis)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return AttachOutcome{}, err
		}

		if n == 0 {
			if rec.pollExited() {
				return drainUntilEOF(rec, stdout)
			}
			continue
		}

		if fds[1].Revents&(unix.POLLIN|unix.POLLHUP) != 0 {
			done, outcome, err := attachDrainMaster(rec, stdout, buf)
			if err != nil {
				return AttachOutcome{}, err
			}
			if done {
				return outcome, nil
			}
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			nr, err := stdin.Read(buf[:1])
			if err != nil {
				return AttachOutcome{}, err
			}
			if nr == 0 {
				continue
			}
			toForward, forward, detach := esc.feed(buf[0])
			if detach {
				return AttachOutcome{Detached: true}, nil
			}
			if forward {
				if _, err := rec.master.Write([]byte{toForward}); err != nil {
					return AttachOutcome{}, err
				}
			}
		}
	}
}

// attachDrainMaster reads whatever is currently available from rec.master
// and writes it verbatim to stdout. If the read hits EOF (the child's slave
// side closed), it reports the child-exited outcome.
func attachDrainMaster(rec *ChildRecord, stdout *os.File, buf []byte) (done bool, outcome AttachOutcome, err error) {
	rec.master.SetReadDeadline(time.Now())
	n, rerr := rec.master.Read(buf)
	if n > 0 {
		if _, werr := stdout.Write(buf[:n]); werr != nil {
			return false, AttachOutcome{}, werr
		}
	}
	if rerr == nil {
		return false, AttachOutcome{}, nil
	}
	if errors.Is(rerr, os.ErrDeadlineExceeded) {
		return false, AttachOutcome{}, nil
	}
	if errors.Is(rerr, io.EOF) {
		outcome, err = drainUntilEOF(rec, stdout)
		return true, outcome, err
	}
	return false, AttachOutcome{}, rerr
}

// drainUntilEOF drains any remaining readable bytes best-effort, prints the
// exit notice, and pauses briefly so the operator sees it before control
// returns to the TUI.
func drainUntilEOF(rec *ChildRecord, stdout *os.File) (AttachOutcome, error) {
	buf := make([]byte, drainBlockSize)
	for {
		rec.master.SetReadDeadline(time.Now())
		n, err := rec.master.Read(buf)
		if n > 0 {
			stdout.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	fmt.Fprint(stdout, "\r\n[Process exited]\r\n")
	time.Sleep(1 * time.Second)
	return AttachOutcome{ChildExited: true}, nil
}
