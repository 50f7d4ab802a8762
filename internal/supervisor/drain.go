package supervisor

import (
	"errors"
	"io"
	"log"
	"os"
	"time"
)

// drainBlockSize is the fixed read size used by both the Background Drain
// Loop and the Attach Session's relay loop.
const drainBlockSize = 4096

// DrainPass performs one iteration of the Background Drain Loop: for every
// registry entry it either reaps an already-exited child or drains whatever
// output is currently available from its master descriptor into the
// accumulator. It returns the names that should be torn down this pass,
// whether because the child's exit was observed or because its master
// descriptor hit a DrainIOError; the caller (the Dispatcher) is the only
// thing allowed to remove them from the Registry, preserving the
// single-mutator invariant.
//
// DrainPass never blocks for more than the time it takes to perform the
// available reads: readiness is checked with an already-elapsed
// SetReadDeadline before every Read, which returns os.ErrDeadlineExceeded
// immediately instead of waiting, the same "attempt a non-blocking read"
// idiom used by the Attach Session.
func DrainPass(reg *Registry) []ChildName {
	var exited []ChildName

	for _, name := range reg.Names() {
		rec := reg.Get(name)
		if rec == nil {
			continue
		}

		if rec.pollExited() {
			exited = append(exited, name)
			continue
		}

		if drainOne(rec) {
			exited = append(exited, name)
		}
	}

	return exited
}

// drainOne reads from rec's master until it would block, hits EOF, or
// errors, appending everything read to rec.output. It reports true when a
// DrainIOError occurred: an unexpected read error other than would-block or
// EOF, which is torn down as if the child had exited (ChildGone), so the
// caller adds name to the returned exited slice and the Dispatcher reaps it,
// closing the master descriptor exactly once.
func drainOne(rec *ChildRecord) bool {
	buf := make([]byte, drainBlockSize)
	for {
		rec.master.SetReadDeadline(time.Now())
		n, err := rec.master.Read(buf)
		if n > 0 {
			rec.output = append(rec.output, buf[:n]...)
		}
		if err == nil {
			continue
		}
		if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.EOF) {
			return false
		}
		log.Printf("duckymux: drain %s: %v", rec.Name, err)
		return true
	}
}
