//go:build integration

// Integration tests for the duckymux supervisor, driving real PTYs and
// real /bin/sh children through internal/supervisor. These cover the
// scenario list end to end rather than unit-testing one package at a time.
//
// Run with:
//
//	go test -tags=integration -v ./test/
package integration_test

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/itzmetanjim/duckymux/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shInterpreter struct{}

func (shInterpreter) For(name supervisor.ChildName, programPath string) (string, []string) {
	return "/bin/sh", []string{"-c", programPath}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

// openPipePair opens a plain pipe, used to capture relayed output where no
// terminal ioctls are needed.
func openPipePair(t *testing.T) (r, w *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })
	return r, w
}

// openOperatorPTY opens a real pty pair standing in for the operator's
// controlling terminal: slave is passed to Attach as stdin (it is the side
// TerminalGuard calls term.GetState/MakeRaw on, just like a real tty), and
// master is written to in order to simulate the operator typing.
func openOperatorPTY(t *testing.T) (master, slave *os.File) {
	t.Helper()
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })
	return master, slave
}

func TestHelloWorldStartAndStop(t *testing.T) {
	d := supervisor.NewDispatcher("apps", shInterpreter{})
	require.NoError(t, d.Start("hello", "echo hello-world"))

	waitUntil(t, 2*time.Second, func() bool {
		d.Tick()
		return !d.Registry().Has("hello")
	})
}

func TestAttachMidOutputPreservesByteOrder(t *testing.T) {
	d := supervisor.NewDispatcher("apps", shInterpreter{})
	require.NoError(t, d.Start("counter", "for i in 1 2 3 4 5; do echo line-$i; sleep 0.05; done; sleep 5"))

	// Let a few lines accumulate in the background before attaching.
	time.Sleep(200 * time.Millisecond)
	d.Tick()

	_, opSlave := openOperatorPTY(t)
	screenR, screenW := openPipePair(t)

	done := make(chan struct{})
	var outcome supervisor.AttachOutcome
	var attachErr error
	go func() {
		outcome, attachErr = d.Attach("counter", "counter", opSlave, screenW, nil, nil)
		close(done)
	}()

	time.Sleep(300 * time.Millisecond)
	screenW.Close()
	<-done
	require.NoError(t, attachErr)
	assert.True(t, outcome.ChildExited)

	out, _ := io.ReadAll(screenR)
	assert.True(t, bytes.Contains(out, []byte("line-1")))
	assert.True(t, bytes.Contains(out, []byte("line-5")))
	assert.True(t, bytes.Index(out, []byte("line-1")) < bytes.Index(out, []byte("line-5")),
		"earlier output must appear before later output")
}

func TestDetachSequenceLeavesChildRunning(t *testing.T) {
	d := supervisor.NewDispatcher("apps", shInterpreter{})
	require.NoError(t, d.Start("looper", "sleep 30"))

	opMaster, opSlave := openOperatorPTY(t)
	_, screenW := openPipePair(t)

	resultCh := make(chan supervisor.AttachOutcome, 1)
	go func() {
		outcome, _ := d.Attach("looper", "looper", opSlave, screenW, nil, nil)
		resultCh <- outcome
	}()

	time.Sleep(100 * time.Millisecond)
	opMaster.Write([]byte{supervisor.Esc1, supervisor.Esc2})

	select {
	case outcome := <-resultCh:
		assert.True(t, outcome.Detached)
		assert.False(t, outcome.ChildExited)
	case <-time.After(2 * time.Second):
		t.Fatal("detach did not complete in time")
	}

	assert.True(t, d.Registry().Has("looper"))
	d.Stop("looper")
}

func TestEsc1Esc1DeliversOneLiteralByte(t *testing.T) {
	d := supervisor.NewDispatcher("apps", shInterpreter{})
	require.NoError(t, d.Start("cat", "cat"))

	opMaster, opSlave := openOperatorPTY(t)
	_, screenW := openPipePair(t)

	resultCh := make(chan supervisor.AttachOutcome, 1)
	go func() {
		outcome, _ := d.Attach("cat", "cat", opSlave, screenW, nil, nil)
		resultCh <- outcome
	}()

	time.Sleep(100 * time.Millisecond)
	opMaster.Write([]byte{supervisor.Esc1, supervisor.Esc1})
	time.Sleep(100 * time.Millisecond)
	opMaster.Write([]byte{supervisor.Esc1, supervisor.Esc2})

	select {
	case outcome := <-resultCh:
		assert.True(t, outcome.Detached)
	case <-time.After(2 * time.Second):
		t.Fatal("detach did not complete in time")
	}

	d.Stop("cat")
}

func TestChildExitDuringAttachRestoresTerminal(t *testing.T) {
	d := supervisor.NewDispatcher("apps", shInterpreter{})
	require.NoError(t, d.Start("quick", "echo bye; sleep 0.2"))

	_, opSlave := openOperatorPTY(t)
	_, screenW := openPipePair(t)

	outcome, err := d.Attach("quick", "quick", opSlave, screenW, nil, nil)
	require.NoError(t, err)
	assert.True(t, outcome.ChildExited)
	assert.False(t, d.Registry().Has("quick"))
}

func TestQuitStopsMultipleRunningChildren(t *testing.T) {
	d := supervisor.NewDispatcher("apps", shInterpreter{})
	require.NoError(t, d.Start("one", "sleep 30"))
	require.NoError(t, d.Start("two", "sleep 30"))
	require.Equal(t, 2, d.Registry().Len())

	d.Quit()
	assert.Equal(t, 0, d.Registry().Len())
}
