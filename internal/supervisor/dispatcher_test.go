package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shInterpreter resolves every child to /bin/sh -c <programPath>, letting
// tests exercise the real Launch/pty path with inline shell scripts instead
// of needing actual files under an apps directory.
type shInterpreter struct{}

func (shInterpreter) For(name ChildName, programPath string) (string, []string) {
	return "/bin/sh", []string{"-c", programPath}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestDispatcherStartTickDrainsOutput(t *testing.T) {
	d := NewDispatcher("apps", shInterpreter{})

	err := d.Start("echoer", "echo hello-from-child")
	require.NoError(t, err)
	assert.True(t, d.Registry().Has("echoer"))

	waitUntil(t, 2*time.Second, func() bool {
		d.Tick()
		return !d.Registry().Has("echoer")
	})
}

func TestDispatcherStartIsNoOpWhenAlreadyRunning(t *testing.T) {
	d := NewDispatcher("apps", shInterpreter{})

	require.NoError(t, d.Start("looper", "sleep 5"))
	rec := d.Registry().Get("looper")
	require.NoError(t, d.Start("looper", "sleep 5"))

	assert.Same(t, rec, d.Registry().Get("looper"))
	d.Stop("looper")
}

func TestDispatcherStopReapsRunningChild(t *testing.T) {
	d := NewDispatcher("apps", shInterpreter{})
	require.NoError(t, d.Start("sleeper", "sleep 30"))
	require.True(t, d.Registry().Has("sleeper"))

	d.Stop("sleeper")
	assert.False(t, d.Registry().Has("sleeper"))
}

func TestDispatcherStopOnAbsentNameIsNoOp(t *testing.T) {
	d := NewDispatcher("apps", shInterpreter{})
	d.Stop("ghost")
	assert.False(t, d.Registry().Has("ghost"))
}

func TestDispatcherQuitStopsEverything(t *testing.T) {
	d := NewDispatcher("apps", shInterpreter{})
	require.NoError(t, d.Start("one", "sleep 30"))
	require.NoError(t, d.Start("two", "sleep 30"))

	d.Quit()
	assert.Equal(t, 0, d.Registry().Len())
}
