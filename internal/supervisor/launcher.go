package supervisor

import (
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"
)

// Launch opens a master/slave pseudo-terminal pair, spawns interpreter with
// args bound to the slave side for stdin/stdout/stderr, and returns a fresh
// ChildRecord with an empty accumulator.
//
// pty.Start binds all three standard streams to the slave and closes the
// slave in the parent. It also calls Setsid on the child, giving it a
// dedicated process group for Stop's signal delivery without any extra
// SysProcAttr wiring.
func Launch(name ChildName, interpreter string, args ...string) (*ChildRecord, error) {
	cmd := exec.Command(interpreter, args...)
	cmd.Env = os.Environ()

	master, err := pty.Start(cmd)
	if err != nil {
		return nil, &LaunchFailed{Program: interpreter, Cause: err}
	}

	rec := &ChildRecord{
		Name:       name,
		cmd:        cmd,
		master:     master,
		launchedAt: time.Now(),
	}
	return rec, nil
}
