// Package tui is the mechanical UI collaborator:
// it renders the child list, tracks the highlight bar and scroll position,
// handles keyboard and mouse input, and turns both into Dispatcher
// commands. It never touches the Registry directly.
package tui

import (
	"log"
	"os"

	"github.com/itzmetanjim/duckymux/internal/discovery"
	"github.com/itzmetanjim/duckymux/internal/supervisor"
	"golang.org/x/term"
)

// Model holds the TUI's own state: the discovered app list, the highlight
// index, the scroll offset, and whether the help overlay is showing. None
// of this is supervisor state: it is per-session state owned by the TUI
// collaborator alone.
type Model struct {
	apps       []discovery.App
	dispatcher *supervisor.Dispatcher
	guard      *supervisor.TerminalGuard
	index      int
	scroll     int
	help       bool
	helpScroll int
}

func newModel(apps []discovery.App, d *supervisor.Dispatcher, guard *supervisor.TerminalGuard) *Model {
	return &Model{apps: apps, dispatcher: d, guard: guard}
}

func (m *Model) clampScroll(visible int) {
	maxScroll := len(m.apps) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
	if m.index < m.scroll {
		m.scroll = m.index
	}
	if m.index >= m.scroll+visible {
		m.scroll = m.index - visible + 1
	}
}

func (m *Model) moveUp() {
	if m.index > 0 {
		m.index--
	}
}

func (m *Model) moveDown() {
	if m.index < len(m.apps)-1 {
		m.index++
	}
}

// Run drives the supervisor until the operator quits. It owns the
// program's single TerminalGuard for the whole session, entering raw mode
// once and restoring it on every return path. It returns the process exit
// code: 0 on clean quit, non-zero if terminal restoration
// ever failed.
func Run(apps []discovery.App, d *supervisor.Dispatcher) int {
	if len(apps) == 0 {
		log.Println("duckymux: no apps found")
		return 0
	}

	stdin, stdout := os.Stdin, os.Stdout
	fd := int(stdin.Fd())

	guard, err := supervisor.SaveTerminalState(fd)
	if err != nil {
		log.Printf("duckymux: %v", err)
		return 1
	}
	if err := guard.SetRaw(); err != nil {
		log.Printf("duckymux: %v", err)
		return 1
	}

	enableMouse(stdout)
	exitCode := 0

	defer func() {
		disableMouse(stdout)
		if err := guard.Release(); err != nil {
			log.Printf("duckymux: %v", err)
			exitCode = 1
		}
	}()

	m := newModel(apps, d, guard)
	rd := newReader(stdin)

	for {
		d.Tick()

		width, height, err := term.GetSize(fd)
		if err != nil || width <= 0 || height <= 0 {
			width, height = 80, 24
		}

		if m.help {
			renderHelp(stdout, width, height, m.helpScroll)
		} else {
			m.render(stdout, width, height)
		}

		ev, err := rd.Next()
		if err != nil {
			log.Printf("duckymux: input: %v", err)
			return exitCode
		}
		if ev.TimedOut {
			continue
		}

		if quit := m.handle(ev, stdin, stdout); quit {
			return exitCode
		}
	}
}

func enableMouse(w *os.File)  { w.WriteString("\x1b[?1000h\x1b[?1006h\x1b[?25l") }
func disableMouse(w *os.File) { w.WriteString("\x1b[?25h\x1b[?1006l\x1b[?1000l") }

// handle applies one input Event to the model, issuing Dispatcher commands
// as needed. It returns true when the session should end.
func (m *Model) handle(ev Event, stdin, stdout *os.File) bool {
	if m.help {
		m.handleHelp(ev)
		return false
	}

	if ev.Mouse != nil {
		return m.handleMouse(*ev.Mouse, stdin, stdout)
	}

	switch ev.Key {
	case 'q':
		m.dispatcher.Quit()
		return true
	case 'h':
		m.help = true
		m.helpScroll = 0
	case KeyUp, 'k':
		m.moveUp()
	case KeyDown, 'j':
		m.moveDown()
	case 'r':
		m.startBackground()
	case 'R':
		m.runForeground(stdout)
	case 'o':
		m.attach(stdin, stdout)
	case 's':
		m.stop()
	}
	return false
}

func (m *Model) handleHelp(ev Event) {
	if ev.Mouse != nil {
		switch ev.Mouse.Button {
		case MouseWheelUp:
			if m.helpScroll > 0 {
				m.helpScroll--
			}
		case MouseWheelDown:
			m.helpScroll++
		}
		return
	}
	switch ev.Key {
	case 'h', 'q':
		m.help = false
	case KeyUp, 'k':
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	case KeyDown, 'j':
		m.helpScroll++
	}
}

func (m *Model) handleMouse(ev MouseEvent, stdin, stdout *os.File) bool {
	if ev.Released {
		return false
	}
	switch ev.Button {
	case MouseWheelUp:
		m.moveUp()
		return false
	case MouseWheelDown:
		m.moveDown()
		return false
	}

	row := ev.Y - 2 // header occupies row 1 (1-based terminal coordinates)
	clicked := m.scroll + row
	if row < 0 || clicked >= len(m.apps) {
		return false
	}
	m.index = clicked

	switch {
	case ev.Button == MouseRight:
		m.startBackground()
	case ev.Button == MouseLeft && ev.Double:
		m.attach(stdin, stdout)
	}
	return false
}

func (m *Model) current() (supervisor.ChildName, string) {
	app := m.apps[m.index]
	return supervisor.ChildName(app.Name), app.Path
}

func (m *Model) startBackground() {
	name, path := m.current()
	if err := m.dispatcher.Start(name, path); err != nil {
		log.Printf("duckymux: start %s: %v", name, err)
	}
}

func (m *Model) stop() {
	name, _ := m.current()
	m.dispatcher.Stop(name)
}

func (m *Model) attach(stdin, stdout *os.File) {
	name, path := m.current()
	suspend := func() { disableMouse(stdout) }
	resume := func() { enableMouse(stdout) }
	if _, err := m.dispatcher.Attach(name, path, stdin, stdout, suspend, resume); err != nil {
		log.Printf("duckymux: attach %s: %v", name, err)
	}
}

func (m *Model) runForeground(stdout *os.File) {
	name, path := m.current()
	disableMouse(stdout)
	// Take the terminal out of raw mode before the exec: syscall.Exec
	// replaces the process image, so the deferred guard.Release() in Run
	// never runs, and the child would otherwise inherit a raw terminal
	// (no echo, no line buffering, no signal translation).
	if err := m.guard.Suspend(); err != nil {
		log.Printf("duckymux: %v", err)
	}
	// ForegroundExec never returns on success; on failure we're still in
	// the TUI's session and must reassert raw mode and the mouse
	// reporting we just disabled before continuing.
	if err := m.dispatcher.ForegroundExec(name, path); err != nil {
		log.Printf("duckymux: exec %s: %v", name, err)
		if err := m.guard.SetRaw(); err != nil {
			log.Printf("duckymux: %v", err)
		}
		enableMouse(stdout)
	}
}
