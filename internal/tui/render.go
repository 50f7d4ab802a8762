package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/itzmetanjim/duckymux/internal/supervisor"
)

const header = "duckymux 0.1 q:quit h:help"

var (
	highlight = color.New(color.BgWhite, color.FgBlack)
	running   = color.New(color.FgGreen)
	stopped   = color.New(color.FgHiBlack)
)

// render draws the app list: header, then one line per app in the visible
// window, with the selected row inverse-highlighted and RUNNING/stopped
// colorized. Ported from original_source's print_app_list, replacing its
// curses color pair with github.com/fatih/color and raw ANSI cursor moves
// in place of a curses window.
func (m *Model) render(w io.Writer, width, height int) {
	fmt.Fprint(w, "\x1b[H\x1b[2J")

	headerLine := padTrunc(header, width)
	fmt.Fprintln(w, highlight.Sprint(headerLine))

	visible := height - 1
	if visible < 1 {
		visible = 1
	}
	m.clampScroll(visible)

	end := m.scroll + visible
	if end > len(m.apps) {
		end = len(m.apps)
	}

	for i := m.scroll; i < end; i++ {
		app := m.apps[i]
		marker := "  "
		if i == m.index {
			marker = "> "
		}
		status := "       "
		colorFn := stopped.Sprint
		if rec := m.dispatcher.Registry().Get(supervisor.ChildName(app.Name)); rec != nil {
			status = fmt.Sprintf("RUNNING %s", formatUptime(rec.Uptime()))
			colorFn = running.Sprint
		}
		line := padTrunc(fmt.Sprintf("%s%s %s", marker, app.Name, status), width)
		if i == m.index {
			fmt.Fprintln(w, highlight.Sprint(line))
		} else {
			fmt.Fprintln(w, colorFn(line))
		}
	}

	for i := end - m.scroll + 1; i < visible; i++ {
		fmt.Fprintln(w, padTrunc("", width))
	}
}

// formatUptime renders a duration coarsely: whole units only, the
// coarsest unit that still fits.
func formatUptime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

func padTrunc(s string, width int) string {
	if width <= 0 {
		return s
	}
	if len(s) > width {
		return s[:width]
	}
	for len(s) < width {
		s += " "
	}
	return s
}

// helpText is the static help overlay (original_source's `helptext`,
// updated for the two-byte Esc1/Esc2 detach sequence this port uses in
// place of the original's Ctrl-D Ctrl-X).
var helpText = []string{
	"duckymux - manage discovered child programs",
	"",
	"h: show this help or exit help",
	"arrows or j/k or click: move up/down",
	"r or right click: run current app in background",
	"o or double click: open the attach session for current app",
	"   use Esc1 Esc2 (0x04 0x18) to detach; Esc1 Esc1 sends one 0x04",
	"shift+r: run app in foreground, replacing duckymux entirely",
	"s: force stop current app",
	"q: quit",
	"",
	"=== press q or h to return to duckymux ===",
}

func renderHelp(w io.Writer, width, height, scroll int) {
	fmt.Fprint(w, "\x1b[H\x1b[2J")
	for i := 0; i < height && scroll+i < len(helpText); i++ {
		fmt.Fprintln(w, padTrunc(helpText[scroll+i], width))
	}
}
