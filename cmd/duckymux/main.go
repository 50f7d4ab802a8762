// duckymux is a terminal supervisor for a directory of small standalone
// programs: it discovers them, launches each under its own PTY, keeps
// their output buffered while they run in the background, and lets the
// operator attach to one at a time from a single curses-like dashboard.
//
// Usage:
//
//	duckymux [-config duckymux.yaml]
//
// Inside the dashboard: arrow keys or j/k to move, r to start the
// selected app in the background, o or a double click to attach to it,
// shift+r to exec it in the foreground (replacing duckymux), s to force
// stop it, h for help, q to quit. While attached, send Esc1 Esc2
// (0x04 0x18) to detach back to the dashboard.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/itzmetanjim/duckymux/internal/config"
	"github.com/itzmetanjim/duckymux/internal/discovery"
	"github.com/itzmetanjim/duckymux/internal/supervisor"
	"github.com/itzmetanjim/duckymux/internal/tui"
)

func main() {
	configPath := flag.String("config", "duckymux.yaml", "path to the supervisor config file")
	logPath := flag.String("log", "duckymux.log", "path to the persistent log file")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "duckymux: cannot open log file %s: %v\n", *logPath, err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("duckymux: loading %s: %v", *configPath, err)
	}
	cfg = cfg.Resolved()

	apps, err := discovery.Discover(cfg.AppsDir, cfg.Extension)
	if err != nil {
		fmt.Fprintf(os.Stderr, "duckymux: scanning %s: %v\n", cfg.AppsDir, err)
		os.Exit(1)
	}

	interp := config.NewInterpreters(cfg)
	dispatcher := supervisor.NewDispatcher(cfg.AppsDir, interp)

	log.Printf("duckymux: starting, %d app(s) discovered in %s", len(apps), cfg.AppsDir)
	code := tui.Run(apps, dispatcher)
	log.Printf("duckymux: exiting with code %d", code)
	os.Exit(code)
}
