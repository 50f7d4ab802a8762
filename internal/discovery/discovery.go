// Package discovery enumerates the child programs a duckymux instance can
// launch: every file in a directory matching a fixed extension, sorted
// lexicographically. Grounded on original_source/main.py's
// `sorted([f for f in os.listdir("apps") if f.endswith('.py')])`.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// App is one discovered child program.
type App struct {
	// Name is the filename, used as the ChildName throughout the
	// supervisor (unique within one run because filesystem
	// entries are unique).
	Name string
	// Path is the full path passed to the Launcher.
	Path string
}

// Discover scans dir for entries whose name ends in ext and returns them as
// a stable, lexicographically sorted sequence.
func Discover(dir, ext string) ([]App, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var apps []App
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		apps = append(apps, App{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
		})
	}

	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	return apps, nil
}
