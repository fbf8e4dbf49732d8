package perf

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
)

// This file contains tracefs (/sys/kernel/tracing) related code.

const (
	tracefs    = "/sys/kernel/tracing"
	debugfs    = "/sys/kernel/debug/tracing"
	eventsPath = "events"
)

// TraceFS returns the tracefs mount. Older systems only expose it as part of debugfs.
func TraceFS() fs.FS {
	if _, err := os.Stat(path.Join(tracefs, eventsPath)); err == nil {
		return os.DirFS(tracefs)
	}

	return os.DirFS(debugfs)
}

// TracepointID returns the ID of a tracepoint, which is used as config for TYPE_TRACEPOINT events.
// If the function returns permission errors the program is not being run a user with the correct permissions.
// If the function returns fs.ErrNotExist the given tracepoint doesn't exist
func TracepointID(fsys fs.FS, category, name string) (uint64, error) {
	contents, err := fs.ReadFile(fsys, path.Join(eventsPath, category, name, "id"))
	if err != nil {
		return 0, fmt.Errorf("read tracepoint id: %w", err)
	}

	return strconv.ParseUint(strings.TrimSpace(string(contents)), 10, 64)
}

// HasTracepointCategory returns true if the tracefs contains a event group with the given name.
func HasTracepointCategory(fsys fs.FS, category string) bool {
	info, err := fs.Stat(fsys, path.Join(eventsPath, category))
	return err == nil && info.IsDir()
}
