// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"io"
	"strings"

	clog "github.com/charmbracelet/log"
)

// SetDebug switches between debug and info level.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
		return
	}
	L.SetLevel(clog.InfoLevel)
}

// SetLevel sets the level from its config name. Unknown names mean info.
func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		L.SetLevel(clog.DebugLevel)
	case "warn", "warning":
		L.SetLevel(clog.WarnLevel)
	case "error":
		L.SetLevel(clog.ErrorLevel)
	default:
		L.SetLevel(clog.InfoLevel)
	}
}

// SetOutput redirects log output, e.g. away from the terminal while the TUI runs.
func SetOutput(w io.Writer) {
	L.SetOutput(w)
}
