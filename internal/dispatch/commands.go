// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package dispatch

import (
	"fmt"
	"maps"
	"strings"

	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/model"
)

// LockCommand asks the display manager over the system bus to lock seat0.
const LockCommand = "dbus-send --system --dest=org.freedesktop.DisplayManager --type=method_call " +
	"/org/freedesktop/DisplayManager/Seat0 org.freedesktop.DisplayManager.Seat.Lock"

// UnlockCommand unlocks the logind sessions, then finds the user owning
// tty7 (falling back to etapadmin) and deactivates that user's Cinnamon
// screensaver over their session bus. The tty7 lookup assumes a single
// graphical session per board.
const UnlockCommand = "export DISPLAY=:0; " +
	"loginctl unlock-sessions; " +
	"ACT_USR=$(stat -c '%U' /dev/tty7 2>/dev/null || echo 'etapadmin'); " +
	"USR_ID=$(id -u $ACT_USR); " +
	"export XDG_RUNTIME_DIR=/run/user/$USR_ID; " +
	"export DBUS_SESSION_BUS_ADDRESS=unix:path=/run/user/$USR_ID/bus; " +
	"dbus-send --session --dest=org.cinnamon.ScreenSaver --type=method_call " +
	"/org/cinnamon/ScreenSaver org.cinnamon.ScreenSaver.SetActive boolean:false"

// DefaultCommands returns the built-in command table.
func DefaultCommands() map[model.ActionKind]string {
	return map[model.ActionKind]string{
		model.ActionLock:   LockCommand,
		model.ActionUnlock: UnlockCommand,
	}
}

// Commands builds the command table from the defaults and operator
// overrides keyed "lock" / "unlock". Blank overrides are ignored and
// unknown keys are logged and skipped.
func Commands(overrides map[string]string) map[model.ActionKind]string {
	table := DefaultCommands()
	for key, cmd := range overrides {
		action, err := model.ParseAction(key)
		if err != nil {
			logging.Warnf("dispatch: ignoring command override for unknown action %q", key)
			continue
		}
		if strings.TrimSpace(cmd) == "" {
			continue
		}
		table[action] = cmd
	}
	return table
}

func lookupCommand(table map[model.ActionKind]string, action model.ActionKind) (string, error) {
	cmd, ok := table[action]
	if !ok || cmd == "" {
		return "", fmt.Errorf("%w: %v", ErrUnknownAction, action)
	}
	return cmd, nil
}

func cloneCommands(table map[model.ActionKind]string) map[model.ActionKind]string {
	return maps.Clone(table)
}
