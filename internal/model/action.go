// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAction is returned when an action name is neither "lock" nor "unlock".
var ErrInvalidAction = errors.New("invalid action")

// ActionKind is what a board should do: lock or unlock its session.
type ActionKind int

const (
	ActionLock ActionKind = iota + 1
	ActionUnlock
)

var actionNames = map[ActionKind]string{
	ActionLock:   "lock",
	ActionUnlock: "unlock",
}

// Actions lists every action kind.
func Actions() []ActionKind {
	return []ActionKind{ActionLock, ActionUnlock}
}

// String returns the persisted name of the action.
func (a ActionKind) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Valid reports whether a is one of the known actions.
func (a ActionKind) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

// ParseAction converts "lock"/"unlock" (any case) into an ActionKind.
func ParseAction(s string) (ActionKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range actionNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// MarshalText implements encoding.TextMarshaler.
func (a ActionKind) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAction, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ActionKind) UnmarshalText(b []byte) error {
	k, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = k
	return nil
}
