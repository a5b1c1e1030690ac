// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/toeirei/boardlock/internal/i18n"
)

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	SelectAll key.Binding
	Scan      key.Binding
	Lock      key.Binding
	Unlock    key.Binding
	LockAll   key.Binding
	UnlockAll key.Binding
	Copy      key.Binding
	Clear     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Scan, km.Lock, km.Unlock, km.Toggle, km.Help, km.Quit}
}

func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.Up, km.Down, km.Toggle, km.SelectAll},
		{km.Scan, km.Lock, km.Unlock, km.LockAll, km.UnlockAll},
		{km.Copy, km.Clear, km.Help, km.Quit},
	}
}

// *KeyMap implements help.KeyMap
var _ help.KeyMap = (*KeyMap)(nil)

// newKeyMap builds the bindings with help texts in the current language.
func newKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", i18n.T("all")),
		),
		Scan: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "scan"),
		),
		Lock: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", i18n.T("action.lock")),
		),
		Unlock: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", i18n.T("action.unlock")),
		),
		LockAll: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", i18n.T("action.lock")+" ("+i18n.T("all")+")"),
		),
		UnlockAll: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", i18n.T("action.unlock")+" ("+i18n.T("all")+")"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear list"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
