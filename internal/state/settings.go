// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package state holds in-memory state shared between the CLI, the
// dashboard and background work, such as the operator settings.
package state

import (
	"sync"

	"github.com/toeirei/boardlock/internal/model"
)

// SettingsBox is a concurrency-safe holder for the operator settings. Scans
// and dispatch batches read it once at start, so an update never changes the
// credentials of work that is already running.
type SettingsBox struct {
	mu    sync.RWMutex
	value model.Settings
}

// NewSettingsBox returns a box holding s.
func NewSettingsBox(s model.Settings) *SettingsBox {
	return &SettingsBox{value: s}
}

// Get returns a copy of the current settings.
func (b *SettingsBox) Get() model.Settings {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Set replaces the settings.
func (b *SettingsBox) Set(s model.Settings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = s
}

// Credentials returns the SSH credentials of the current settings.
func (b *SettingsBox) Credentials() model.Credentials {
	return b.Get().Credentials()
}

// IPRange returns the configured scan range text.
func (b *SettingsBox) IPRange() string {
	return b.Get().IPRange
}

// Clear resets the password so it no longer lingers in the box.
func (b *SettingsBox) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value.Pass = ""
}
