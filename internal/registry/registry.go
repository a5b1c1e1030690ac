// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package registry holds the set of boards found by the last completed scan.
package registry

import (
	"slices"
	"sync"

	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/model"
)

// Persister saves the device list. store.Store satisfies it.
type Persister interface {
	LoadDevices() []model.Device
	SaveDevices([]model.Device) error
}

// Registry is the known-device list. Reads return copies so callers can
// iterate while a scan replaces the set.
type Registry struct {
	mu      sync.RWMutex
	devices []model.Device
	store   Persister
}

// New returns an empty registry backed by store. store may be nil.
func New(store Persister) *Registry {
	return &Registry{devices: []model.Device{}, store: store}
}

// Load replaces the in-memory set with the persisted list.
func (r *Registry) Load() {
	if r.store == nil {
		return
	}
	devices := r.store.LoadDevices()
	r.mu.Lock()
	r.devices = slices.Clone(devices)
	r.mu.Unlock()
}

// Snapshot returns a copy of the current devices.
func (r *Registry) Snapshot() []model.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Addresses returns the current addresses in order.
func (r *Registry) Addresses() []string {
	return model.Addresses(r.Snapshot())
}

// Len returns the number of known devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Contains reports whether addr is known.
func (r *Registry) Contains(addr string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.ContainsFunc(r.devices, func(d model.Device) bool { return d.Address == addr })
}

// Replace swaps the whole set and persists it. Persistence failures are
// logged; the in-memory set is replaced regardless.
func (r *Registry) Replace(devices []model.Device) {
	next := slices.Clone(devices)
	if next == nil {
		next = []model.Device{}
	}
	r.mu.Lock()
	r.devices = next
	r.mu.Unlock()
	r.persist(next)
}

// Clear empties the set and persists an empty list.
func (r *Registry) Clear() {
	r.Replace(nil)
}

func (r *Registry) persist(devices []model.Device) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveDevices(devices); err != nil {
		logging.Errorf("registry: could not save device list: %v", err)
	}
}
