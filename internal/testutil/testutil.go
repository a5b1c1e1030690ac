// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds small fakes shared by package tests.
package testutil

import (
	"slices"
	"sync"

	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/model"
)

// Recorder is an events.Observer that keeps every event it sees.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

// Notify records e.
func (r *Recorder) Notify(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Kinds returns the kinds of the recorded events in arrival order.
func (r *Recorder) Kinds() []events.Kind {
	evs := r.Events()
	out := make([]events.Kind, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Kind)
	}
	return out
}

// Of returns the recorded events of kind k.
func (r *Recorder) Of(k events.Kind) []events.Event {
	var out []events.Event
	for _, e := range r.Events() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// MemoryStore keeps the three documents in memory. It satisfies
// store.Store. SaveErr, when set, is returned by every save.
type MemoryStore struct {
	mu       sync.Mutex
	devices  []model.Device
	schedule model.WeeklySchedule
	settings *model.Settings
	SaveErr  error
	Saves    int
	Closed   bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{devices: []model.Device{}, schedule: model.NewWeeklySchedule()}
}

func (m *MemoryStore) LoadDevices() []model.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.devices)
}

func (m *MemoryStore) SaveDevices(devices []model.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.devices = slices.Clone(devices)
	return nil
}

func (m *MemoryStore) LoadSchedule() model.WeeklySchedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedule.Clone()
}

func (m *MemoryStore) SaveSchedule(w model.WeeklySchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.schedule = w.Clone()
	return nil
}

func (m *MemoryStore) LoadSettings() model.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return model.DefaultSettings()
	}
	return *m.settings
}

func (m *MemoryStore) SaveSettings(s model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.settings = &s
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
