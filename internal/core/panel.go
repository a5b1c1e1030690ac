// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core wires operator requests and schedule ticks to the scanner
// and the dispatcher. UIs (CLI, TUI, headless service) talk to a Panel and
// subscribe to its events; they never reach the network themselves.
package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/toeirei/boardlock/internal/dispatch"
	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/model"
	"github.com/toeirei/boardlock/internal/registry"
	"github.com/toeirei/boardlock/internal/scan"
	"github.com/toeirei/boardlock/internal/schedule"
	"github.com/toeirei/boardlock/internal/state"
	"github.com/toeirei/boardlock/internal/store"
)

// Options configures a Panel.
type Options struct {
	Store    store.Store
	Scan     scan.Config
	Dispatch dispatch.ConnectionConfig
	// Commands overrides the dispatch command table; nil uses the defaults.
	Commands map[model.ActionKind]string
}

// Panel owns the process-wide state: settings, known boards and the
// weekly schedule.
type Panel struct {
	store      store.Store
	settings   *state.SettingsBox
	registry   *registry.Registry
	engine     *schedule.Engine
	scanner    *scan.Scanner
	dispatcher *dispatch.Dispatcher
	hub        *events.Hub

	wg sync.WaitGroup
}

// New builds a Panel. Call Load to read the persisted state.
func New(opts Options) *Panel {
	p := &Panel{
		store:      opts.Store,
		settings:   state.NewSettingsBox(model.DefaultSettings()),
		scanner:    scan.New(opts.Scan),
		dispatcher: dispatch.New(opts.Dispatch, opts.Commands),
		hub:        events.NewHub(),
	}
	var persister registry.Persister
	if opts.Store != nil {
		persister = opts.Store
	}
	p.registry = registry.New(persister)
	p.engine = schedule.NewEngine(p, p.hub)
	return p
}

// Load reads settings, devices and schedule from the store.
func (p *Panel) Load() {
	if p.store == nil {
		return
	}
	p.settings.Set(p.store.LoadSettings())
	p.registry.Load()
	p.engine.Replace(p.store.LoadSchedule())
	logging.Debugf("core: loaded %d devices, range %s", p.registry.Len(), p.settings.IPRange())
}

// Subscribe registers o for every scan, dispatch and tick event.
func (p *Panel) Subscribe(o events.Observer) (unsubscribe func()) {
	return p.hub.Subscribe(o)
}

// Scanner exposes the scanner, mainly to swap the prober in tests.
func (p *Panel) Scanner() *scan.Scanner { return p.scanner }

// Schedule returns the schedule engine.
func (p *Panel) Schedule() *schedule.Engine { return p.engine }

// Devices returns the boards of the last completed scan.
func (p *Panel) Devices() []model.Device { return p.registry.Snapshot() }

// Settings returns the current operator settings.
func (p *Panel) Settings() model.Settings { return p.settings.Get() }

// Scan probes the configured range and, unless a newer scan supersedes
// it, replaces and persists the device list.
func (p *Panel) Scan(ctx context.Context) scan.Result {
	return p.scanner.Scan(ctx, p.settings.IPRange(), p.hub, p.registry.Replace)
}

// StartScan runs Scan in the background.
func (p *Panel) StartScan(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Scan(ctx)
	}()
}

// CancelScan abandons the scan in flight without committing it.
func (p *Panel) CancelScan() { p.scanner.Cancel() }

// Apply sends action to the boards at addrs. Invalid addresses are
// skipped. The credentials are read once when the batch starts.
func (p *Panel) Apply(ctx context.Context, action model.ActionKind, addrs []string) dispatch.BatchResult {
	devices := make([]model.Device, 0, len(addrs))
	seen := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		if !model.ValidAddress(a) {
			logging.Warnf("core: skipping invalid address %q", a)
			continue
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		if !p.registry.Contains(a) {
			logging.Debugf("core: %s is not in the device list", a)
		}
		devices = append(devices, model.Device{Address: a})
	}
	return p.dispatcher.ExecuteMany(ctx, devices, p.settings.Credentials(), action, p.hub)
}

// Lock locks the boards at addrs.
func (p *Panel) Lock(ctx context.Context, addrs []string) dispatch.BatchResult {
	return p.Apply(ctx, model.ActionLock, addrs)
}

// Unlock unlocks the boards at addrs.
func (p *Panel) Unlock(ctx context.Context, addrs []string) dispatch.BatchResult {
	return p.Apply(ctx, model.ActionUnlock, addrs)
}

// ApplyAll sends action to every known board.
func (p *Panel) ApplyAll(ctx context.Context, action model.ActionKind) dispatch.BatchResult {
	return p.dispatcher.ExecuteMany(ctx, p.registry.Snapshot(), p.settings.Credentials(), action, p.hub)
}

// Fire runs ApplyAll in the background. It is the schedule's Firer, so a
// tick never waits for the boards and may overlap manual work.
func (p *Panel) Fire(ctx context.Context, action model.ActionKind) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.ApplyAll(context.WithoutCancel(ctx), action)
	}()
}

// Tick evaluates the schedule once at now.
func (p *Panel) Tick(ctx context.Context, now time.Time) (model.Slot, bool) {
	return p.engine.Tick(ctx, now)
}

// ActiveSlot returns the slot active at now without firing it.
func (p *Panel) ActiveSlot(now time.Time) (model.Slot, bool) {
	return p.engine.ActiveSlot(now)
}

// RunSchedule ticks every interval until ctx is done.
func (p *Panel) RunSchedule(ctx context.Context, interval time.Duration) {
	p.engine.Run(ctx, interval)
}

// ClearDevices forgets every board and persists the empty list.
func (p *Panel) ClearDevices() { p.registry.Clear() }

// UpdateSettings replaces and persists the operator settings. The new
// values apply to scans and batches started afterwards.
func (p *Panel) UpdateSettings(s model.Settings) error {
	p.settings.Set(s)
	if p.store == nil {
		return nil
	}
	return p.store.SaveSettings(s)
}

// SaveSchedule persists the current schedule.
func (p *Panel) SaveSchedule() error {
	if p.store == nil {
		return nil
	}
	return p.store.SaveSchedule(p.engine.Snapshot())
}

// Restore replaces settings, devices and schedule at once and persists
// all three.
func (p *Panel) Restore(s model.Settings, devices []model.Device, week model.WeeklySchedule) error {
	p.engine.Replace(week)
	p.registry.Replace(devices)
	return errors.Join(p.UpdateSettings(s), p.SaveSchedule())
}

// Wait blocks until background scans and firings have finished.
func (p *Panel) Wait() { p.wg.Wait() }

// Close waits for background work, drops the in-memory password and
// closes the store.
func (p *Panel) Close() error {
	p.scanner.Cancel()
	p.Wait()
	p.settings.Clear()
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}
