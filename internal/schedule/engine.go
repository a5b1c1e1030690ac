// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package schedule owns the weekly bell schedule and applies the action of
// the active slot on every tick.
package schedule

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/model"
)

// DefaultInterval is how often Run evaluates the schedule.
const DefaultInterval = 30 * time.Second

// Firer applies an action to every known board.
type Firer interface {
	Fire(ctx context.Context, action model.ActionKind)
}

// FirerFunc adapts a function to Firer.
type FirerFunc func(ctx context.Context, action model.ActionKind)

func (f FirerFunc) Fire(ctx context.Context, action model.ActionKind) { f(ctx, action) }

// Engine holds the weekly schedule. It is safe for concurrent use: ticks
// read the schedule while the operator edits it.
type Engine struct {
	mu    sync.RWMutex
	week  model.WeeklySchedule
	firer Firer
	obs   events.Observer
	now   func() time.Time
}

// NewEngine returns an engine with an empty week that fires through firer.
func NewEngine(firer Firer, obs events.Observer) *Engine {
	return &Engine{
		week:  model.NewWeeklySchedule(),
		firer: firer,
		obs:   events.OrDiscard(obs),
		now:   time.Now,
	}
}

// SetClock replaces the time source used by Run.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// ActiveSlot returns the first slot of now's weekday containing now's
// "HH:MM", without firing it.
func (e *Engine) ActiveSlot(now time.Time) (model.Slot, bool) {
	day, clock := model.WeekdayOf(now), model.Clock(now)
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, s := range e.week[day] {
		if s.Contains(clock) {
			return s, true
		}
	}
	return model.Slot{}, false
}

// Tick fires the action of the active slot, if any. At most one slot
// fires per tick. Firing again on the next tick inside the same slot is
// expected and keeps boards that missed a command in line.
func (e *Engine) Tick(ctx context.Context, now time.Time) (model.Slot, bool) {
	slot, ok := e.ActiveSlot(now)
	if !ok {
		return model.Slot{}, false
	}
	logging.Debugf("schedule: %s %s matches %s", model.WeekdayOf(now), model.Clock(now), slot)
	e.obs.Notify(events.Event{Kind: events.KindTickFired, Time: now, Action: slot.Action})
	if e.firer != nil {
		e.firer.Fire(ctx, slot.Action)
	}
	return slot, true
}

// Run ticks immediately and then every interval until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		e.mu.RLock()
		now := e.now
		e.mu.RUnlock()
		e.Tick(ctx, now())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Day returns a copy of day's slots.
func (e *Engine) Day(day model.Weekday) []model.Slot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := slices.Clone(e.week[day])
	if out == nil {
		out = []model.Slot{}
	}
	return out
}

// SetDay replaces day's slots with a copy of slots.
func (e *Engine) SetDay(day model.Weekday, slots []model.Slot) {
	c := slices.Clone(slots)
	if c == nil {
		c = []model.Slot{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.week[day] = c
}

// ClearDay empties day.
func (e *Engine) ClearDay(day model.Weekday) {
	e.SetDay(day, nil)
}

// CopyToAllDays replaces every day's list with its own copy of slots.
func (e *Engine) CopyToAllDays(slots []model.Slot) {
	w := FillWeek(slots)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.week = w
}

// Snapshot returns a deep copy of the whole week.
func (e *Engine) Snapshot() model.WeeklySchedule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.week.Clone()
}

// Replace installs w, normalized to the seven weekday keys.
func (e *Engine) Replace(w model.WeeklySchedule) {
	n := w.Normalize()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.week = n
}
