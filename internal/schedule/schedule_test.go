// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/model"
)

type recordingFirer struct {
	mu    sync.Mutex
	fired []model.ActionKind
}

func (r *recordingFirer) Fire(_ context.Context, a model.ActionKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, a)
}

func (r *recordingFirer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

// monday returns 2026-10-12 (a Monday) at hh:mm local time.
func monday(hh, mm int) time.Time {
	return time.Date(2026, 10, 12, hh, mm, 0, 0, time.Local)
}

func TestGenerateDailySlots_DefaultPlan(t *testing.T) {
	slots := GenerateDailySlots(DefaultDayPlan())
	require.Len(t, slots, 15)

	var unlocks, locks []model.Slot
	for i, s := range slots {
		if i%2 == 0 {
			require.Equal(t, model.ActionUnlock, s.Action, "slot %d", i)
			unlocks = append(unlocks, s)
		} else {
			require.Equal(t, model.ActionLock, s.Action, "slot %d", i)
			locks = append(locks, s)
		}
	}
	require.Len(t, unlocks, 8)
	require.Len(t, locks, 7)

	minutes := func(s model.Slot) int {
		a, _ := time.Parse("15:04", s.Start)
		b, _ := time.Parse("15:04", s.End)
		return int(b.Sub(a).Minutes())
	}
	for _, s := range unlocks {
		assert.Equal(t, 40, minutes(s), "lesson %s", s)
	}
	for i, s := range locks {
		want := 10
		if i == 3 {
			want = 45
		}
		assert.Equal(t, want, minutes(s), "break %d %s", i+1, s)
	}

	assert.Equal(t, model.Slot{Start: "08:10", End: "08:50", Action: model.ActionUnlock}, slots[0])
	assert.Equal(t, model.Slot{Start: "11:20", End: "12:05", Action: model.ActionLock}, slots[7])
	assert.Equal(t, "15:15", slots[14].End, "no trailing break after the last lesson")
	assert.Equal(t, model.ActionUnlock, slots[len(slots)-1].Action)
}

func TestGenerateDailySlots_Edges(t *testing.T) {
	p := DefaultDayPlan()
	p.Start = "8:10"
	assert.Empty(t, GenerateDailySlots(p))

	p = DefaultDayPlan()
	p.LessonCount = 0
	assert.Empty(t, GenerateDailySlots(p))

	p = DefaultDayPlan()
	p.LessonCount = 1
	assert.Equal(t, []model.Slot{{Start: "08:10", End: "08:50", Action: model.ActionUnlock}}, GenerateDailySlots(p))

	p = DefaultDayPlan()
	p.Start = "23:30"
	p.LessonCount = 2
	slots := GenerateDailySlots(p)
	require.Len(t, slots, 3)
	assert.Equal(t, "00:10", slots[0].End, "times wrap at midnight")

	p = DefaultDayPlan()
	p.LunchAfterLesson = 0
	for _, s := range GenerateDailySlots(p) {
		if s.Action == model.ActionLock {
			assert.Equal(t, model.Clock(mustClock(t, s.Start).Add(10*time.Minute)), s.End, "break %s", s)
		}
	}
}

func mustClock(t *testing.T, s string) time.Time {
	t.Helper()
	c, err := time.Parse("15:04", s)
	require.NoError(t, err)
	return c
}

func TestCopyToAllDays_IndependentCopies(t *testing.T) {
	e := NewEngine(nil, nil)
	src := GenerateDailySlots(DefaultDayPlan())
	e.CopyToAllDays(src)

	week := e.Snapshot()
	require.Len(t, week, 7)
	for _, d := range model.Weekdays() {
		assert.Equal(t, src, week[d], "day %s", d)
	}

	src[0].Action = model.ActionLock
	assert.Equal(t, model.ActionUnlock, e.Day(model.Monday)[0].Action, "source mutation leaked")

	mon := e.Day(model.Monday)
	mon[0].End = "23:59"
	e.SetDay(model.Monday, mon)
	assert.Equal(t, "08:50", e.Day(model.Tuesday)[0].End, "days must not share storage")
}

func TestTick_FirstMatchInclusive(t *testing.T) {
	f := &recordingFirer{}
	obs := events.NewChannel(8)
	e := NewEngine(f, obs)
	e.SetDay(model.Monday, []model.Slot{
		{Start: "08:10", End: "08:50", Action: model.ActionUnlock},
		{Start: "08:50", End: "09:00", Action: model.ActionLock},
		{Start: "08:00", End: "09:30", Action: model.ActionLock},
	})

	slot, ok := e.Tick(context.Background(), monday(8, 10))
	require.True(t, ok)
	assert.Equal(t, model.ActionUnlock, slot.Action)

	// The shared boundary minute goes to the earlier slot.
	slot, ok = e.Tick(context.Background(), monday(8, 50))
	require.True(t, ok)
	assert.Equal(t, "08:10", slot.Start)

	slot, ok = e.Tick(context.Background(), monday(8, 51))
	require.True(t, ok)
	assert.Equal(t, "08:50", slot.Start)

	_, ok = e.Tick(context.Background(), monday(9, 31))
	assert.False(t, ok)

	// Tuesday is empty.
	_, ok = e.Tick(context.Background(), monday(8, 30).AddDate(0, 0, 1))
	assert.False(t, ok)

	assert.Equal(t, []model.ActionKind{model.ActionUnlock, model.ActionUnlock, model.ActionLock}, f.fired)
	require.Len(t, obs.C, 3)
	ev := <-obs.C
	assert.Equal(t, events.KindTickFired, ev.Kind)
}

func TestTick_MalformedSlotNeverFires(t *testing.T) {
	f := &recordingFirer{}
	e := NewEngine(f, nil)
	e.SetDay(model.Monday, []model.Slot{
		{Start: "8:00", End: "09:00", Action: model.ActionLock},
		{Start: "08:00", End: "09:00"},
	})
	_, ok := e.Tick(context.Background(), monday(8, 30))
	assert.False(t, ok)
	assert.Zero(t, f.count())
}

func TestRun_TicksImmediatelyAndRepeats(t *testing.T) {
	f := &recordingFirer{}
	e := NewEngine(f, nil)
	e.SetClock(func() time.Time { return monday(10, 0) })
	e.SetDay(model.Monday, []model.Slot{{Start: "09:00", End: "11:00", Action: model.ActionLock}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return f.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestReplaceNormalizesAndConcurrentEdits(t *testing.T) {
	e := NewEngine(nil, nil)
	e.Replace(model.WeeklySchedule{"Cuma": {{Start: "12:00", End: "12:45", Action: model.ActionLock}}})
	require.Len(t, e.Day(model.Friday), 1)
	assert.Empty(t, e.Day(model.Monday))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e.CopyToAllDays(GenerateDailySlots(DefaultDayPlan()))
		}()
		go func() {
			defer wg.Done()
			e.ActiveSlot(monday(9, 0))
		}()
	}
	wg.Wait()

	e.ClearDay(model.Sunday)
	assert.Empty(t, e.Day(model.Sunday))
	assert.Len(t, e.Day(model.Saturday), 15)
}
