// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package schedule

import (
	"slices"
	"time"

	"github.com/toeirei/boardlock/internal/model"
)

// DayPlan describes a school day: lessons of equal length separated by
// breaks, one of which is the longer lunch break.
type DayPlan struct {
	Start         string // "HH:MM" start of the first lesson
	LessonMinutes int
	BreakMinutes  int
	// LunchAfterLesson is the 1-based lesson after which the lunch break
	// replaces the normal break. Zero or out of range means no lunch.
	LunchAfterLesson int
	LunchMinutes     int
	LessonCount      int
}

// DefaultDayPlan is 8 lessons of 40 minutes from 08:10 with 10 minute
// breaks and a 45 minute lunch after lesson 4.
func DefaultDayPlan() DayPlan {
	return DayPlan{
		Start:            "08:10",
		LessonMinutes:    40,
		BreakMinutes:     10,
		LunchAfterLesson: 4,
		LunchMinutes:     45,
		LessonCount:      8,
	}
}

// GenerateDailySlots turns p into alternating slots: every lesson is an
// unlock slot and every break between two lessons a lock slot. There is
// no break after the last lesson. Adjacent slots share their boundary
// minute, where the earlier slot wins. Times wrap past midnight.
//
// An invalid start, a non-positive lesson count or a negative duration
// yields an empty list.
func GenerateDailySlots(p DayPlan) []model.Slot {
	if !model.ValidClock(p.Start) || p.LessonCount <= 0 ||
		p.LessonMinutes <= 0 || p.BreakMinutes < 0 || p.LunchMinutes < 0 {
		return []model.Slot{}
	}
	cur, err := time.Parse("15:04", p.Start)
	if err != nil {
		return []model.Slot{}
	}

	slots := make([]model.Slot, 0, 2*p.LessonCount-1)
	for i := 1; i <= p.LessonCount; i++ {
		start := model.Clock(cur)
		cur = cur.Add(time.Duration(p.LessonMinutes) * time.Minute)
		slots = append(slots, model.Slot{Start: start, End: model.Clock(cur), Action: model.ActionUnlock})

		if i < p.LessonCount {
			dur := p.BreakMinutes
			if i == p.LunchAfterLesson {
				dur = p.LunchMinutes
			}
			start = model.Clock(cur)
			cur = cur.Add(time.Duration(dur) * time.Minute)
			slots = append(slots, model.Slot{Start: start, End: model.Clock(cur), Action: model.ActionLock})
		}
	}
	return slots
}

// FillWeek returns a schedule in which every day holds its own copy of
// slots.
func FillWeek(slots []model.Slot) model.WeeklySchedule {
	w := model.NewWeeklySchedule()
	for _, d := range model.Weekdays() {
		day := slices.Clone(slots)
		if day == nil {
			day = []model.Slot{}
		}
		w[d] = day
	}
	return w
}
