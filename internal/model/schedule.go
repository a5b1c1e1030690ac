// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrInvalidWeekday is returned by ParseWeekday for unknown day names.
var ErrInvalidWeekday = errors.New("invalid weekday")

// Weekday is one of the seven fixed schedule keys, Monday through Sunday.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

var weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// legacyWeekdays maps the day keys written by the original panel.
var legacyWeekdays = map[string]Weekday{
	"pazartesi": Monday,
	"salı":      Tuesday,
	"sali":      Tuesday,
	"çarşamba":  Wednesday,
	"carsamba":  Wednesday,
	"perşembe":  Thursday,
	"persembe":  Thursday,
	"cuma":      Friday,
	"cumartesi": Saturday,
	"pazar":     Sunday,
}

// Weekdays returns the schedule keys in Monday-first order.
func Weekdays() []Weekday {
	return slices.Clone(weekdays)
}

// WeekdayOf returns the schedule key for t's day of the week.
func WeekdayOf(t time.Time) Weekday {
	// time.Weekday starts the week on Sunday.
	return weekdays[(int(t.Weekday())+6)%7]
}

// ParseWeekday accepts English day names in any case and the legacy
// Turkish keys.
func ParseWeekday(s string) (Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, d := range weekdays {
		if strings.ToLower(string(d)) == key {
			return d, nil
		}
	}
	if d, ok := legacyWeekdays[key]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// Slot is one time window of a day and the action applied while it is active.
// Times are zero-padded 24h "HH:MM" values.
type Slot struct {
	Start  string
	End    string
	Action ActionKind
}

type slotJSON struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Action string `json:"action"`
}

// MarshalJSON writes {"start","end","action"}.
func (s Slot) MarshalJSON() ([]byte, error) {
	action := ""
	if s.Action.Valid() {
		action = s.Action.String()
	}
	return json.Marshal(slotJSON{Start: s.Start, End: s.End, Action: action})
}

// UnmarshalJSON reads a slot. An unknown action leaves Action zero so the
// slot never fires instead of failing the whole schedule.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw slotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Start, s.End = raw.Start, raw.End
	s.Action, _ = ParseAction(raw.Action)
	return nil
}

// Valid reports whether both bounds are well-formed and the action is known.
func (s Slot) Valid() bool {
	return ValidClock(s.Start) && ValidClock(s.End) && s.Action.Valid()
}

// Contains reports whether hhmm lies in [Start, End], both ends inclusive.
// Zero-padded 24h strings sort like the times they denote.
func (s Slot) Contains(hhmm string) bool {
	if !s.Valid() || !ValidClock(hhmm) {
		return false
	}
	return s.Start <= hhmm && hhmm <= s.End
}

// String renders the slot as "08:10-08:50 unlock".
func (s Slot) String() string {
	return fmt.Sprintf("%s-%s %s", s.Start, s.End, s.Action)
}

// ValidClock reports whether s is a zero-padded "HH:MM" wall-clock time.
func ValidClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h < 24 && m < 60
}

// Clock formats t as "HH:MM".
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// WeeklySchedule maps each weekday to its ordered slot list.
type WeeklySchedule map[Weekday][]Slot

// NewWeeklySchedule returns a schedule with all seven days present and empty.
func NewWeeklySchedule() WeeklySchedule {
	w := make(WeeklySchedule, len(weekdays))
	for _, d := range weekdays {
		w[d] = []Slot{}
	}
	return w
}

// Normalize returns a copy keyed by the canonical day names. Legacy keys
// are folded in (a non-empty canonical entry wins), unknown keys are dropped
// and missing days become empty.
func (w WeeklySchedule) Normalize() WeeklySchedule {
	out := NewWeeklySchedule()
	for k, slots := range w {
		d, err := ParseWeekday(string(k))
		if err != nil || d == k || len(slots) == 0 {
			continue
		}
		out[d] = slices.Clone(slots)
	}
	for _, d := range weekdays {
		if slots, ok := w[d]; ok && len(slots) > 0 {
			out[d] = slices.Clone(slots)
		}
	}
	return out
}

// Clone returns a deep copy.
func (w WeeklySchedule) Clone() WeeklySchedule {
	out := make(WeeklySchedule, len(w))
	for k, v := range w {
		out[k] = slices.Clone(v)
		if out[k] == nil {
			out[k] = []Slot{}
		}
	}
	return out
}

// Equal reports whether both schedules hold the same slots per day.
func (w WeeklySchedule) Equal(o WeeklySchedule) bool {
	for _, d := range weekdays {
		if !slices.Equal(w[d], o[d]) {
			return false
		}
	}
	return true
}
