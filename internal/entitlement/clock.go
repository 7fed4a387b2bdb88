// Package entitlement implements the free-booster schedule: a fixed list of
// daily time slots, with one collection allowed per elapsed slot.
package entitlement

import "time"

// TimeOfDay is a wall-clock slot within any day, interpreted in the location
// of the `now` passed to CheckAvailability.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// DefaultSchedule grants a free booster at 04:00, 12:00 and 20:00 local time.
var DefaultSchedule = []TimeOfDay{{4, 0}, {12, 0}, {20, 0}}

// Availability reports whether a collect is allowed now and when the next
// slot opens.
type Availability struct {
	CanCollect bool      `json:"canCollect"`
	NextTime   time.Time `json:"nextTime"`
}

// at anchors a time-of-day slot onto the calendar day of ref.
func (s TimeOfDay) at(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), s.Hour, s.Minute, 0, 0, ref.Location())
}

// CheckAvailability scans the schedule around now. The next slot is the
// earliest one strictly after now, wrapping to the first slot tomorrow.
// Eligibility compares lastCollected against the latest slot at or before
// now: a slot boundary counts as passed, and a nil lastCollected is always
// eligible. Users become eligible once per slot, not once per fixed
// duration. Pure and idempotent; schedule must be non-empty and ordered.
func CheckAvailability(lastCollected *time.Time, now time.Time, schedule []TimeOfDay) Availability {
	var next, last time.Time

	for _, slot := range schedule {
		t := slot.at(now)
		if t.After(now) {
			if next.IsZero() {
				next = t
			}
		} else {
			// Boundary counts as passed.
			last = t
		}
	}
	if next.IsZero() {
		// All of today's slots have passed; wrap to tomorrow's first slot.
		next = schedule[0].at(now.AddDate(0, 0, 1))
	}
	if last.IsZero() {
		// No slot has passed yet today; the most recent one was yesterday's
		// final slot.
		last = schedule[len(schedule)-1].at(now.AddDate(0, 0, -1))
	}

	canCollect := lastCollected == nil || lastCollected.Before(last)
	return Availability{CanCollect: canCollect, NextTime: next}
}
