package visit

import "time"

// DateOnly truncates t to its calendar date in UTC. All "same day" and
// "before today" comparisons in the clinic go through this one function so
// every caller agrees on where midnight is.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// EffectiveStatus derives the status a visit should present as of now.
// Inputs are never mutated and the result is never written back.
//
// Precedence: a cancelled visit stays cancelled; an attached diagnosis means
// the visit is done; a visit whose day has passed without a diagnosis still
// needs one, even if someone marked it Completed by hand; anything else keeps
// its stored status.
func EffectiveStatus(stored Status, date time.Time, hasDiagnosis bool, now time.Time) Status {
	if stored == StatusCancelled {
		return StatusCancelled
	}
	if hasDiagnosis {
		return StatusCompleted
	}
	if DateOnly(date).Before(DateOnly(now)) &&
		(stored == StatusScheduled || stored == StatusCompleted) {
		return StatusNeedsDiagnosis
	}
	return stored
}
