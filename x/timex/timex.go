package timex

import "time"

// Every gates a periodic action on a caller-supplied clock. The first call to
// Due always fires. A zero Period never fires.
type Every struct {
	Period time.Duration
	last   time.Time
}

// Due reports whether more than Period has elapsed since the last firing and,
// if so, re-arms from now.
func (e *Every) Due(now time.Time) bool {
	if e.Period <= 0 {
		return false
	}
	if !e.last.IsZero() && now.Sub(e.last) <= e.Period {
		return false
	}
	e.last = now
	return true
}
