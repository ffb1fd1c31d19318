package flowmix

import "time"

// callRecord tracks successive calls into the same producer, sink or
// receiver so a combinator can report delayMs: the wall-clock milliseconds
// between one call starting and the next. There is no previous call at
// index 0, so delay reports 0 for the first call of any callRecord — the
// index itself is what disambiguates "no previous call" from "an
// immediate successor call" for a caller inspecting delayMs.
type callRecord struct {
	startedAt time.Time
	hasPrior  bool
}

// delay records now as the call currently starting and returns the
// milliseconds elapsed since the previous call recorded by r, or 0 if
// there was none.
func (r *callRecord) delay(now time.Time) int64 {
	var ms int64
	if r.hasPrior {
		ms = now.Sub(r.startedAt).Milliseconds()
	}
	r.startedAt = now
	r.hasPrior = true
	return ms
}
