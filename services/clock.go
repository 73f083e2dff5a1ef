package services

import "time"

// Clock supplies timestamps. Stored times are UTC at millisecond
// precision, the finest resolution every backend keeps.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// after returns now, or prev+1ms when the clock has not moved past prev.
func after(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Millisecond)
}
