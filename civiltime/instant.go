package civiltime

import "time"

// Instant is an absolute point in time, independent of any zone, with
// nanosecond resolution. It is stored as a whole-second count since the
// Unix epoch plus a non-negative sub-second remainder, which extends the
// representable range far beyond the ±292 years of a single 64-bit
// nanosecond counter. The zero Instant is the Unix epoch.
//
// Instant is an immutable value type and is totally ordered.
type Instant struct {
	sec  int64 // seconds since 1970-01-01T00:00:00Z
	nsec int32 // [0, 1e9)
}

// Unix returns the Instant for the given seconds and nanoseconds since the
// Unix epoch. nsec may be outside [0, 999999999]; it is folded into range.
func Unix(sec, nsec int64) Instant {
	if nsec < 0 || nsec >= 1e9 {
		sec += nsec / 1e9
		nsec %= 1e9
		if nsec < 0 {
			nsec += 1e9
			sec--
		}
	}
	return Instant{sec: sec, nsec: int32(nsec)}
}

// FromTime converts a time.Time to an Instant.
func FromTime(t time.Time) Instant {
	return Unix(t.Unix(), int64(t.Nanosecond()))
}

// UnixSeconds returns the whole seconds since the Unix epoch, rounding
// toward negative infinity.
func (t Instant) UnixSeconds() int64 { return t.sec }

// Subsecond returns the sub-second remainder, in [0s, 1s).
func (t Instant) Subsecond() time.Duration { return time.Duration(t.nsec) }

// unixTrunc returns the whole seconds since the Unix epoch, rounding
// toward zero. %s formatting uses this; everything else floors.
func (t Instant) unixTrunc() int64 {
	if t.sec < 0 && t.nsec > 0 {
		return t.sec + 1
	}
	return t.sec
}

// AddSeconds returns t shifted by the given number of whole seconds.
func (t Instant) AddSeconds(sec int64) Instant {
	return Instant{sec: t.sec + sec, nsec: t.nsec}
}

// Add returns t shifted by d.
func (t Instant) Add(d time.Duration) Instant {
	return Unix(t.sec+int64(d/time.Second), int64(t.nsec)+int64(d%time.Second))
}

// Before reports whether t is before u.
func (t Instant) Before(u Instant) bool {
	return t.sec < u.sec || (t.sec == u.sec && t.nsec < u.nsec)
}

// After reports whether t is after u.
func (t Instant) After(u Instant) bool { return u.Before(t) }

// Equal reports whether t and u are the same instant.
func (t Instant) Equal(u Instant) bool { return t == u }

// Compare returns -1, 0 or +1 depending on whether t is before, equal to
// or after u.
func (t Instant) Compare(u Instant) int {
	switch {
	case t.Before(u):
		return -1
	case t.After(u):
		return +1
	}
	return 0
}
