// Package civiltime translates between absolute times (Instant) and civil
// times (year, month, day, hour, minute, second) using the rules defined
// by a time zone (Zone).
//
//	tz, err := civiltime.LoadTimeZone("UTC+05:30")
//	if err != nil { ... }
//	t := civiltime.MakeTime(2015, 1, 2, 3, 4, 5, tz)
//	bd := civiltime.BreakTime(t, tz)
//	s := civiltime.Format("%Y-%m-%d %H:%M:%S %Ez", t, tz)
//
// The built-in backends cover UTC, fixed offsets and the host-configured
// local zone. Rule-table backends such as the POSIX TZ backend in package
// tzposix register themselves with RegisterLoader and plug in behind the
// same LoadTimeZone entry point.
package civiltime

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ngrash/go-civil/internal/calendar"
	"github.com/ngrash/go-civil/internal/zonecache"
)

// Backend is the capability interface satisfied by every timezone
// implementation: the absolute-to-civil breakdown and the civil-to-absolute
// resolution with its daylight-saving disambiguation. Backends must be
// immutable once constructed; they are shared between all zones loaded
// under the same name for the remainder of the process lifetime.
type Backend interface {
	// BreakTime returns the civil time components of t in the zone.
	BreakTime(t Instant) Breakdown

	// MakeTimeInfo resolves civil time fields to absolute time,
	// normalizing out-of-range fields and exposing skipped or repeated
	// civil times through the returned TimeInfo.
	MakeTimeInfo(year int64, month, day, hour, min, sec int) TimeInfo
}

// Zone is an opaque, small, value-type handle representing a region within
// which particular rules are used for mapping between absolute and civil
// times. Zones are named with TZ identifiers and created by LoadTimeZone
// or the UTCTimeZone/LocalTimeZone conveniences. The zero Zone is
// equivalent to UTC. Two Zones are equal iff they share a backend.
type Zone struct {
	b Backend
}

// NewZone wraps an externally constructed Backend in a Zone. It is the
// seam through which rule-table backends built outside this package (for
// example from an IANA database) enter the API.
func NewZone(b Backend) Zone { return Zone{b: b} }

func (z Zone) backend() Backend {
	if z.b == nil {
		return utcBackend
	}
	return z.b
}

// BreakTime returns the civil time components of t in the given zone.
func BreakTime(t Instant, tz Zone) Breakdown {
	return tz.backend().BreakTime(t)
}

// MakeTime returns the Instant for the given civil time fields in the
// given zone after normalizing the fields. If the civil time is skipped or
// repeated, the as-if rule is followed: the instant according to the
// pre-transition offset is returned.
func MakeTime(year int64, month, day, hour, min, sec int, tz Zone) Instant {
	return MakeTimeInfo(year, month, day, hour, min, sec, tz).Pre
}

// MakeTimeInfo resolves the given civil time fields in the given zone,
// normalizing out-of-range fields. Prefer MakeTime unless the default
// instant it returns is not what you want.
func MakeTimeInfo(year int64, month, day, hour, min, sec int, tz Zone) TimeInfo {
	return tz.backend().MakeTimeInfo(year, month, day, hour, min, sec)
}

// A Loader turns a zone name into a Backend. Loaders registered with
// RegisterLoader are consulted by LoadTimeZone, in registration order,
// for names the built-in fixed-offset and host-local backends do not
// recognize.
type Loader func(name string) (Backend, error)

var (
	loaderMu sync.Mutex
	loaders  []Loader

	zones zonecache.Cache[Zone]
)

// RegisterLoader makes a zone loader available to LoadTimeZone. It is
// typically called from the init function of a backend package.
func RegisterLoader(l Loader) {
	loaderMu.Lock()
	defer loaderMu.Unlock()
	loaders = append(loaders, l)
}

// LoadTimeZone loads the named zone. The initial load of a name may read
// and parse rule data; subsequent loads of the same name share the cached
// backend, and concurrent first loads of one name perform the load only
// once. If the name is invalid or loading fails, the returned Zone is UTC
// and the error is non-nil.
func LoadTimeZone(name string) (Zone, error) {
	z, err := zones.Get(name, func() (Zone, error) { return loadZone(name) })
	if err != nil {
		return UTCTimeZone(), err
	}
	return z, nil
}

func loadZone(name string) (Zone, error) {
	switch name {
	case "", "UTC":
		return UTCTimeZone(), nil
	case "localtime":
		return Zone{b: localBackend{}}, nil
	}
	if off, ok := parseFixedName(name); ok {
		return Zone{b: &fixedBackend{offset: off, abbr: "UTC"}}, nil
	}
	loaderMu.Lock()
	ls := loaders
	loaderMu.Unlock()
	var firstErr error
	for _, l := range ls {
		b, err := l(name)
		if err == nil && b != nil {
			return Zone{b: b}, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return Zone{}, fmt.Errorf("load zone %q: %w", name, firstErr)
	}
	return Zone{}, fmt.Errorf("load zone %q: unknown name", name)
}

// parseFixedName recognizes fixed-offset names of the forms UTC+hh,
// UTC-hh:mm and UTC+hhmm, returning the offset in seconds east.
func parseFixedName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "UTC")
	if !ok || rest == "" {
		return 0, false
	}
	sign := 1
	switch rest[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}
	rest = strings.Replace(rest[1:], ":", "", 1)
	if len(rest) != 1 && len(rest) != 2 && len(rest) != 4 {
		return 0, false
	}
	var hours, minutes int
	for i, c := range rest {
		if c < '0' || c > '9' {
			return 0, false
		}
		if i < len(rest)-2 || len(rest) <= 2 {
			hours = hours*10 + int(c-'0')
		} else {
			minutes = minutes*10 + int(c-'0')
		}
	}
	if hours > 23 || minutes > 59 {
		return 0, false
	}
	return sign * (hours*3600 + minutes*60), true
}

// UTCTimeZone returns the UTC time zone.
func UTCTimeZone() Zone { return Zone{b: utcBackend} }

// LocalTimeZone returns the host-configured local time zone.
func LocalTimeZone() Zone { return Zone{b: localBackend{}} }

var utcBackend = &fixedBackend{offset: 0, abbr: "UTC"}

// fixedBackend is a zone with a constant offset from UTC and no
// daylight-saving transitions. All civil times in it are unique.
type fixedBackend struct {
	offset int
	abbr   string
}

func floorDiv(x, y int64) int64 {
	q := x / y
	if x%y < 0 {
		q--
	}
	return q
}

func (b *fixedBackend) BreakTime(t Instant) Breakdown {
	// The Instant representation keeps the sub-second remainder
	// non-negative, so no borrow correction is needed here.
	lt := t.UnixSeconds() + int64(b.offset)
	days := floorDiv(lt, 86400)
	rem := lt - days*86400
	year, month, day := calendar.CivilFromDays(days)
	return Breakdown{
		Year:      year,
		Month:     month,
		Day:       day,
		Hour:      int(rem / 3600),
		Minute:    int(rem / 60 % 60),
		Second:    int(rem % 60),
		Subsecond: t.Subsecond(),
		Weekday:   calendar.Weekday(days),
		YearDay:   calendar.YearDay(year, month, day),
		Offset:    b.offset,
		IsDST:     false,
		Abbr:      b.abbr,
	}
}

func (b *fixedBackend) MakeTimeInfo(year int64, month, day, hour, min, sec int) TimeInfo {
	f := calendar.Fields{Year: year, Month: month, Day: day, Hour: hour, Minute: min, Second: sec}
	normalized := calendar.Normalize(&f)
	t := Unix(calendar.UnixSeconds(f)-int64(b.offset), 0)
	return TimeInfo{Kind: Unique, Pre: t, Trans: t, Post: t, Normalized: normalized}
}

// localBackend delegates civil conversions to the operating system's
// local-time configuration via the standard library. It inherits whatever
// daylight-saving rules the host has but cannot itself classify skipped or
// repeated civil times, so it always reports Unique.
type localBackend struct{}

func (localBackend) BreakTime(t Instant) Breakdown {
	tt := time.Unix(t.UnixSeconds(), 0).In(time.Local)
	abbr, offset := tt.Zone()
	weekday := int(tt.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return Breakdown{
		Year:      int64(tt.Year()),
		Month:     int(tt.Month()),
		Day:       tt.Day(),
		Hour:      tt.Hour(),
		Minute:    tt.Minute(),
		Second:    tt.Second(),
		Subsecond: t.Subsecond(),
		Weekday:   weekday,
		YearDay:   tt.YearDay(),
		Offset:    offset,
		IsDST:     tt.IsDST(),
		Abbr:      abbr,
	}
}

func (localBackend) MakeTimeInfo(year int64, month, day, hour, min, sec int) TimeInfo {
	// The host facility works in platform ints; saturate huge years.
	y := int(year)
	if year > math.MaxInt {
		y = math.MaxInt
	} else if year < math.MinInt {
		y = math.MinInt
	}
	tt := time.Date(y, time.Month(month), day, hour, min, sec, 0, time.Local)
	// No cross-field disambiguation is attempted; normalization is
	// detected by comparing the requested fields with the result.
	normalized := tt.Year() != y || int(tt.Month()) != month || tt.Day() != day ||
		tt.Hour() != hour || tt.Minute() != min || tt.Second() != sec
	t := Unix(tt.Unix(), 0)
	return TimeInfo{Kind: Unique, Pre: t, Trans: t, Post: t, Normalized: normalized}
}
