// Package tzposix implements timezone backends described by POSIX TZ
// strings such as "PST8PDT,M3.2.0,M11.1.0", as specified in Section 8.3
// of the "Base Definitions" volume of POSIX and extended by RFC 8536
// Section 3.3.1 (quoted designations, extended transition hours).
//
// A backend built from a TZ string carries a full transition table for
// any year, so unlike the fixed-offset and host-local backends it can
// classify civil times as skipped or repeated across daylight-saving
// transitions. Importing the package registers it as a zone loader:
//
//	import _ "github.com/ngrash/go-civil/tzposix"
//
//	tz, err := civiltime.LoadTimeZone("PST8PDT,M3.2.0,M11.1.0")
package tzposix

import (
	"fmt"
	"strings"

	"github.com/ngrash/go-civil/civiltime"
)

func init() {
	civiltime.RegisterLoader(Load)
}

// Load parses name as a POSIX TZ string and returns a backend for it.
// It is registered with civiltime as a zone loader.
func Load(name string) (civiltime.Backend, error) {
	r, err := Parse(name)
	if err != nil {
		return nil, err
	}
	return NewBackend(r), nil
}

// DateForm discriminates the three POSIX transition date forms.
type DateForm int

const (
	// DateFormJulian is "Jn": the n-th day of the year [1:365], never
	// counting February 29.
	DateFormJulian DateForm = iota
	// DateFormZero is "n": the zero-based day of the year [0:365],
	// counting February 29 in leap years.
	DateFormZero
	// DateFormMonthWeekDay is "Mm.w.d": day d (0=Sunday) of week w
	// [1:5] of month m, where week 5 means the last.
	DateFormMonthWeekDay
)

// TransitionDate is a yearly recurring calendar date at which a zone
// changes offset.
type TransitionDate struct {
	Form   DateForm
	Julian int // Jn and n forms
	Month  int // Mm.w.d form, [1:12]
	Week   int // Mm.w.d form, [1:5]
	Day    int // Mm.w.d form, 0=Sunday .. 6=Saturday
}

// defaultTransitionTime is 02:00:00 local, the POSIX default for a
// transition rule without a /time part.
const defaultTransitionTime = 2 * 60 * 60

// Rule is a parsed POSIX TZ string: a standard time designation and
// offset, optionally a daylight-saving designation, offset and the pair
// of yearly transition rules.
type Rule struct {
	StdAbbr   string
	StdOffset int // seconds east of UTC

	DST       bool
	DstAbbr   string
	DstOffset int // seconds east of UTC

	Start     TransitionDate // transition to daylight-saving time
	StartTime int            // seconds after local midnight
	End       TransitionDate // transition back to standard time
	EndTime   int            // seconds after local midnight
}

// Parse parses a POSIX TZ string.
func Parse(tz string) (Rule, error) {
	var r Rule
	s := tz

	var err error
	if r.StdAbbr, s, err = parseAbbr(s); err != nil {
		return Rule{}, fmt.Errorf("parse TZ %q: std designation: %w", tz, err)
	}
	var off int
	var ok bool
	if off, s, ok = parseOffset(s); !ok {
		return Rule{}, fmt.Errorf("parse TZ %q: std offset missing", tz)
	}
	// A POSIX offset is the value added to local time to get UTC, so
	// it is positive west of Greenwich. Seconds east negates it.
	r.StdOffset = -off

	if s == "" {
		return r, nil
	}

	if s[0] != ',' {
		r.DST = true
		if r.DstAbbr, s, err = parseAbbr(s); err != nil {
			return Rule{}, fmt.Errorf("parse TZ %q: dst designation: %w", tz, err)
		}
		if off, s, ok = parseOffset(s); ok {
			r.DstOffset = -off
		} else {
			// Daylight-saving time defaults to one hour ahead
			// of standard time.
			r.DstOffset = r.StdOffset + 60*60
		}
	}

	if s == "" {
		if r.DST {
			// No explicit rules: fall back to the common US
			// defaults, second Sunday in March through first
			// Sunday in November.
			r.Start = TransitionDate{Form: DateFormMonthWeekDay, Month: 3, Week: 2, Day: 0}
			r.StartTime = defaultTransitionTime
			r.End = TransitionDate{Form: DateFormMonthWeekDay, Month: 11, Week: 1, Day: 0}
			r.EndTime = defaultTransitionTime
		}
		return r, nil
	}
	if !r.DST {
		return Rule{}, fmt.Errorf("parse TZ %q: transition rules without dst designation", tz)
	}

	if r.Start, r.StartTime, s, err = parseRule(s); err != nil {
		return Rule{}, fmt.Errorf("parse TZ %q: start rule: %w", tz, err)
	}
	if r.End, r.EndTime, s, err = parseRule(s); err != nil {
		return Rule{}, fmt.Errorf("parse TZ %q: end rule: %w", tz, err)
	}
	if s != "" {
		return Rule{}, fmt.Errorf("parse TZ %q: trailing data %q", tz, s)
	}
	return r, nil
}

// parseAbbr parses a zone designation: either a run of at least three
// alphabetic characters, or, per RFC 8536, an arbitrary run of characters
// other than '>' enclosed in angle brackets.
func parseAbbr(s string) (string, string, error) {
	if strings.HasPrefix(s, "<") {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return "", s, fmt.Errorf("unterminated quoted designation")
		}
		return s[1:end], s[end+1:], nil
	}
	i := 0
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	if i < 3 {
		return "", s, fmt.Errorf("designation shorter than three characters")
	}
	return s[:i], s[i:], nil
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseOffset parses [+-]hh[:mm[:ss]] and returns the value in seconds.
// RFC 8536 widens the hour range to [-167:167] for rule times; the same
// scanner serves both uses.
func parseOffset(s string) (int, string, bool) {
	sign := 1
	rest := s
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		if rest[0] == '-' {
			sign = -1
		}
		rest = rest[1:]
	}
	var hours int
	var ok bool
	if hours, rest, ok = parseDecimal(rest, 3, 167); !ok {
		return 0, s, false
	}
	total := hours * 60 * 60
	for _, unit := range []int{60, 1} {
		if !strings.HasPrefix(rest, ":") {
			break
		}
		var v int
		if v, rest, ok = parseDecimal(rest[1:], 2, 59); !ok {
			return 0, s, false
		}
		total += v * unit
	}
	return sign * total, rest, true
}

// parseDecimal consumes up to maxDigits digits with value at most max.
func parseDecimal(s string, maxDigits, max int) (int, string, bool) {
	i, v := 0, 0
	for i < len(s) && i < maxDigits && isDigit(s[i]) {
		v = v*10 + int(s[i]-'0')
		i++
	}
	if i == 0 || v > max {
		return 0, s, false
	}
	return v, s[i:], true
}

// parseRule parses ",date[/time]".
func parseRule(s string) (TransitionDate, int, string, error) {
	if !strings.HasPrefix(s, ",") {
		return TransitionDate{}, 0, s, fmt.Errorf("expected ','")
	}
	s = s[1:]

	var d TransitionDate
	var ok bool
	switch {
	case strings.HasPrefix(s, "J"):
		d.Form = DateFormJulian
		if d.Julian, s, ok = parseDecimal(s[1:], 3, 365); !ok || d.Julian < 1 {
			return TransitionDate{}, 0, s, fmt.Errorf("bad Julian day")
		}
	case strings.HasPrefix(s, "M"):
		d.Form = DateFormMonthWeekDay
		if d.Month, s, ok = parseDecimal(s[1:], 2, 12); !ok || d.Month < 1 {
			return TransitionDate{}, 0, s, fmt.Errorf("bad month")
		}
		if !strings.HasPrefix(s, ".") {
			return TransitionDate{}, 0, s, fmt.Errorf("expected '.' after month")
		}
		if d.Week, s, ok = parseDecimal(s[1:], 1, 5); !ok || d.Week < 1 {
			return TransitionDate{}, 0, s, fmt.Errorf("bad week")
		}
		if !strings.HasPrefix(s, ".") {
			return TransitionDate{}, 0, s, fmt.Errorf("expected '.' after week")
		}
		if d.Day, s, ok = parseDecimal(s[1:], 1, 6); !ok {
			return TransitionDate{}, 0, s, fmt.Errorf("bad weekday")
		}
	default:
		d.Form = DateFormZero
		if d.Julian, s, ok = parseDecimal(s, 3, 365); !ok {
			return TransitionDate{}, 0, s, fmt.Errorf("bad day of year")
		}
	}

	t := defaultTransitionTime
	if strings.HasPrefix(s, "/") {
		var v int
		if v, s, ok = parseOffset(s[1:]); !ok {
			return TransitionDate{}, 0, s, fmt.Errorf("bad transition time")
		}
		t = v
	}
	return d, t, s, nil
}
