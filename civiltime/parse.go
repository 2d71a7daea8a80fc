package civiltime

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
)

// parseNum parses a bounded-width signed decimal number at the start of s.
// An optional leading '-' is accepted. width limits the number of digits
// consumed (the sign counts against it); zero means unbounded, stopping at
// the first non-digit. The magnitude accumulates as a negative number so
// that the minimum of the representable range parses without overflow.
// On success it returns the remaining input, the value and true; on
// failure (no digits, overflow, or a value outside [min:max]) it returns
// the input unchanged.
func parseNum[T constraints.Signed](s string, width int, min, max T) (string, T, bool) {
	const kmin int64 = math.MinInt64
	var value int64
	erange := false
	neg := false
	i := 0
	if i < len(s) && s[i] == '-' {
		neg = true
		if width == 1 {
			return s, 0, false
		}
		if width > 0 {
			width--
		}
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		d := int64(s[i] - '0')
		if value < kmin/10 {
			erange = true
			break
		}
		value *= 10
		if value < kmin+d {
			erange = true
			break
		}
		value -= d
		i++
		if width > 0 {
			if width--; width == 0 {
				break
			}
		}
	}
	if i == start || erange || (!neg && value == kmin) {
		return s, 0, false
	}
	if neg && value == 0 {
		return s, 0, false
	}
	if !neg {
		value = -value // make positive
	}
	if int64(min) <= value && value <= int64(max) {
		return s[i:], T(value), true
	}
	return s, 0, false
}

// parseOffset parses a UTC offset: a sign, exactly two hour digits, an
// optional separator and, if present, exactly two minute digits. The
// result is in seconds east.
func parseOffset(s string, sep byte) (string, int, bool) {
	if len(s) == 0 || (s[0] != '+' && s[0] != '-') {
		return s, 0, false
	}
	sign := s[0]
	rest, hours, ok := parseNum(s[1:], 2, 0, 23)
	if !ok || len(s[1:])-len(rest) != 2 {
		return s, 0, false
	}
	after := rest
	if sep != 0 && len(after) > 0 && after[0] == sep {
		after = after[1:]
	}
	var minutes int
	if mrest, m, mok := parseNum(after, 2, 0, 59); mok && len(after)-len(mrest) == 2 {
		minutes = m
		rest = mrest
	}
	offset := (hours*60 + minutes) * 60
	if sign == '-' {
		offset = -offset
	}
	return rest, offset, true
}

// parseZoneName consumes a non-empty run of non-whitespace characters.
// Zone abbreviations are ambiguous, so the token is never applied to the
// conversion.
func parseZoneName(s string) (string, string, bool) {
	i := 0
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	if i == 0 {
		return s, "", false
	}
	return s[i:], s[:i], true
}

// parseSubSeconds parses an optional fractional-second field: a period
// followed by at least one digit. Digits beyond nanosecond resolution are
// consumed but ignored. An absent field is not an error.
func parseSubSeconds(s string) (string, time.Duration, bool) {
	if len(s) == 0 || s[0] != '.' {
		return s, 0, true
	}
	var v int64
	exp := 0
	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if exp < 9 {
			exp++
			v = v*10 + int64(s[i]-'0')
		}
		i++
	}
	if i == 1 {
		return s, 0, false
	}
	return s[i:], time.Duration(v * exp10[9-exp]), true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func skipSpace(s string) string {
	for len(s) > 0 && isSpace(s[0]) {
		s = s[1:]
	}
	return s
}

// parseFields accumulates the civil fields of an input being parsed.
type parseFields struct {
	year                       int64
	month, day, hour, min, sec int
}

// Parse parses input according to the provided format string and returns
// the corresponding Instant. It supports the same extended specifiers as
// Format, although %E#S and %E*S are treated identically.
//
// %Y consumes as many numeric characters as it can, so the matching data
// should always be terminated by a non-numeric. %E4Y always consumes
// exactly four characters, including any sign.
//
// Unspecified fields default to 1970-01-01 00:00:00.0 +00:00. Since Parse
// returns instants, it makes the most sense to parse fully specified
// strings that include a UTC offset (%z or %Ez); without one the civil
// fields are interpreted in the given zone.
//
// The fields year, month, day, hour, minute, (fractional) second and UTC
// offset are heeded. Other fields, like the weekday (%a, %A), are parsed
// for syntactic validity but ignored in the conversion, and %Z is consumed
// but never applied because zone abbreviations are ambiguous. %s parses a
// count of Unix seconds and, if present, overrides everything else.
//
// Out-of-range date and time fields are errors rather than being
// normalized the way MakeTime does: parsing "Oct 32" does not produce
// November 1. A seconds value of 60 (a leap second) is accepted and
// normalizes to :00 of the following minute with any fractional seconds
// discarded.
func Parse(format, input string, tz Zone) (Instant, error) {
	data := skipSpace(input)
	ok := true

	// Default values for unspecified fields (weekday: Thursday).
	f := parseFields{year: 1970, month: 1, day: 1}
	var subseconds time.Duration
	var offset int
	sawOffset := false

	twelveHour := false
	afternoon := false

	sawPercentS := false
	var percentSTime int64

	// Steps through format, one specifier at a time.
	fi := 0
	for ok && fi < len(format) {
		if isSpace(format[fi]) {
			data = skipSpace(data)
			for fi < len(format) && isSpace(format[fi]) {
				fi++
			}
			continue
		}

		if format[fi] != '%' {
			if len(data) > 0 && data[0] == format[fi] {
				data = data[1:]
				fi++
			} else {
				ok = false
			}
			continue
		}

		percent := fi
		if fi++; fi == len(format) {
			ok = false
			continue
		}
		c := format[fi]
		fi++
		switch c {
		case 'Y':
			data, f.year, ok = parseNum(data, 0, int64(math.MinInt64), int64(math.MaxInt64))
			continue
		case 'm':
			data, f.month, ok = parseNum(data, 2, 1, 12)
			continue
		case 'd':
			data, f.day, ok = parseNum(data, 2, 1, 31)
			continue
		case 'H':
			data, f.hour, ok = parseNum(data, 2, 0, 23)
			twelveHour = false
			continue
		case 'M':
			data, f.min, ok = parseNum(data, 2, 0, 59)
			continue
		case 'S':
			data, f.sec, ok = parseNum(data, 2, 0, 60)
			continue
		case 'I', 'r': // %r probably uses %I
			twelveHour = true
		case 'R', 'T', 'c', 'X': // all probably use %H
			twelveHour = false
		case 'z':
			data, offset, ok = parseOffset(data, 0)
			sawOffset = sawOffset || ok
			continue
		case 'Z': // parsed but ignored
			data, _, ok = parseZoneName(data)
			continue
		case 's':
			data, percentSTime, ok = parseNum(data, 0, int64(math.MinInt64), int64(math.MaxInt64))
			sawPercentS = sawPercentS || ok
			continue
		case 'E':
			if fi < len(format) && format[fi] == 'z' {
				if len(data) > 0 && data[0] == 'Z' { // Zulu
					offset = 0
					sawOffset = true
					data = data[1:]
				} else {
					data, offset, ok = parseOffset(data, ':')
					sawOffset = sawOffset || ok
				}
				fi++
				continue
			}
			if fi+1 < len(format) && format[fi] == '*' && format[fi+1] == 'S' {
				data, f.sec, ok = parseNum(data, 2, 0, 60)
				if ok {
					data, subseconds, ok = parseSubSeconds(data)
				}
				fi += 2
				continue
			}
			if fi+1 < len(format) && format[fi] == '4' && format[fi+1] == 'Y' {
				rest, year, yok := parseNum(data, 4, int64(-999), int64(9999))
				if yok && len(data)-len(rest) == 4 {
					f.year = year
					data = rest
				} else {
					ok = false // stopped too soon
				}
				fi += 2
				continue
			}
			if fi < len(format) && format[fi] >= '0' && format[fi] <= '9' {
				if n, np, nok := parseIntStr(format[fi:], 0, 0, 1024); nok && np < len(format)-fi && format[fi+np] == 'S' {
					data, f.sec, ok = parseNum(data, 2, 0, 60)
					if ok && n > 0 { // n is otherwise ignored
						data, subseconds, ok = parseSubSeconds(data)
					}
					fi += np + 1
					continue
				}
			}
			if fi < len(format) && (format[fi] == 'c' || format[fi] == 'X') {
				twelveHour = false // probably uses %H
			}
			if fi < len(format) {
				fi++
			}
		case 'O':
			if fi < len(format) && format[fi] == 'H' {
				twelveHour = false
			}
			if fi < len(format) && format[fi] == 'I' {
				twelveHour = true
			}
			if fi < len(format) {
				fi++
			}
		}

		// Delegate the current specifier, in isolation, to the
		// generic parser.
		spec := format[percent:fi]
		origData := data
		data, ok = parseTM(data, spec, &f)

		// A successfully parsed %p does not adjust the hour by itself.
		// Reparse the consumed text with a synthetic hour of 1 and
		// check whether the AM/PM convention shifts it to 13; the
		// shift is applied to the real hour field at the end.
		if ok && spec == "%p" {
			consumed := origData[:len(origData)-len(data)]
			var tmp parseFields
			if rest, pok := parseTM("1"+consumed, "%I%p", &tmp); pok && rest == "" {
				afternoon = tmp.hour == 13
			}
		}
	}

	// Adjust a 12-hour value if it should be in the afternoon.
	if twelveHour && afternoon && f.hour < 12 {
		f.hour += 12
	}

	if !ok {
		return Instant{}, fmt.Errorf("parse %q as %q: input does not match format", input, format)
	}

	// Parse must consume the entire input string.
	if data = skipSpace(data); data != "" {
		return Instant{}, fmt.Errorf("parse %q as %q: trailing input %q", input, format, data)
	}

	// A %s time overrides any other fields.
	if sawPercentS {
		return Unix(percentSTime, 0), nil
	}

	// With a parsed offset the fields are interpreted in UTC and then
	// shifted; otherwise they are interpreted directly in tz.
	ptz := tz
	if sawOffset {
		ptz = UTCTimeZone() // offset applied below
	} else {
		offset = 0
	}

	// A leap second of 60 folds forward to the following ":00".
	if f.sec == 60 {
		f.sec--
		offset--
		subseconds = 0
	}

	ti := MakeTimeInfo(f.year, f.month, f.day, f.hour, f.min, f.sec, ptz)

	// Fail if any normalization was done: parsing "Sep 31" must not
	// produce the equivalent of "Oct 1".
	if ti.Normalized {
		return Instant{}, fmt.Errorf("parse %q as %q: field out of range", input, format)
	}

	return ti.Pre.AddSeconds(int64(-offset)).Add(subseconds), nil
}

// hasFoldPrefix reports whether s begins with prefix under ASCII case
// folding.
func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// parseTM parses input against a small strftime-style specification,
// standing in for the platform parser that Parse delegates unrecognized
// specifiers to. It handles the textual and locale-flavored conversions
// one at a time; composite specifications only occur internally (%I%p for
// the afternoon probe and the %D/%R/%T rewrites).
func parseTM(data, spec string, f *parseFields) (string, bool) {
	sawI := false
	pm := false
	ok := true

	var amPM = [...]struct {
		tok string
		pm  bool
	}{{"AM", false}, {"PM", true}}

	i := 0
	for ok && i < len(spec) {
		if isSpace(spec[i]) {
			data = skipSpace(data)
			i++
			continue
		}
		if spec[i] != '%' || i+1 == len(spec) {
			if len(data) > 0 && data[0] == spec[i] {
				data = data[1:]
				i++
			} else {
				ok = false
			}
			continue
		}
		i++
		c := spec[i]
		i++
		switch c {
		case 'a', 'A': // weekday name; syntax only
			_, rest, wok := matchName(data, weekdayNames())
			data, ok = rest, wok
		case 'b', 'B', 'h':
			var m int
			m, data, ok = matchName(data, monthNames())
			if ok {
				f.month = m + 1
			}
		case 'p':
			ok = false
			for _, cand := range amPM {
				if hasFoldPrefix(data, cand.tok) {
					data = data[len(cand.tok):]
					pm = cand.pm
					ok = true
					break
				}
			}
		case 'I':
			// A 12-hour value is stored modulo 12; a %p in the
			// same specification lifts it into the afternoon.
			data, f.hour, ok = parseNum(data, 2, 1, 12)
			f.hour %= 12
			sawI = true
		case 'l':
			data, f.hour, ok = parseNum(skipSpace(data), 2, 1, 12)
			f.hour %= 12
			sawI = true
		case 'e':
			data, f.day, ok = parseNum(skipSpace(data), 2, 1, 31)
		case 'y':
			var y int
			if data, y, ok = parseNum(data, 2, 0, 99); ok {
				// POSIX pivot: 69-99 is 19xx, 00-68 is 20xx.
				if y >= 69 {
					f.year = int64(1900 + y)
				} else {
					f.year = int64(2000 + y)
				}
			}
		case 'j': // day of year; syntax only
			var yd int
			data, yd, ok = parseNum(data, 3, 1, 366)
			_ = yd
		case 'u': // weekday number; syntax only
			var wd int
			data, wd, ok = parseNum(data, 1, 1, 7)
			_ = wd
		case 'w':
			var wd int
			data, wd, ok = parseNum(data, 1, 0, 6)
			_ = wd
		case 'U', 'W': // week number; syntax only
			var wn int
			data, wn, ok = parseNum(data, 2, 0, 53)
			_ = wn
		case 'm':
			data, f.month, ok = parseNum(data, 2, 1, 12)
		case 'd':
			data, f.day, ok = parseNum(data, 2, 1, 31)
		case 'H':
			data, f.hour, ok = parseNum(data, 2, 0, 23)
		case 'M':
			data, f.min, ok = parseNum(data, 2, 0, 59)
		case 'S':
			data, f.sec, ok = parseNum(data, 2, 0, 60)
		case 'Y':
			data, f.year, ok = parseNum(data, 0, int64(math.MinInt64), int64(math.MaxInt64))
		case 'c':
			data, ok = parseTM(data, "%a %b %e %H:%M:%S %Y", f)
		case 'D', 'x':
			data, ok = parseTM(data, "%m/%d/%y", f)
		case 'r':
			data, ok = parseTM(data, "%I:%M:%S %p", f)
		case 'R':
			data, ok = parseTM(data, "%H:%M", f)
		case 'T', 'X':
			data, ok = parseTM(data, "%H:%M:%S", f)
		case 'n', 't':
			data = skipSpace(data)
		case 'E', 'O': // modified conversions parse like their base
			if i == len(spec) {
				ok = false
				break
			}
			data, ok = parseTM(data, "%"+string(spec[i]), f)
			i++
		case '%':
			if len(data) > 0 && data[0] == '%' {
				data = data[1:]
			} else {
				ok = false
			}
		default:
			ok = false // unsupported specifier
		}
	}
	if ok && sawI && pm {
		f.hour += 12
	}
	return data, ok
}

func monthNames() []string {
	names := make([]string, 12)
	for m := time.January; m <= time.December; m++ {
		names[m-1] = m.String()
	}
	return names
}

func weekdayNames() []string {
	names := make([]string, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		names[d] = d.String()
	}
	return names
}

// matchName matches a full or three-letter abbreviated name from the
// candidate list, case-insensitively, returning the matched index.
func matchName(data string, names []string) (int, string, bool) {
	for i, name := range names {
		if hasFoldPrefix(data, name) {
			return i, data[len(name):], true
		}
	}
	for i, name := range names {
		if hasFoldPrefix(data, name[:3]) {
			return i, data[3:], true
		}
	}
	return 0, data, false
}
