package civiltime

import (
	"math"
	"strings"
	"time"

	"github.com/ngrash/go-civil/internal/calendar"
)

const digits = "0123456789"

// digits10 is the number of base-10 digits representable by an int64.
const digits10 = 18

// exp10 holds 10^n for every n representable by an int64.
var exp10 = [digits10 + 1]int64{
	1,
	10,
	100,
	1000,
	10000,
	100000,
	1000000,
	10000000,
	100000000,
	1000000000,
	10000000000,
	100000000000,
	1000000000000,
	10000000000000,
	100000000000000,
	1000000000000000,
	10000000000000000,
	100000000000000000,
	1000000000000000000,
}

// format64 renders v into buf, working backward from index ep, zero-padded
// to the given field width, and returns the index of the first byte
// written. The caller ensures buf has room before ep. Negating the
// smallest int64 overflows, so its last digit is peeled off first.
func format64(buf []byte, ep, width int, v int64) int {
	neg := false
	if v < 0 {
		width--
		neg = true
		if v == math.MinInt64 {
			lastDigit := -(v % 10)
			v /= 10
			if lastDigit < 0 {
				v++
				lastDigit += 10
			}
			width--
			ep--
			buf[ep] = digits[lastDigit]
		}
		v = -v
	}
	for {
		width--
		ep--
		buf[ep] = digits[v%10]
		if v /= 10; v == 0 {
			break
		}
	}
	for width > 0 { // zero pad
		width--
		ep--
		buf[ep] = '0'
	}
	if neg {
		ep--
		buf[ep] = '-'
	}
	return ep
}

// format02d renders v in [0:99] as two digits, working backward.
func format02d(buf []byte, ep, v int) int {
	ep--
	buf[ep] = digits[v%10]
	ep--
	buf[ep] = digits[(v/10)%10]
	return ep
}

// formatOffset renders a UTC offset in minutes, like +00:00, working
// backward. A zero sep byte omits the separator.
func formatOffset(buf []byte, ep, minutes int, sep byte) int {
	sign := byte('+')
	if minutes < 0 {
		minutes = -minutes
		sign = '-'
	}
	ep = format02d(buf, ep, minutes%60)
	if sep != 0 {
		ep--
		buf[ep] = sep
	}
	ep = format02d(buf, ep, minutes/60)
	ep--
	buf[ep] = sign
	return ep
}

// Format renders the given Instant in the given Zone according to a
// strftime-like format string, with the following extensions:
//
//   - %Ez  - RFC 3339-compatible numeric offset (+hh:mm or -hh:mm)
//   - %E#S - seconds with # digits of fractional precision
//   - %E*S - seconds with full fractional precision (a literal '*')
//   - %E4Y - four-character years (-999 ... -001, 0000, 0001 ... 9999)
//
// %Y produces as many characters as it takes to fully render the year, and
// a year outside [-999:9999] formatted with %E4Y also widens like %Y.
//
// The specifiers %Y, %m, %d, %e, %H, %M, %S, %z, %Z and %s are handled
// internally; everything else falls back to a generic formatter over the
// Breakdown. Format strings should include %Ez so that the result uniquely
// identifies an instant.
func Format(format string, t Instant, tz Zone) string {
	var result strings.Builder
	bd := BreakTime(t, tz)

	// Scratch buffer for backward-writing conversions.
	var buf [3 + digits10]byte // enough for the longest conversion
	ep := len(buf)
	var bp int

	// Maintain three disjoint subsequences that span format.
	//   [0 ... pending)       : already formatted into result
	//   [pending ... cur)     : formatting pending, but no special cases
	//   [cur ... len(format)) : unexamined
	pending := 0
	cur := 0
	end := len(format)

	for cur != end { // while something is unexamined
		// Moves cur to the next percent sign.
		start := cur
		for cur != end && format[cur] != '%' {
			cur++
		}

		// If the new pending text is all ordinary, copy it out.
		if cur != start && pending == start {
			result.WriteString(format[pending:cur])
			pending = cur
			start = cur
		}

		// Span the sequential percent signs.
		percent := cur
		for cur != end && format[cur] == '%' {
			cur++
		}

		// If the new pending text is all percents, copy out one
		// percent for every matched pair, then skip those pairs.
		if cur != start && pending == start {
			escaped := (cur - pending) / 2
			result.WriteString(strings.Repeat("%", escaped))
			pending += escaped * 2
			// Also copy out a single trailing percent.
			if pending != cur && cur == end {
				result.WriteByte(format[pending])
				pending++
			}
		}

		// Loop unless we have an unescaped percent.
		if cur == end || (cur-percent)%2 == 0 {
			continue
		}

		// Simple specifiers handled without the fallback formatter.
		if strings.IndexByte("YmdeHMSzZs", format[cur]) >= 0 {
			if cur-1 != pending {
				formatFallback(&result, format[pending:cur-1], bd)
			}
			switch format[cur] {
			case 'Y':
				bp = format64(buf[:], ep, 0, bd.Year)
				result.Write(buf[bp:ep])
			case 'm':
				bp = format02d(buf[:], ep, bd.Month)
				result.Write(buf[bp:ep])
			case 'd', 'e':
				bp = format02d(buf[:], ep, bd.Day)
				if format[cur] == 'e' && buf[bp] == '0' {
					buf[bp] = ' '
				}
				result.Write(buf[bp:ep])
			case 'H':
				bp = format02d(buf[:], ep, bd.Hour)
				result.Write(buf[bp:ep])
			case 'M':
				bp = format02d(buf[:], ep, bd.Minute)
				result.Write(buf[bp:ep])
			case 'S':
				bp = format02d(buf[:], ep, bd.Second)
				result.Write(buf[bp:ep])
			case 'z':
				bp = formatOffset(buf[:], ep, bd.Offset/60, 0)
				result.Write(buf[bp:ep])
			case 'Z':
				result.WriteString(bd.Abbr)
			case 's':
				bp = format64(buf[:], ep, 0, t.unixTrunc())
				result.Write(buf[bp:ep])
			}
			cur++
			pending = cur
			continue
		}

		// Loop if there is no E modifier.
		if format[cur] != 'E' {
			continue
		}
		if cur++; cur == end {
			continue
		}

		switch {
		case format[cur] == 'z':
			// Formats %Ez.
			if cur-2 != pending {
				formatFallback(&result, format[pending:cur-2], bd)
			}
			bp = formatOffset(buf[:], ep, bd.Offset/60, ':')
			result.Write(buf[bp:ep])
			cur++
			pending = cur
		case format[cur] == '*' && cur+1 != end && format[cur+1] == 'S':
			// Formats %E*S: full fractional precision with
			// trailing zeros (and a bare decimal point) trimmed.
			if cur-2 != pending {
				formatFallback(&result, format[pending:cur-2], bd)
			}
			cp := ep
			bp = format64(buf[:], cp, 9, int64(bd.Subsecond))
			for cp != bp && buf[cp-1] == '0' {
				cp--
			}
			if cp != bp {
				bp--
				buf[bp] = '.'
			}
			bp = format02d(buf[:], bp, bd.Second)
			result.Write(buf[bp:cp])
			cur += 2
			pending = cur
		case format[cur] == '4' && cur+1 != end && format[cur+1] == 'Y':
			// Formats %E4Y.
			if cur-2 != pending {
				formatFallback(&result, format[pending:cur-2], bd)
			}
			bp = format64(buf[:], ep, 4, bd.Year)
			result.Write(buf[bp:ep])
			cur += 2
			pending = cur
		case format[cur] >= '0' && format[cur] <= '9':
			// Possibly found %E#S.
			if n, np, ok := parseIntStr(format[cur:], 0, 0, 1024); ok && np < len(format[cur:]) && format[cur:][np] == 'S' {
				// Formats %E#S. Fractional digits beyond
				// nanosecond resolution are zero-extended.
				if cur-2 != pending {
					formatFallback(&result, format[pending:cur-2], bd)
				}
				bp = ep
				if n > 0 {
					if n > digits10 {
						n = digits10
					}
					ns := int64(bd.Subsecond)
					if n > 9 {
						ns *= exp10[n-9]
					} else {
						ns /= exp10[9-n]
					}
					bp = format64(buf[:], bp, n, ns)
					bp--
					buf[bp] = '.'
				}
				bp = format02d(buf[:], bp, bd.Second)
				result.Write(buf[bp:ep])
				cur += np + 1
				pending = cur
			}
		}
	}

	// Formats any remaining data.
	if end != pending {
		formatFallback(&result, format[pending:end], bd)
	}

	return result.String()
}

// parseIntStr parses a bounded decimal integer at the start of s, used for
// the %E#S digit count. It returns the value, the number of bytes
// consumed, and whether parsing succeeded.
func parseIntStr(s string, width, min, max int) (int, int, bool) {
	rest, v, ok := parseNum(s, width, min, max)
	return v, len(s) - len(rest), ok
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		return "?"
	}
	return time.Month(month).String()
}

// weekdayName expects 1=Mon..7=Sun.
func weekdayName(weekday int) string {
	return time.Weekday(weekday % 7).String()
}

// formatFallback renders the specifiers not special-cased by Format,
// operating on the already broken-down representation. It understands the
// common strftime conversions; anything unrecognized is copied through
// verbatim, as strftime does.
func formatFallback(out *strings.Builder, format string, bd Breakdown) {
	var buf [3 + digits10]byte
	ep := len(buf)
	wr := func(bp int) { out.Write(buf[bp:ep]) }

	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			out.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'a':
			out.WriteString(weekdayName(bd.Weekday)[:3])
		case 'A':
			out.WriteString(weekdayName(bd.Weekday))
		case 'b', 'h':
			out.WriteString(monthName(bd.Month)[:3])
		case 'B':
			out.WriteString(monthName(bd.Month))
		case 'c':
			formatFallback(out, "%a %b %e %H:%M:%S %Y", bd)
		case 'C':
			wr(format64(buf[:], ep, 2, bd.Year/100))
		case 'D', 'x':
			formatFallback(out, "%m/%d/%y", bd)
		case 'e':
			bp := format02d(buf[:], ep, bd.Day)
			if buf[bp] == '0' {
				buf[bp] = ' '
			}
			wr(bp)
		case 'F':
			formatFallback(out, "%Y-%m-%d", bd)
		case 'g':
			_, wy := isoWeek(bd)
			wr(format02d(buf[:], ep, int(((wy%100)+100)%100)))
		case 'G':
			_, wy := isoWeek(bd)
			wr(format64(buf[:], ep, 0, wy))
		case 'H':
			wr(format02d(buf[:], ep, bd.Hour))
		case 'I':
			wr(format02d(buf[:], ep, hour12(bd.Hour)))
		case 'j':
			wr(format64(buf[:], ep, 3, int64(bd.YearDay)))
		case 'k':
			bp := format02d(buf[:], ep, bd.Hour)
			if buf[bp] == '0' {
				buf[bp] = ' '
			}
			wr(bp)
		case 'l':
			bp := format02d(buf[:], ep, hour12(bd.Hour))
			if buf[bp] == '0' {
				buf[bp] = ' '
			}
			wr(bp)
		case 'm':
			wr(format02d(buf[:], ep, bd.Month))
		case 'M':
			wr(format02d(buf[:], ep, bd.Minute))
		case 'n':
			out.WriteByte('\n')
		case 'p':
			if bd.Hour < 12 {
				out.WriteString("AM")
			} else {
				out.WriteString("PM")
			}
		case 'P':
			if bd.Hour < 12 {
				out.WriteString("am")
			} else {
				out.WriteString("pm")
			}
		case 'r':
			formatFallback(out, "%I:%M:%S %p", bd)
		case 'R':
			formatFallback(out, "%H:%M", bd)
		case 'S':
			wr(format02d(buf[:], ep, bd.Second))
		case 't':
			out.WriteByte('\t')
		case 'T', 'X':
			formatFallback(out, "%H:%M:%S", bd)
		case 'u':
			wr(format64(buf[:], ep, 0, int64(bd.Weekday)))
		case 'U':
			wr(format02d(buf[:], ep, (bd.YearDay-1+7-bd.Weekday%7)/7))
		case 'V':
			wn, _ := isoWeek(bd)
			wr(format02d(buf[:], ep, wn))
		case 'w':
			wr(format64(buf[:], ep, 0, int64(bd.Weekday%7)))
		case 'W':
			wr(format02d(buf[:], ep, (bd.YearDay-1+7-(bd.Weekday-1))/7))
		case 'y':
			wr(format02d(buf[:], ep, int(((bd.Year%100)+100)%100)))
		case 'Y':
			wr(format64(buf[:], ep, 0, bd.Year))
		case 'E', 'O': // modified conversions render like their base
			if i+1 < len(format) {
				i++
				formatFallback(out, "%"+string(format[i]), bd)
			} else {
				out.WriteString(format[i-1 : i+1])
			}
		case '%':
			out.WriteByte('%')
		default:
			out.WriteByte('%')
			out.WriteByte(format[i])
		}
	}
}

func hour12(hour int) int {
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return h
}

// isoWeek returns the ISO 8601 week number and week-based year for the
// Breakdown's date.
func isoWeek(bd Breakdown) (week int, year int64) {
	// The ISO week of a date is the week of its nearest Thursday.
	delta := 4 - bd.Weekday // days to Thursday, [-3:3]
	yd := bd.YearDay + delta
	year = bd.Year
	switch {
	case yd < 1:
		year--
		days := 365
		if calendar.IsLeap(year) {
			days = 366
		}
		yd += days
	case yd > 365:
		days := 365
		if calendar.IsLeap(year) {
			days = 366
		}
		if yd > days {
			yd -= days
			year++
		}
	}
	return (yd-1)/7 + 1, year
}
