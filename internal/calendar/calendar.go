// Package calendar implements proleptic Gregorian day arithmetic and civil
// field normalization. It converts between (year, month, day) triples and a
// signed count of days relative to 1970-01-01 using exact integer formulas
// and folds out-of-range civil fields into canonical ranges.
// It ignores leap seconds but respects leap years and has no notion of
// time zones.
package calendar

// IsLeap reports whether year is a leap year in the proleptic
// Gregorian calendar.
func IsLeap(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysPerMonth holds the month lengths for non-leap and leap years,
// indexed by [leap][month] with month in [1:12].
var daysPerMonth = [2][1 + 12]int{
	{-1, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31},
	{-1, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31},
}

// daysPerYear holds the year lengths for non-leap and leap years.
var daysPerYear = [2]int{365, 366}

func leapIndex(year int64) int {
	if IsLeap(year) {
		return 1
	}
	return 0
}

// DaysInMonth returns the number of days in the given month of the given year.
func DaysInMonth(year int64, month int) int {
	return daysPerMonth[leapIndex(year)][month]
}

// DayOrdinal maps a normalized (year, month, day) to the number of days
// before or after 1970-01-01. The formulas treat January and February as
// months 13 and 14 of the previous year so that the leap day is the last
// day of the shifted year, and bucket years into 400-year eras with floor
// division so negative years work.
// See http://howardhinnant.github.io/date_algorithms.html#days_from_civil.
func DayOrdinal(year int64, month, day int) int64 {
	if month <= 2 {
		year--
	}
	era := year
	if era < 0 {
		era -= 399
	}
	era /= 400
	yoe := year - era*400 // [0, 399]
	doy := month - 3
	if month <= 2 {
		doy = month + 9
	}
	doy = (153*doy+2)/5 + day - 1                 // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + int64(doy) // [0, 146096]
	return era*146097 + doe - 719468              // shift epoch to 1970-01-01
}

// CivilFromDays is the inverse of DayOrdinal: it maps a day count relative
// to 1970-01-01 back to a (year, month, day) triple.
// See http://howardhinnant.github.io/date_algorithms.html#civil_from_days.
func CivilFromDays(days int64) (year int64, month, day int) {
	days += 719468
	era := days
	if era < 0 {
		era -= 146096
	}
	era /= 146097
	doe := days - era*146097                               // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365 // [0, 399]
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100) // [0, 365]
	mp := (5*doy + 2) / 153                  // [0, 11]
	day = int(doy - (153*mp+2)/5 + 1)        // [1, 31]
	month = int(mp) + 3
	if mp >= 10 {
		month = int(mp) - 9
	}
	if month <= 2 {
		y++
	}
	return y, month, day
}

// Weekday returns the day of the week for a day count relative to
// 1970-01-01, with 1=Monday through 7=Sunday. The epoch was a Thursday.
func Weekday(days int64) int {
	wd := (days+3)%7 + 1 // 1970-01-01 -> 4 (Thursday)
	if wd <= 0 {
		wd += 7
	}
	return int(wd)
}

// YearDay returns the one-based day of the year for a normalized date.
func YearDay(year int64, month, day int) int {
	return int(DayOrdinal(year, month, day)-DayOrdinal(year, 1, 1)) + 1
}

// Fields is a set of civil time fields subject to normalization.
// Year is effectively unbounded; the remaining fields have the usual
// canonical ranges after Normalize.
type Fields struct {
	Year   int64
	Month  int // [1:12]
	Day    int // [1:31]
	Hour   int // [0:23]
	Minute int // [0:59]
	Second int // [0:59]
}

// carry folds *val into [0, base) and returns the carry into the next
// larger unit. The remainder is non-negative regardless of the sign of the
// input: val=-1, base=60 yields remainder 59 and carry -1. Any non-zero
// carry marks *normalized.
func carry(base int, val *int, normalized *bool) int {
	c := *val / base
	*val %= base
	if *val < 0 {
		c--
		*val += base
	}
	if c != 0 {
		*normalized = true
	}
	return c
}

// Normalize folds out-of-range fields into their canonical ranges,
// carrying seconds into minutes, minutes into hours, hours into days and
// months into years, then folding day overflow by whole (leap-aware) years
// and finally by whole months. It reports whether any folding happened.
//
// The day folding is iterative rather than closed-form: real inputs only
// overflow by small amounts ("day 32", "month 13"), so the O(overflow)
// loops are a deliberate trade of speed for simplicity.
func Normalize(f *Fields) bool {
	var normalized bool
	f.Minute += carry(60, &f.Second, &normalized)
	f.Hour += carry(60, &f.Minute, &normalized)
	f.Day += carry(24, &f.Hour, &normalized)
	f.Month-- // months are one-based
	f.Year += int64(carry(12, &f.Month, &normalized))
	f.Month++ // restore [1:12]

	// Fold day overflow by whole years over a Mar..Feb window so that the
	// year length in play always covers the leap day correctly.
	if f.Month > 2 {
		f.Year++
	}
	yearLen := daysPerYear[leapIndex(f.Year)]
	for f.Day > yearLen {
		f.Day -= yearLen
		f.Year++
		yearLen = daysPerYear[leapIndex(f.Year)]
		normalized = true
	}
	for f.Day <= 0 {
		f.Year--
		f.Day += daysPerYear[leapIndex(f.Year)]
		normalized = true
	}
	if f.Month > 2 {
		f.Year--
	}

	leap := leapIndex(f.Year)
	for f.Day > daysPerMonth[leap][f.Month] {
		f.Day -= daysPerMonth[leap][f.Month]
		if f.Month++; f.Month > 12 {
			f.Month = 1
			f.Year++
			leap = leapIndex(f.Year)
		}
		normalized = true
	}
	return normalized
}

// UnixSeconds converts normalized fields to seconds since the Unix epoch,
// as observed in UTC.
func UnixSeconds(f Fields) int64 {
	return ((DayOrdinal(f.Year, f.Month, f.Day)*24+int64(f.Hour))*60+int64(f.Minute))*60 + int64(f.Second)
}
