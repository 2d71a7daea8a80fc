package tzposix

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-civil/civiltime"
)

func TestParse(t *testing.T) {
	cases := []struct {
		tz   string
		want Rule
	}{
		{
			tz:   "UTC0",
			want: Rule{StdAbbr: "UTC"},
		},
		{
			tz:   "IST-5:30",
			want: Rule{StdAbbr: "IST", StdOffset: 5*3600 + 30*60},
		},
		{
			tz:   "<-03>3",
			want: Rule{StdAbbr: "-03", StdOffset: -3 * 3600},
		},
		{
			tz: "PST8PDT,M3.2.0,M11.1.0",
			want: Rule{
				StdAbbr: "PST", StdOffset: -8 * 3600,
				DST: true, DstAbbr: "PDT", DstOffset: -7 * 3600,
				Start:     TransitionDate{Form: DateFormMonthWeekDay, Month: 3, Week: 2, Day: 0},
				StartTime: 2 * 3600,
				End:       TransitionDate{Form: DateFormMonthWeekDay, Month: 11, Week: 1, Day: 0},
				EndTime:   2 * 3600,
			},
		},
		{
			// Without rules, daylight saving follows the US defaults.
			tz: "EST5EDT",
			want: Rule{
				StdAbbr: "EST", StdOffset: -5 * 3600,
				DST: true, DstAbbr: "EDT", DstOffset: -4 * 3600,
				Start:     TransitionDate{Form: DateFormMonthWeekDay, Month: 3, Week: 2, Day: 0},
				StartTime: 2 * 3600,
				End:       TransitionDate{Form: DateFormMonthWeekDay, Month: 11, Week: 1, Day: 0},
				EndTime:   2 * 3600,
			},
		},
		{
			// Explicit dst offset and transition times.
			tz: "PST8PDT7,M3.2.0/2:30,M11.1.0/1",
			want: Rule{
				StdAbbr: "PST", StdOffset: -8 * 3600,
				DST: true, DstAbbr: "PDT", DstOffset: -7 * 3600,
				Start:     TransitionDate{Form: DateFormMonthWeekDay, Month: 3, Week: 2, Day: 0},
				StartTime: 2*3600 + 30*60,
				End:       TransitionDate{Form: DateFormMonthWeekDay, Month: 11, Week: 1, Day: 0},
				EndTime:   1 * 3600,
			},
		},
		{
			// Southern hemisphere: daylight saving spans the new year.
			tz: "AEST-10AEDT,M10.1.0,M4.1.0/3",
			want: Rule{
				StdAbbr: "AEST", StdOffset: 10 * 3600,
				DST: true, DstAbbr: "AEDT", DstOffset: 11 * 3600,
				Start:     TransitionDate{Form: DateFormMonthWeekDay, Month: 10, Week: 1, Day: 0},
				StartTime: 2 * 3600,
				End:       TransitionDate{Form: DateFormMonthWeekDay, Month: 4, Week: 1, Day: 0},
				EndTime:   3 * 3600,
			},
		},
		{
			tz: "CET-1CEST,J60,J300/26",
			want: Rule{
				StdAbbr: "CET", StdOffset: 1 * 3600,
				DST: true, DstAbbr: "CEST", DstOffset: 2 * 3600,
				Start:     TransitionDate{Form: DateFormJulian, Julian: 60},
				StartTime: 2 * 3600,
				End:       TransitionDate{Form: DateFormJulian, Julian: 300},
				EndTime:   26 * 3600, // RFC 8536 extended hours
			},
		},
		{
			tz: "STD0DST,59,300",
			want: Rule{
				StdAbbr: "STD",
				DST:     true, DstAbbr: "DST", DstOffset: 3600,
				Start:     TransitionDate{Form: DateFormZero, Julian: 59},
				StartTime: 2 * 3600,
				End:       TransitionDate{Form: DateFormZero, Julian: 300},
				EndTime:   2 * 3600,
			},
		},
	}
	for _, c := range cases {
		got, err := Parse(c.tz)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", c.tz, err)
			continue
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", c.tz, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"UTC",                      // missing offset
		"PS8",                      // designation too short
		"<-03",                     // unterminated quoted designation
		"PST8,M3.2.0,M11.1.0",      // rules without dst designation
		"PST8PDT,M3.2.0",           // missing end rule
		"PST8PDT,M13.1.0,M11.1.0",  // month out of range
		"PST8PDT,M3.0.0,M11.1.0",   // week out of range
		"PST8PDT,M3.2.7,M11.1.0",   // weekday out of range
		"PST8PDT,J366,M11.1.0",     // Julian day out of range
		"PST8PDT,M3.2.0,M11.1.0,x", // trailing data
		"PST8PDT,M3.2.0/,M11.1.0",  // empty transition time
	}
	for _, tz := range cases {
		if _, err := Parse(tz); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded", tz)
		}
	}
}

func TestResolveDate(t *testing.T) {
	cases := []struct {
		name string
		d    TransitionDate
		year int64
		want int64 // days since 1970-01-01
	}{
		{
			name: "second Sunday in March 2011",
			d:    TransitionDate{Form: DateFormMonthWeekDay, Month: 3, Week: 2, Day: 0},
			year: 2011,
			want: 15046, // 2011-03-13
		},
		{
			name: "first Sunday in November 2011",
			d:    TransitionDate{Form: DateFormMonthWeekDay, Month: 11, Week: 1, Day: 0},
			year: 2011,
			want: 15284, // 2011-11-06
		},
		{
			name: "last Sunday in October 2021",
			d:    TransitionDate{Form: DateFormMonthWeekDay, Month: 10, Week: 5, Day: 0},
			year: 2021,
			want: 18931, // 2021-10-31
		},
		{
			name: "J60 in a common year",
			d:    TransitionDate{Form: DateFormJulian, Julian: 60},
			year: 2011,
			want: 15034, // 2011-03-01
		},
		{
			name: "J60 in a leap year skips February 29",
			d:    TransitionDate{Form: DateFormJulian, Julian: 60},
			year: 2012,
			want: 15400, // 2012-03-01
		},
		{
			name: "zero-based day 59 in a leap year",
			d:    TransitionDate{Form: DateFormZero, Julian: 59},
			year: 2012,
			want: 15399, // 2012-02-29
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := resolveDate(c.d, c.year); got != c.want {
				t.Errorf("resolveDate = %d, want %d", got, c.want)
			}
		})
	}
}

func pacific(t *testing.T) civiltime.Backend {
	t.Helper()
	r, err := Parse("PST8PDT,M3.2.0,M11.1.0")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return NewBackend(r)
}

func TestMakeTimeInfoSkipped(t *testing.T) {
	b := pacific(t)
	// 2011-03-13 02:15:00 never occurred: the clock jumped from 02:00
	// PST to 03:00 PDT.
	ti := b.MakeTimeInfo(2011, 3, 13, 2, 15, 0)
	want := civiltime.TimeInfo{
		Kind:  civiltime.Skipped,
		Pre:   civiltime.Unix(1300011300, 0), // 03:15:00 PDT
		Trans: civiltime.Unix(1300010400, 0), // 03:00:00 PDT
		Post:  civiltime.Unix(1300007700, 0), // 01:15:00 PST
	}
	if diff := cmp.Diff(want, ti); diff != "" {
		t.Errorf("MakeTimeInfo mismatch (-want +got):\n%s", diff)
	}
}

func TestMakeTimeInfoRepeated(t *testing.T) {
	b := pacific(t)
	// 2011-11-06 01:15:00 occurred twice: first in PDT, then again in
	// PST after the clock fell back at 02:00 PDT.
	ti := b.MakeTimeInfo(2011, 11, 6, 1, 15, 0)
	want := civiltime.TimeInfo{
		Kind:  civiltime.Repeated,
		Pre:   civiltime.Unix(1320567300, 0), // 01:15:00 PDT
		Trans: civiltime.Unix(1320570000, 0), // 01:00:00 PST
		Post:  civiltime.Unix(1320570900, 0), // 01:15:00 PST
	}
	if diff := cmp.Diff(want, ti); diff != "" {
		t.Errorf("MakeTimeInfo mismatch (-want +got):\n%s", diff)
	}
}

func TestMakeTimeInfoUnique(t *testing.T) {
	b := pacific(t)
	cases := []struct {
		name                       string
		year                       int64
		month, day, hour, min, sec int
		want                       int64
	}{
		{"just before spring forward", 2011, 3, 13, 1, 59, 59, 1300010399},
		{"first instant of daylight time", 2011, 3, 13, 3, 0, 0, 1300010400},
		{"midsummer", 2011, 7, 1, 12, 0, 0, 1309546800},
		{"midwinter", 2011, 1, 15, 12, 0, 0, 1295121600},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ti := b.MakeTimeInfo(c.year, c.month, c.day, c.hour, c.min, c.sec)
			if ti.Kind != civiltime.Unique {
				t.Fatalf("Kind = %v, want Unique", ti.Kind)
			}
			if got := ti.Pre.UnixSeconds(); got != c.want {
				t.Errorf("Pre = %d, want %d", got, c.want)
			}
		})
	}
}

func TestBreakTimeAcrossTransitions(t *testing.T) {
	b := pacific(t)
	cases := []struct {
		sec   int64
		hour  int
		min   int
		abbr  string
		isDST bool
	}{
		{1300010399, 1, 59, "PST", false}, // 01:59:59, last second of PST
		{1300010400, 3, 0, "PDT", true},   // clock jumps to 03:00:00
		{1320569999, 1, 59, "PDT", true},  // 01:59:59, last second of PDT
		{1320570000, 1, 0, "PST", false},  // clock falls back to 01:00:00
	}
	for _, c := range cases {
		bd := b.BreakTime(civiltime.Unix(c.sec, 0))
		if bd.Hour != c.hour || bd.Minute != c.min || bd.Abbr != c.abbr || bd.IsDST != c.isDST {
			t.Errorf("BreakTime(%d) = %02d:%02d %s dst=%v, want %02d:%02d %s dst=%v",
				c.sec, bd.Hour, bd.Minute, bd.Abbr, bd.IsDST, c.hour, c.min, c.abbr, c.isDST)
		}
	}
}

func TestSouthernHemisphere(t *testing.T) {
	r, err := Parse("AEST-10AEDT,M10.1.0,M4.1.0/3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b := NewBackend(r)

	// January is summer: daylight time is in effect.
	bd := b.BreakTime(civiltime.Unix(1610712000, 0)) // 2021-01-15 12:00:00 UTC
	if !bd.IsDST || bd.Abbr != "AEDT" || bd.Offset != 11*3600 {
		t.Errorf("January: got %s dst=%v offset=%d", bd.Abbr, bd.IsDST, bd.Offset)
	}

	// June is winter: standard time.
	bd = b.BreakTime(civiltime.Unix(1623758400, 0)) // 2021-06-15 12:00:00 UTC
	if bd.IsDST || bd.Abbr != "AEST" || bd.Offset != 10*3600 {
		t.Errorf("June: got %s dst=%v offset=%d", bd.Abbr, bd.IsDST, bd.Offset)
	}
}

func TestNoDaylightSaving(t *testing.T) {
	r, err := Parse("<-03>3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b := NewBackend(r)

	bd := b.BreakTime(civiltime.Unix(0, 0))
	if bd.Abbr != "-03" || bd.Offset != -3*3600 || bd.IsDST {
		t.Errorf("got %s offset=%d dst=%v", bd.Abbr, bd.Offset, bd.IsDST)
	}
	if bd.Hour != 21 || bd.Day != 31 {
		t.Errorf("epoch in -03 = %02d:%02d on day %d", bd.Hour, bd.Minute, bd.Day)
	}

	ti := b.MakeTimeInfo(1970, 1, 1, 0, 0, 0)
	if ti.Kind != civiltime.Unique || ti.Pre.UnixSeconds() != 3*3600 {
		t.Errorf("MakeTimeInfo = %v at %d", ti.Kind, ti.Pre.UnixSeconds())
	}
}

func TestLoadThroughRegistry(t *testing.T) {
	tz, err := civiltime.LoadTimeZone("PST8PDT,M3.2.0,M11.1.0")
	if err != nil {
		t.Fatalf("LoadTimeZone: %v", err)
	}
	// The as-if rule: a skipped civil time resolves to its
	// pre-transition interpretation.
	got := civiltime.MakeTime(2011, 3, 13, 2, 15, 0, tz)
	if got.UnixSeconds() != 1300011300 {
		t.Errorf("MakeTime = %d, want 1300011300", got.UnixSeconds())
	}
	if s := civiltime.Format("%Y-%m-%d %H:%M:%S %Z", got, tz); s != "2011-03-13 03:15:00 PDT" {
		t.Errorf("Format = %q", s)
	}
}
