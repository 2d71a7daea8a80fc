package tzposix

import (
	"sort"

	"github.com/ngrash/go-civil/civiltime"
	"github.com/ngrash/go-civil/internal/calendar"
)

// NewBackend returns an immutable civiltime.Backend applying the given
// rule. Wrap it with civiltime.NewZone, or load it by name through
// civiltime.LoadTimeZone.
func NewBackend(r Rule) civiltime.Backend {
	return &backend{rule: r}
}

type backend struct {
	rule Rule
}

// transition is a single offset change: at the absolute instant at, the
// offset in effect switches from offBefore to offAfter.
type transition struct {
	at        int64 // seconds since the Unix epoch
	offBefore int
	offAfter  int
	abbrAfter string
	dstAfter  bool
}

// resolveDate expands a yearly transition date for a concrete year into
// a day count relative to 1970-01-01.
func resolveDate(d TransitionDate, year int64) int64 {
	switch d.Form {
	case DateFormJulian:
		// Day n never counts February 29, so day 60 is always
		// March 1.
		n := d.Julian
		if n >= 60 && calendar.IsLeap(year) {
			n++
		}
		return calendar.DayOrdinal(year, 1, 1) + int64(n-1)
	case DateFormZero:
		return calendar.DayOrdinal(year, 1, 1) + int64(d.Julian)
	}

	// Mm.w.d: day d of week w of month m, week 5 meaning the last
	// such weekday of the month.
	target := d.Day // 0=Sun..6=Sat
	if target == 0 {
		target = 7 // weekday ordinals run 1=Mon..7=Sun
	}
	first := calendar.DayOrdinal(year, d.Month, 1)
	diff := (target - calendar.Weekday(first) + 7) % 7
	day := 1 + diff + (d.Week-1)*7
	for day > calendar.DaysInMonth(year, d.Month) {
		day -= 7
	}
	return first + int64(day-1)
}

// transitions returns the offset changes for the years [lo:hi], in
// absolute time order. Wall-clock rule times are anchored by the offset
// in effect before each transition.
func (b *backend) transitions(lo, hi int64) []transition {
	r := b.rule
	var trs []transition
	for y := lo; y <= hi; y++ {
		start := resolveDate(r.Start, y)*86400 + int64(r.StartTime)
		end := resolveDate(r.End, y)*86400 + int64(r.EndTime)
		trs = append(trs,
			transition{
				at:        start - int64(r.StdOffset),
				offBefore: r.StdOffset,
				offAfter:  r.DstOffset,
				abbrAfter: r.DstAbbr,
				dstAfter:  true,
			},
			transition{
				at:        end - int64(r.DstOffset),
				offBefore: r.DstOffset,
				offAfter:  r.StdOffset,
				abbrAfter: r.StdAbbr,
				dstAfter:  false,
			})
	}
	// Southern-hemisphere rules put the end before the start within a
	// calendar year.
	sort.Slice(trs, func(i, j int) bool { return trs[i].at < trs[j].at })
	return trs
}

func floorDiv(x, y int64) int64 {
	q := x / y
	if x%y < 0 {
		q--
	}
	return q
}

// lookup returns the offset, daylight flag and designation in effect at
// the absolute second t.
func (b *backend) lookup(t int64) (int, bool, string) {
	r := b.rule
	if !r.DST {
		return r.StdOffset, false, r.StdAbbr
	}
	year, _, _ := calendar.CivilFromDays(floorDiv(t, 86400))
	trs := b.transitions(year-1, year+1)
	for i := len(trs) - 1; i >= 0; i-- {
		if trs[i].at <= t {
			return trs[i].offAfter, trs[i].dstAfter, trs[i].abbrAfter
		}
	}
	if trs[0].dstAfter {
		return r.StdOffset, false, r.StdAbbr
	}
	return r.DstOffset, true, r.DstAbbr
}

func (b *backend) BreakTime(t civiltime.Instant) civiltime.Breakdown {
	offset, dst, abbr := b.lookup(t.UnixSeconds())
	lt := t.UnixSeconds() + int64(offset)
	days := floorDiv(lt, 86400)
	rem := lt - days*86400
	year, month, day := calendar.CivilFromDays(days)
	return civiltime.Breakdown{
		Year:      year,
		Month:     month,
		Day:       day,
		Hour:      int(rem / 3600),
		Minute:    int(rem / 60 % 60),
		Second:    int(rem % 60),
		Subsecond: t.Subsecond(),
		Weekday:   calendar.Weekday(days),
		YearDay:   calendar.YearDay(year, month, day),
		Offset:    offset,
		IsDST:     dst,
		Abbr:      abbr,
	}
}

func (b *backend) MakeTimeInfo(year int64, month, day, hour, min, sec int) civiltime.TimeInfo {
	f := calendar.Fields{Year: year, Month: month, Day: day, Hour: hour, Minute: min, Second: sec}
	normalized := calendar.Normalize(&f)
	cs := calendar.UnixSeconds(f) // naive civil seconds

	r := b.rule
	if !r.DST {
		t := civiltime.Unix(cs-int64(r.StdOffset), 0)
		return civiltime.TimeInfo{Kind: civiltime.Unique, Pre: t, Trans: t, Post: t, Normalized: normalized}
	}

	trs := b.transitions(f.Year-1, f.Year+1)
	for _, tr := range trs {
		lo := tr.at + int64(tr.offBefore) // civil second the old offset runs to
		hi := tr.at + int64(tr.offAfter)  // civil second the new offset starts at
		switch {
		case tr.offAfter > tr.offBefore && cs >= lo && cs < hi:
			// A local-time gap: the requested civil time never
			// occurred. The pre interpretation uses the earlier
			// offset and therefore lands after the transition.
			return civiltime.TimeInfo{
				Kind:       civiltime.Skipped,
				Pre:        civiltime.Unix(cs-int64(tr.offBefore), 0),
				Trans:      civiltime.Unix(tr.at, 0),
				Post:       civiltime.Unix(cs-int64(tr.offAfter), 0),
				Normalized: normalized,
			}
		case tr.offAfter < tr.offBefore && cs >= hi && cs < lo:
			// A local-time overlap: the requested civil time
			// occurred twice.
			return civiltime.TimeInfo{
				Kind:       civiltime.Repeated,
				Pre:        civiltime.Unix(cs-int64(tr.offBefore), 0),
				Trans:      civiltime.Unix(tr.at, 0),
				Post:       civiltime.Unix(cs-int64(tr.offAfter), 0),
				Normalized: normalized,
			}
		}
	}

	// Unique: apply the offset of the regime the civil time falls in.
	offset := r.DstOffset
	if trs[0].dstAfter {
		offset = r.StdOffset
	}
	for _, tr := range trs {
		if cs >= tr.at+int64(tr.offAfter) {
			offset = tr.offAfter
		}
	}
	t := civiltime.Unix(cs-int64(offset), 0)
	return civiltime.TimeInfo{Kind: civiltime.Unique, Pre: t, Trans: t, Post: t, Normalized: normalized}
}
