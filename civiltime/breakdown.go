package civiltime

import "time"

// Breakdown holds the calendar and wall-clock (a.k.a. "civil time")
// components of an Instant in a certain Zone. A Breakdown is derived data,
// recomputed on demand; it is not intended to represent an instant in time,
// so rather than passing a Breakdown around, pass an Instant and a Zone.
type Breakdown struct {
	Year      int64         // year (e.g. 2013)
	Month     int           // month of year [1:12]
	Day       int           // day of month [1:31]
	Hour      int           // hour of day [0:23]
	Minute    int           // minute of hour [0:59]
	Second    int           // second of minute [0:59]
	Subsecond time.Duration // [0s:1s)
	Weekday   int           // 1=Mon, ..., 7=Sun
	YearDay   int           // day of year [1:366]
	Offset    int           // seconds east of UTC
	IsDST     bool          // is the offset non-standard?
	Abbr      string        // zone abbreviation (e.g. "PST")
}

// Kind classifies the result of resolving civil time fields to an Instant.
type Kind int

const (
	// Unique means the civil time was singular (Pre == Trans == Post).
	Unique Kind = iota
	// Skipped means the civil time did not exist in the zone: an offset
	// transition advanced the clock past it.
	Skipped
	// Repeated means the civil time was ambiguous: an offset transition
	// set the clock back through it, so it occurred twice.
	Repeated
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Skipped:
		return "skipped"
	case Repeated:
		return "repeated"
	}
	return "<invalid kind>"
}

// TimeInfo is the result of resolving civil time fields in a Zone to an
// absolute time, as returned by MakeTimeInfo.
//
// A caller may ask for civil fields that do not name an actual or unique
// instant: an offset transition in the zone skips or repeats civil times.
// In the United States, for example, March 13, 2011 02:15 never occurred
// while November 6, 2011 01:15 occurred twice. To account for this,
// TimeInfo carries times calculated using the pre-transition and
// post-transition offsets, plus the transition instant itself.
//
// Input fields outside their valid ranges are folded into range during the
// conversion, in which case Normalized is set. Normalization and the
// Skipped/Repeated classification are independent: a request can be both
// out of range and ambiguous.
type TimeInfo struct {
	Kind  Kind
	Pre   Instant // uses the pre-transition offset
	Trans Instant // the transition instant
	Post  Instant // uses the post-transition offset

	// Normalized reports whether any input field was outside its
	// canonical range and was folded during resolution.
	Normalized bool
}
