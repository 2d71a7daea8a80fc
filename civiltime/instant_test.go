package civiltime

import (
	"testing"
	"time"
)

func TestUnixFoldsNanoseconds(t *testing.T) {
	cases := []struct {
		sec, nsec     int64
		wantSec       int64
		wantSubsecond time.Duration
	}{
		{0, 0, 0, 0},
		{0, 1500000000, 1, 500 * time.Millisecond},
		{0, -1, -1, 999999999},
		{10, -2500000000, 7, 500 * time.Millisecond},
		{-1, 500000000, -1, 500 * time.Millisecond},
	}
	for _, c := range cases {
		got := Unix(c.sec, c.nsec)
		if got.UnixSeconds() != c.wantSec || got.Subsecond() != c.wantSubsecond {
			t.Errorf("Unix(%d, %d) = (%d, %v), want (%d, %v)",
				c.sec, c.nsec, got.UnixSeconds(), got.Subsecond(), c.wantSec, c.wantSubsecond)
		}
	}
}

func TestInstantOrdering(t *testing.T) {
	a := Unix(1, 0)
	b := Unix(1, 1)
	c := Unix(2, 0)

	if !a.Before(b) || !b.Before(c) || !a.Before(c) {
		t.Error("Before is not transitive over (sec, nsec)")
	}
	if !c.After(a) {
		t.Error("c.After(a) = false")
	}
	if !a.Equal(Unix(1, 0)) {
		t.Error("a.Equal(a) = false")
	}
	if a.Compare(b) != -1 || b.Compare(a) != +1 || a.Compare(a) != 0 {
		t.Error("Compare disagrees with Before/After")
	}
}

func TestInstantAdd(t *testing.T) {
	a := Unix(10, 500000000)
	if got := a.Add(750 * time.Millisecond); got != Unix(11, 250000000) {
		t.Errorf("Add(750ms) = %+v", got)
	}
	if got := a.Add(-time.Second); got != Unix(9, 500000000) {
		t.Errorf("Add(-1s) = %+v", got)
	}
	if got := a.AddSeconds(-11); got != Unix(-1, 500000000) {
		t.Errorf("AddSeconds(-11) = %+v", got)
	}
}

func TestFromTime(t *testing.T) {
	tt := time.Date(2015, time.September, 22, 9, 35, 0, 250000000, time.UTC)
	got := FromTime(tt)
	if got.UnixSeconds() != tt.Unix() || got.Subsecond() != 250*time.Millisecond {
		t.Errorf("FromTime = (%d, %v)", got.UnixSeconds(), got.Subsecond())
	}
}
