package scheduling

import (
	"testing"
	"time"
)

func TestDiscretise(t *testing.T) {
	cases := []struct {
		minutes, l, want int
	}{
		{0, 15, 0},
		{15, 15, 15},
		{7, 15, 0},  // rem=7 < ceil(15/2)=8 -> round down
		{8, 15, 15}, // rem=8 >= 8 -> round up (tie rounds up)
		{22, 15, 15},
		{23, 15, 30},
	}
	for _, tc := range cases {
		if got := discretise(tc.minutes, tc.l); got != tc.want {
			t.Errorf("discretise(%d, %d) = %d, want %d", tc.minutes, tc.l, got, tc.want)
		}
	}
}

func TestWindowOrigin(t *testing.T) {
	loc := time.UTC
	t1 := time.Date(2026, 7, 30, 15, 30, 0, 0, loc)
	t2 := time.Date(2026, 7, 30, 16, 0, 0, 0, loc)
	origin := windowOrigin([]time.Time{t2, t1})
	want := time.Date(2026, 7, 30, 0, 0, 0, 0, loc)
	if !origin.Equal(want) {
		t.Errorf("windowOrigin() = %v, want %v", origin, want)
	}
}

func TestIntervalIndex(t *testing.T) {
	loc := time.UTC
	origin := time.Date(2026, 7, 30, 0, 0, 0, 0, loc)
	at := time.Date(2026, 7, 30, 15, 30, 0, 0, loc)
	if got := intervalIndex(at, origin, 15); got != 62 {
		t.Errorf("intervalIndex() = %d, want 62", got)
	}
}
