// Package scheduling implements the time-slot allocator, the MILP
// optimiser, and the driver that assembles a Timetable from a set of
// vehicle requests and interval records.
package scheduling

import "time"

// discretise rounds a minute offset to the nearest multiple of interval
// length L, rounding ties up. Matches the reference implementation's
// discretise_time: rem := m % L; rem==0 -> m; rem < ceil(L/2) -> round down;
// otherwise round up.
func discretise(minutes, l int) int {
	rem := minutes % l
	if rem == 0 {
		return minutes
	}
	half := (l + 1) / 2 // ceil(L/2)
	if rem < half {
		return minutes - rem
	}
	return minutes + l - rem
}

// minutesFromOrigin converts a wall-clock time to minutes elapsed since
// midnight of originDate.
func minutesFromOrigin(t, origin time.Time) int {
	days := int(t.Truncate(24*time.Hour).Sub(origin.Truncate(24*time.Hour)).Hours() / 24)
	return days*24*60 + t.Hour()*60 + t.Minute()
}

// windowOrigin returns midnight of the earliest interval's date, the basis
// for all minute-offset arithmetic (spec.md §4.1).
func windowOrigin(sortedStarts []time.Time) time.Time {
	if len(sortedStarts) == 0 {
		return time.Time{}
	}
	earliest := sortedStarts[0]
	for _, t := range sortedStarts[1:] {
		if t.Before(earliest) {
			earliest = t
		}
	}
	y, m, d := earliest.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, earliest.Location())
}

// intervalIndex computes i_v / j_v: the discretised minute offset divided
// by the interval length, i.e. the interval index relative to the window
// origin.
func intervalIndex(t, origin time.Time, l int) int {
	m := minutesFromOrigin(t, origin)
	return discretise(m, l) / l
}
