package scheduling

import "math"

// Allocator produces a binary vehicle x interval availability matrix,
// respecting charger conflicts and each vehicle's arrival/departure window
// (spec.md §4.2). Implemented as a family of variants sharing one entry
// point, rather than an inheritance hierarchy (spec.md §9).
type Allocator interface {
	allocate(vehicles []unpackedVehicle, intervals unpackedIntervals) allocationMatrix
}

// FirstChoiceAllocation greedily places each vehicle, in input order, into
// its entire requested window or not at all.
type FirstChoiceAllocation struct{}

func (FirstChoiceAllocation) allocate(vehicles []unpackedVehicle, intervals unpackedIntervals) allocationMatrix {
	a := newAllocationMatrix(len(vehicles), intervals.numIntervals())
	for vi, v := range vehicles {
		feasible := true
		for t := v.arrivalIdx; t < v.departureIdx; t++ {
			if !intervals.hasCharger(t, v.chargerID) {
				feasible = false
				break
			}
		}
		if !feasible {
			continue // row stays zero: no partial allocation
		}
		for t := v.arrivalIdx; t < v.departureIdx; t++ {
			a[vi][t] = 1
			intervals.removeCharger(t, v.chargerID)
		}
	}
	return a
}

// offsetAllocation is the shared skeleton behind Most-Renewables and
// Cheapest-Pricing: enumerate schedule-window offsets around the vehicle's
// arrival, score each feasible span, and place the vehicle at the
// best-scoring offset.
type offsetAllocation struct {
	offset int // default 10

	// spanScore accumulates this interval's contribution to a span's score.
	spanScore func(intervals unpackedIntervals, t int) float64

	// pick selects the winning index among scored offsets (max for
	// Most-Renewables, min for Cheapest-Pricing).
	pick func(scores []float64) int

	// infeasible is the sentinel assigned to a span that cannot satisfy
	// demand or lacks the vehicle's charger: -inf when pick is argmax (so
	// it is never chosen as a maximum), +inf when pick is argmin (so it is
	// never chosen as a minimum).
	infeasible float64
}

func defaultOffset() int { return 10 }

func (oa offsetAllocation) allocate(vehicles []unpackedVehicle, intervals unpackedIntervals) allocationMatrix {
	a := newAllocationMatrix(len(vehicles), intervals.numIntervals())
	numT := intervals.numIntervals()

	for vi, v := range vehicles {
		length := v.length()
		var tsOffsets []int
		var scores []float64

		for o := -oa.offset; o <= oa.offset; o++ {
			offset := o
			start := v.arrivalIdx + offset
			end := start + length
			if start < 0 || end > numT {
				// Out-of-window offsets fall back to the vehicle's own
				// arrival window rather than being skipped (spec.md
				// §9(c)): the fallback span is then scored exactly like
				// any other candidate, not assigned a hardcoded score.
				offset = 0
				start = v.arrivalIdx
				end = start + length
			}

			feasible := true
			var minPossibleTotal float64
			var score float64
			for t := start; t < end; t++ {
				if !intervals.hasCharger(t, v.chargerID) {
					feasible = false
				}
				cap := v.capKWh
				prodAvailable := intervals.traditionalProd[t] + intervals.renewablesProd[t]
				if prodAvailable >= cap {
					minPossibleTotal += cap
				} else {
					minPossibleTotal += prodAvailable
				}
				score += oa.spanScore(intervals, t)
			}
			if !feasible || minPossibleTotal < float64(v.demand) {
				tsOffsets = append(tsOffsets, offset)
				scores = append(scores, oa.infeasible)
				continue
			}
			tsOffsets = append(tsOffsets, offset)
			scores = append(scores, score)
		}

		best := oa.pick(scores)
		chosenOffset := tsOffsets[best]
		start := v.arrivalIdx + chosenOffset
		end := start + length
		if scores[best] == oa.infeasible || start < 0 || end > numT {
			continue // no feasible span: row stays zero
		}
		for t := start; t < end; t++ {
			a[vi][t] = 1
		}
	}
	return a
}

// MostRenewablesAllocation maximizes the total renewable production
// available over the chosen span.
type MostRenewablesAllocation struct {
	Offset int
}

func (m MostRenewablesAllocation) allocate(vehicles []unpackedVehicle, intervals unpackedIntervals) allocationMatrix {
	offset := m.Offset
	if offset == 0 {
		offset = defaultOffset()
	}
	oa := offsetAllocation{
		offset: offset,
		spanScore: func(intervals unpackedIntervals, t int) float64 {
			return intervals.renewablesProd[t]
		},
		pick:       argmax,
		infeasible: math.Inf(-1),
	}
	return oa.allocate(vehicles, intervals)
}

// CheapestPricingAllocation minimizes the total price tariff over the
// chosen span. The original implementation (verified against
// original_source/simulation/scheduler/lp_scheduler.py) truly minimizes via
// `min()`, not an inverted max — spec.md §9(a) resolved in DESIGN.md.
type CheapestPricingAllocation struct {
	Offset int
}

func (c CheapestPricingAllocation) allocate(vehicles []unpackedVehicle, intervals unpackedIntervals) allocationMatrix {
	offset := c.Offset
	if offset == 0 {
		offset = defaultOffset()
	}
	oa := offsetAllocation{
		offset: offset,
		spanScore: func(intervals unpackedIntervals, t int) float64 {
			return intervals.priceTariff[t]
		},
		pick:       argmin,
		infeasible: math.Inf(1),
	}
	return oa.allocate(vehicles, intervals)
}

func argmax(scores []float64) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}

func argmin(scores []float64) int {
	best := 0
	for i, s := range scores {
		if s < scores[best] {
			best = i
		}
	}
	return best
}
