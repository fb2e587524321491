package scheduling

import (
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
)

// Scheduler is the driver described in spec.md §4.5/§6: it normalizes
// caller-supplied datetimes and vehicle parameters into interval indices,
// reconstructs prior commitments embedded in the interval data, invokes the
// allocator and optimiser, and assembles the resulting Timetable.
type Scheduler struct {
	strategy        Allocator
	rates           domain.ChargerRateTable
	intervalMinutes int
	log             *zap.Logger
}

// NewScheduler constructs a Scheduler. strategy selects the allocator used
// for newly-submitted vehicles; reconstructed existing commitments always
// use FirstChoiceAllocation regardless of strategy (spec.md §4.5 — their
// prior schedule is authoritative).
func NewScheduler(strategy Allocator, rates domain.ChargerRateTable, intervalMinutes int, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{strategy: strategy, rates: rates, intervalMinutes: intervalMinutes, log: log}
}

// Schedule runs the full pipeline and returns the assembled Timetable, or
// (nil, nil) if any input record fails validation (spec.md §6, §7). A
// non-nil error indicates an unexpected internal failure, not a rejected
// input.
func (s *Scheduler) Schedule(requests []domain.VehicleRequest, intervals []domain.Interval) (*Timetable, error) {
	if !validInputs(requests, intervals, s.rates) {
		s.log.Warn("schedule: rejected malformed input", zap.Int("vehicle_count", len(requests)), zap.Int("interval_count", len(intervals)))
		return nil, nil
	}
	if len(intervals) == 0 {
		return &Timetable{Entries: nil, Statuses: map[string]domain.ScheduleStatus{}}, nil
	}

	starts := make([]time.Time, len(intervals))
	for i, iv := range intervals {
		starts[i] = iv.Start
	}
	origin := windowOrigin(starts)
	// Indices address positions in intervals, so offsets from origin are
	// shifted back by the first interval's own index.
	base := intervalIndex(intervals[0].Start, origin, s.intervalMinutes)
	firstStart := origin.Add(time.Duration(base*s.intervalMinutes) * time.Minute)

	workingIntervals := make([]domain.Interval, len(intervals))
	for i, iv := range intervals {
		workingIntervals[i] = iv.Clone()
	}

	vehicles := make([]unpackedVehicle, len(requests))
	for i, r := range requests {
		vehicles[i] = s.unpackVehicle(r, origin)
		vehicles[i].arrivalIdx -= base
		vehicles[i].departureIdx -= base
	}

	existing := s.reconstructExisting(workingIntervals, origin)
	for i := range existing {
		existing[i].arrivalIdx -= base
	}

	unpacked := newUnpackedIntervals(workingIntervals)

	newAlloc := s.strategy.allocate(vehicles, unpacked)
	existingAlloc := FirstChoiceAllocation{}.allocate(existing, unpacked)

	result := optimise(vehicles, newAlloc, existing, existingAlloc, unpacked)

	return s.assembleTimetable(vehicles, newAlloc, result.newCharge, existing, existingAlloc, result.existingCharge, intervals, firstStart, result.feasible), nil
}

func (s *Scheduler) unpackVehicle(r domain.VehicleRequest, origin time.Time) unpackedVehicle {
	arrivalIdx := intervalIndex(r.Arrival, origin, s.intervalMinutes)
	departureIdx := intervalIndex(r.Departure, origin, s.intervalMinutes)
	capKWh, _ := s.rates.IntervalCapKWh(r.PreferredCharger, s.intervalMinutes)
	return unpackedVehicle{
		id:           r.VehicleID,
		arrivalIdx:   arrivalIdx,
		departureIdx: departureIdx,
		demand:       r.Demand(),
		headroom:     r.Headroom(),
		chargerID:    r.PreferredCharger,
		capKWh:       capKWh,
		capKWhFloor:  int(capKWh),
	}
}

// reconstructExisting groups embedded commitments by vehicle id into
// synthetic vehicle requests, and re-adds each commitment's charger id to
// the interval's available set so the allocator can re-place it (spec.md
// §4.5, §9). Departure is truncated to the interval after the last
// observed commitment interval within the window (spec.md §9(d)).
func (s *Scheduler) reconstructExisting(intervals []domain.Interval, origin time.Time) []unpackedVehicle {
	type accum struct {
		arrivalIdx   int
		lastSeenIdx  int
		chargerID    string
		totalCharge  float64
	}
	order := make([]string, 0)
	byVehicle := make(map[string]*accum)

	for t, iv := range intervals {
		for _, c := range iv.ExistingCommitments {
			a, ok := byVehicle[c.VehicleID]
			if !ok {
				a = &accum{arrivalIdx: intervalIndex(c.Arrival, origin, s.intervalMinutes), chargerID: c.ChargerID}
				byVehicle[c.VehicleID] = a
				order = append(order, c.VehicleID)
			}
			a.lastSeenIdx = t
			a.totalCharge += c.Charge
			intervals[t].AvailableChargers = append(intervals[t].AvailableChargers, c.ChargerID)
		}
	}

	out := make([]unpackedVehicle, 0, len(order))
	for _, id := range order {
		a := byVehicle[id]
		capKWh, _ := s.rates.IntervalCapKWh(a.chargerID, s.intervalMinutes)
		out = append(out, unpackedVehicle{
			id:           id,
			arrivalIdx:   a.arrivalIdx,
			departureIdx: a.lastSeenIdx + 1,
			totalCharge:  a.totalCharge,
			chargerID:    a.chargerID,
			capKWh:       capKWh,
			capKWhFloor:  int(capKWh),
		})
	}
	return out
}

func (s *Scheduler) assembleTimetable(
	vehicles []unpackedVehicle, newAlloc allocationMatrix, newCharge chargeMatrix,
	existing []unpackedVehicle, existingAlloc allocationMatrix, existingCharge chargeMatrix,
	intervals []domain.Interval, origin time.Time, feasible bool,
) *Timetable {
	numT := len(intervals)
	entries := make([][]domain.ScheduleEntry, numT)
	statuses := make(map[string]domain.ScheduleStatus, len(vehicles))

	intervalStart := func(idx int) time.Time {
		if idx < 0 {
			idx = 0
		}
		if idx > numT {
			idx = numT
		}
		return origin.Add(time.Duration(idx*s.intervalMinutes) * time.Minute)
	}

	for vi, v := range vehicles {
		if !feasible || newCharge == nil || newCharge.rowIsZero(vi) {
			if newAlloc.rowIsZero(vi) {
				statuses[v.id] = domain.StatusChargerConflict
			} else {
				statuses[v.id] = domain.StatusScheduleInfeasible
			}
			continue
		}
		statuses[v.id] = domain.StatusScheduled

		firstT, lastT := -1, -1
		for t := 0; t < numT; t++ {
			if newCharge[vi][t] > 0 {
				if firstT == -1 {
					firstT = t
				}
				lastT = t
			}
		}
		arrival := intervalStart(firstT)
		departure := intervalStart(lastT + 1)

		for t := 0; t < numT; t++ {
			if newCharge[vi][t] <= 0 {
				continue
			}
			entries[t] = append(entries[t], domain.ScheduleEntry{
				VehicleID: v.id,
				Charge:    newCharge[vi][t],
				ChargerID: v.chargerID,
				Arrival:   arrival,
				Departure: departure,
			})
		}
	}

	for ei, e := range existing {
		if existingCharge == nil {
			break
		}
		arrival := intervalStart(e.arrivalIdx)
		departure := intervalStart(e.departureIdx)
		for t := 0; t < numT; t++ {
			if existingCharge[ei][t] <= 0 {
				continue
			}
			entries[t] = append(entries[t], domain.ScheduleEntry{
				VehicleID: e.id,
				Charge:    existingCharge[ei][t],
				ChargerID: e.chargerID,
				Arrival:   arrival,
				Departure: departure,
			})
		}
	}

	return &Timetable{Entries: entries, Statuses: statuses}
}

// validInputs rejects malformed requests and intervals per spec.md §7:
// negative production/consumption/capacity, non-chronological intervals, an
// arrival >= departure request, an out-of-range SoC, or an unknown charger.
func validInputs(requests []domain.VehicleRequest, intervals []domain.Interval, rates domain.ChargerRateTable) bool {
	for i, iv := range intervals {
		if !iv.Valid() {
			return false
		}
		if i > 0 && !iv.Start.After(intervals[i-1].Start) {
			return false
		}
	}
	for _, r := range requests {
		if !r.Valid() {
			return false
		}
		if _, ok := rates[r.PreferredCharger]; !ok {
			return false
		}
	}
	return true
}
