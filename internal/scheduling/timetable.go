package scheduling

import (
	"sync"

	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
)

// Timetable is the scheduler's output: a per-interval list of ScheduleEntry
// plus a status for every submitted vehicle (spec.md §3, §6).
type Timetable struct {
	Entries  [][]domain.ScheduleEntry // parallel to the input intervals
	Statuses map[string]domain.ScheduleStatus

	once      sync.Once
	schedules map[string]domain.VehicleSchedule
}

// GetSchedules derives, and memoizes, the per-vehicle summary: total
// charge delivered, and the tightest [arrival, departure) window spanning
// its nonzero deliveries (spec.md §6).
func (tt *Timetable) GetSchedules() map[string]domain.VehicleSchedule {
	tt.once.Do(func() {
		tt.schedules = make(map[string]domain.VehicleSchedule)
		for _, bucket := range tt.Entries {
			for _, e := range bucket {
				if e.Charge <= 0 {
					continue
				}
				existing, ok := tt.schedules[e.VehicleID]
				if !ok {
					tt.schedules[e.VehicleID] = domain.VehicleSchedule{
						Arrival:   e.Arrival,
						Departure: e.Departure,
						Charge:    e.Charge,
					}
					continue
				}
				existing.Charge += e.Charge
				if e.Departure.After(existing.Departure) {
					existing.Departure = e.Departure
				}
				if e.Arrival.Before(existing.Arrival) {
					existing.Arrival = e.Arrival
				}
				tt.schedules[e.VehicleID] = existing
			}
		}
	})
	return tt.schedules
}

// GetScheduleStatus returns the per-vehicle outcome status.
func (tt *Timetable) GetScheduleStatus() map[string]domain.ScheduleStatus {
	return tt.Statuses
}
