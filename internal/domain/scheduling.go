package domain

import "time"

// ScheduleStatus is the outcome of attempting to schedule a vehicle.
type ScheduleStatus int

const (
	StatusScheduled ScheduleStatus = iota
	StatusChargerConflict
	StatusScheduleInfeasible
)

func (s ScheduleStatus) String() string {
	switch s {
	case StatusScheduled:
		return "SCHEDULED"
	case StatusChargerConflict:
		return "CHARGER_CONFLICT"
	case StatusScheduleInfeasible:
		return "SCHEDULE_INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// Commitment is a previously-decided placement of a vehicle on a charger
// during one interval. Commitments are supplied embedded in the Interval
// they belong to and are treated as fixed constraints by the scheduler.
type Commitment struct {
	VehicleID string    `json:"vehicle_id" gorm:"index"`
	ChargerID string    `json:"charger_id" gorm:"index"`
	Charge    float64   `json:"charge_kwh"`
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
}

// Valid reports whether the commitment satisfies spec.md §3's invariants.
func (c Commitment) Valid() bool {
	if c.Charge < 0 {
		return false
	}
	if c.VehicleID == "" || c.ChargerID == "" {
		return false
	}
	return !c.Arrival.After(c.Departure)
}

// Interval is one fixed-length slot of the scheduling window.
type Interval struct {
	Start              time.Time
	TraditionalProd    float64
	RenewablesProd     float64
	Consumption        float64
	MaxCapacity        float64
	AvailableChargers  []string
	PriceTariff        float64
	ExistingCommitments []Commitment
}

// Valid checks the nonnegativity invariants from spec.md §3.
func (iv Interval) Valid() bool {
	if iv.TraditionalProd < 0 || iv.RenewablesProd < 0 || iv.Consumption < 0 {
		return false
	}
	if iv.MaxCapacity < 0 || iv.PriceTariff < 0 {
		return false
	}
	for _, c := range iv.ExistingCommitments {
		if !c.Valid() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the interval's mutable available-charger set,
// so the scheduler never mutates caller-owned inputs (spec.md §9).
func (iv Interval) Clone() Interval {
	out := iv
	out.AvailableChargers = append([]string(nil), iv.AvailableChargers...)
	out.ExistingCommitments = append([]Commitment(nil), iv.ExistingCommitments...)
	return out
}

// VehicleRequest is a caller-submitted request for a charging session.
type VehicleRequest struct {
	VehicleID       string
	Arrival         time.Time
	Departure       time.Time
	ArrivalSoC      float64
	DemandedSoC     float64
	BatteryCapacity float64
	PreferredCharger string
}

// Valid checks the invariants from spec.md §3.
func (v VehicleRequest) Valid() bool {
	if !v.Arrival.Before(v.Departure) {
		return false
	}
	if v.ArrivalSoC < 0 || v.ArrivalSoC > 100 {
		return false
	}
	if v.DemandedSoC < 0 || v.DemandedSoC > 100 {
		return false
	}
	if v.BatteryCapacity <= 0 {
		return false
	}
	if v.PreferredCharger == "" {
		return false
	}
	return true
}

// Demand returns the integer kWh the vehicle must be delivered: D_v.
func (v VehicleRequest) Demand() int {
	kwh := (v.DemandedSoC - v.ArrivalSoC) / 100 * v.BatteryCapacity
	if kwh < 0 {
		kwh = 0
	}
	return int(kwh)
}

// Headroom returns the physical maximum kWh the vehicle can accept: H_v.
func (v VehicleRequest) Headroom() float64 {
	return (100 - v.ArrivalSoC) / 100 * v.BatteryCapacity
}

// ChargerRateTable maps charger id to maximum charging power in kW.
type ChargerRateTable map[string]float64

// IntervalCapKWh returns the per-interval delivery cap for a charger at the
// given interval length (minutes): rate * L / 60.
func (t ChargerRateTable) IntervalCapKWh(chargerID string, intervalMinutes int) (float64, bool) {
	rate, ok := t[chargerID]
	if !ok {
		return 0, false
	}
	return rate * float64(intervalMinutes) / 60, true
}

// ScheduleEntry is one row of the output Timetable: a vehicle's delivery
// during one interval.
type ScheduleEntry struct {
	VehicleID string
	Charge    float64
	ChargerID string
	Arrival   time.Time
	Departure time.Time
}

// VehicleSchedule is the derived summary returned by Timetable.GetSchedules.
type VehicleSchedule struct {
	Arrival   time.Time
	Departure time.Time
	Charge    float64
}
