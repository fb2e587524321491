package scheduling

import (
	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
)

// unpackedVehicle is the allocator/optimiser-facing, position-indexed view
// of a VehicleRequest: arrival/departure are interval indices rather than
// timestamps, mirroring the original's dict-of-lists unpacking so the
// allocator and optimiser can address vehicles positionally.
type unpackedVehicle struct {
	id           string
	arrivalIdx   int
	departureIdx int
	demand       int     // D_v for new vehicles: floor((sD-s0)/100*B)
	totalCharge  float64 // exact mandatory total for reconstructed commitments
	headroom     float64
	chargerID    string
	capKWh       float64 // cap_v: rate(charger_v) * L / 60
	capKWhFloor  int     // floor(cap_v), the integer x upper bound
}

func (v unpackedVehicle) length() int { return v.departureIdx - v.arrivalIdx }

// unpackedIntervals is the position-indexed view of the Interval slice used
// by the allocator and optimiser.
type unpackedIntervals struct {
	traditionalProd []float64
	renewablesProd  []float64
	consumption     []float64
	maxCapacity     []float64
	priceTariff     []float64
	available       [][]string // available[t] = set of charger ids free at t
}

func newUnpackedIntervals(intervals []domain.Interval) unpackedIntervals {
	n := len(intervals)
	out := unpackedIntervals{
		traditionalProd: make([]float64, n),
		renewablesProd:  make([]float64, n),
		consumption:     make([]float64, n),
		maxCapacity:     make([]float64, n),
		priceTariff:     make([]float64, n),
		available:       make([][]string, n),
	}
	for i, iv := range intervals {
		out.traditionalProd[i] = iv.TraditionalProd
		out.renewablesProd[i] = iv.RenewablesProd
		out.consumption[i] = iv.Consumption
		out.maxCapacity[i] = iv.MaxCapacity
		out.priceTariff[i] = iv.PriceTariff
		out.available[i] = append([]string(nil), iv.AvailableChargers...)
	}
	return out
}

func (u unpackedIntervals) numIntervals() int { return len(u.traditionalProd) }

// hasCharger reports whether chargerID is free at interval t.
func (u unpackedIntervals) hasCharger(t int, chargerID string) bool {
	for _, c := range u.available[t] {
		if c == chargerID {
			return true
		}
	}
	return false
}

// removeCharger removes one occurrence of chargerID from interval t's
// available set (used by First-Choice as it greedily claims chargers).
func (u unpackedIntervals) removeCharger(t int, chargerID string) {
	for i, c := range u.available[t] {
		if c == chargerID {
			u.available[t] = append(u.available[t][:i], u.available[t][i+1:]...)
			return
		}
	}
}

// addCharger re-inserts chargerID into interval t's available set. It has
// no caller: reconstructExisting appends commitment chargers to the
// domain.Interval copies before they are unpacked.
func (u unpackedIntervals) addCharger(t int, chargerID string) {
	u.available[t] = append(u.available[t], chargerID)
}

// allocationMatrix is a |V| x |T| binary matrix; row v, column t.
type allocationMatrix [][]int

func newAllocationMatrix(numVehicles, numIntervals int) allocationMatrix {
	m := make(allocationMatrix, numVehicles)
	for i := range m {
		m[i] = make([]int, numIntervals)
	}
	return m
}

func (m allocationMatrix) rowIsZero(v int) bool {
	for _, c := range m[v] {
		if c != 0 {
			return false
		}
	}
	return true
}

// chargeMatrix is a |V| x |T| matrix of delivered kWh.
type chargeMatrix [][]float64

func newChargeMatrix(numVehicles, numIntervals int) chargeMatrix {
	m := make(chargeMatrix, numVehicles)
	for i := range m {
		m[i] = make([]float64, numIntervals)
	}
	return m
}

func (m chargeMatrix) rowIsZero(v int) bool {
	for _, c := range m[v] {
		if c != 0 {
			return false
		}
	}
	return true
}

func (m chargeMatrix) rowSum(v int) float64 {
	var sum float64
	for _, c := range m[v] {
		sum += c
	}
	return sum
}
