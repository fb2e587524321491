package domain

import (
	"testing"
	"time"
)

func TestVehicleRequest_Demand(t *testing.T) {
	v := VehicleRequest{ArrivalSoC: 50, DemandedSoC: 60, BatteryCapacity: 100}
	if got := v.Demand(); got != 10 {
		t.Errorf("Demand() = %d, want 10", got)
	}
}

func TestVehicleRequest_Demand_Floors(t *testing.T) {
	v := VehicleRequest{ArrivalSoC: 50, DemandedSoC: 55, BatteryCapacity: 33}
	// (55-50)/100*33 = 1.65 -> floor 1
	if got := v.Demand(); got != 1 {
		t.Errorf("Demand() = %d, want 1", got)
	}
}

func TestVehicleRequest_Headroom(t *testing.T) {
	v := VehicleRequest{ArrivalSoC: 50, BatteryCapacity: 100}
	if got := v.Headroom(); got != 50 {
		t.Errorf("Headroom() = %v, want 50", got)
	}
}

func TestVehicleRequest_Valid(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		v    VehicleRequest
		want bool
	}{
		{"valid", VehicleRequest{Arrival: now, Departure: now.Add(time.Hour), ArrivalSoC: 10, DemandedSoC: 90, BatteryCapacity: 50, PreferredCharger: "c1"}, true},
		{"arrival after departure", VehicleRequest{Arrival: now.Add(time.Hour), Departure: now, ArrivalSoC: 10, DemandedSoC: 90, BatteryCapacity: 50, PreferredCharger: "c1"}, false},
		{"soc out of range", VehicleRequest{Arrival: now, Departure: now.Add(time.Hour), ArrivalSoC: -1, DemandedSoC: 90, BatteryCapacity: 50, PreferredCharger: "c1"}, false},
		{"zero battery", VehicleRequest{Arrival: now, Departure: now.Add(time.Hour), ArrivalSoC: 10, DemandedSoC: 90, BatteryCapacity: 0, PreferredCharger: "c1"}, false},
		{"no charger", VehicleRequest{Arrival: now, Departure: now.Add(time.Hour), ArrivalSoC: 10, DemandedSoC: 90, BatteryCapacity: 50}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInterval_Valid(t *testing.T) {
	valid := Interval{TraditionalProd: 1, RenewablesProd: 1, Consumption: 1, MaxCapacity: 1, PriceTariff: 1}
	if !valid.Valid() {
		t.Error("expected valid interval to be valid")
	}
	negative := Interval{TraditionalProd: -1}
	if negative.Valid() {
		t.Error("expected negative production to be invalid")
	}
}

func TestInterval_Clone_DoesNotAliasSlices(t *testing.T) {
	original := Interval{AvailableChargers: []string{"a", "b"}}
	clone := original.Clone()
	clone.AvailableChargers[0] = "z"
	if original.AvailableChargers[0] != "a" {
		t.Error("Clone() aliased the AvailableChargers slice")
	}
}

func TestChargerRateTable_IntervalCapKWh(t *testing.T) {
	table := ChargerRateTable{"c1": 50}
	cap, ok := table.IntervalCapKWh("c1", 15)
	if !ok || cap != 12.5 {
		t.Errorf("IntervalCapKWh() = (%v, %v), want (12.5, true)", cap, ok)
	}
	if _, ok := table.IntervalCapKWh("missing", 15); ok {
		t.Error("expected missing charger to report ok=false")
	}
}

func TestScheduleStatus_String(t *testing.T) {
	cases := map[ScheduleStatus]string{
		StatusScheduled:          "SCHEDULED",
		StatusChargerConflict:    "CHARGER_CONFLICT",
		StatusScheduleInfeasible: "SCHEDULE_INFEASIBLE",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
