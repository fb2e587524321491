package scheduling

import "testing"

func makeIntervals(n int) unpackedIntervals {
	u := unpackedIntervals{
		traditionalProd: make([]float64, n),
		renewablesProd:  make([]float64, n),
		consumption:     make([]float64, n),
		maxCapacity:     make([]float64, n),
		priceTariff:     make([]float64, n),
		available:       make([][]string, n),
	}
	for i := range u.available {
		u.available[i] = []string{"c0", "c1", "c2"}
	}
	return u
}

func TestFirstChoiceAllocation_GrantsFullWindow(t *testing.T) {
	intervals := makeIntervals(3)
	vehicles := []unpackedVehicle{
		{id: "v1", arrivalIdx: 0, departureIdx: 3, chargerID: "c0"},
	}
	a := FirstChoiceAllocation{}.allocate(vehicles, intervals)
	for t := 0; t < 3; t++ {
		if a[0][t] != 1 {
			t.Errorf("expected allocation at t=%d", t)
		}
	}
}

func TestFirstChoiceAllocation_ConflictZeroesRow(t *testing.T) {
	intervals := makeIntervals(2)
	intervals.available[1] = []string{} // c0 unavailable at t=1
	vehicles := []unpackedVehicle{
		{id: "v1", arrivalIdx: 0, departureIdx: 2, chargerID: "c0"},
	}
	a := FirstChoiceAllocation{}.allocate(vehicles, intervals)
	if !a.rowIsZero(0) {
		t.Error("expected conflicted vehicle's row to be entirely zero")
	}
}

func TestFirstChoiceAllocation_InputOrderWins(t *testing.T) {
	intervals := makeIntervals(1)
	intervals.available[0] = []string{"c0"}
	vehicles := []unpackedVehicle{
		{id: "first", arrivalIdx: 0, departureIdx: 1, chargerID: "c0"},
		{id: "second", arrivalIdx: 0, departureIdx: 1, chargerID: "c0"},
	}
	a := FirstChoiceAllocation{}.allocate(vehicles, intervals)
	if a[0][0] != 1 {
		t.Error("expected earlier-indexed vehicle to win the charger")
	}
	if a[1][0] != 0 {
		t.Error("expected later-indexed vehicle to lose the charger")
	}
}

func TestFirstChoiceAllocation_SingleIntervalWindowIsNonEmpty(t *testing.T) {
	// spec.md §9(e): departure == arrival+L yields exactly one interval.
	intervals := makeIntervals(1)
	vehicles := []unpackedVehicle{{id: "v1", arrivalIdx: 0, departureIdx: 1, chargerID: "c0"}}
	a := FirstChoiceAllocation{}.allocate(vehicles, intervals)
	if a[0][0] != 1 {
		t.Error("expected single-interval window to receive exactly one allocated interval")
	}
}

func TestMostRenewablesAllocation_PicksHighestRenewablesSpan(t *testing.T) {
	intervals := makeIntervals(5)
	intervals.renewablesProd = []float64{0, 0, 30, 0, 0}
	intervals.traditionalProd = []float64{20, 20, 20, 20, 20}
	vehicles := []unpackedVehicle{
		{id: "v1", arrivalIdx: 2, departureIdx: 3, demand: 10, capKWh: 50, chargerID: "c0"},
	}
	a := MostRenewablesAllocation{Offset: 2}.allocate(vehicles, intervals)
	if a[0][2] != 1 {
		t.Errorf("expected allocation at the highest-renewables interval, row = %v", a[0])
	}
}

func TestCheapestPricingAllocation_PicksLowestTariffSpan(t *testing.T) {
	intervals := makeIntervals(5)
	intervals.traditionalProd = []float64{20, 20, 20, 20, 20}
	intervals.priceTariff = []float64{10, 10, 1, 10, 10}
	vehicles := []unpackedVehicle{
		{id: "v1", arrivalIdx: 2, departureIdx: 3, demand: 10, capKWh: 50, chargerID: "c0"},
	}
	a := CheapestPricingAllocation{Offset: 2}.allocate(vehicles, intervals)
	if a[0][2] != 1 {
		t.Errorf("expected allocation at the cheapest interval, row = %v", a[0])
	}
}
