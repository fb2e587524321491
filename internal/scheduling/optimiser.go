package scheduling

import (
	"github.com/seu-repo/ev-charge-scheduler/internal/scheduling/milp"
)

// lexTolerance is the slack allowed when locking a prior lexicographic
// stage's optimum before solving the next stage (spec.md §9).
const lexTolerance = 1e-6

// optimiserResult holds the two charge matrices the optimiser returns: one
// for new vehicles (may be partially delivered) and one for existing
// commitments (delivered exactly).
type optimiserResult struct {
	newCharge      chargeMatrix
	existingCharge chargeMatrix
	feasible       bool
}

// optimise builds and solves the lexicographic MILP described in spec.md
// §4.3: minimize total shortfall, then maximize renewables use, then
// minimize cost, each stage locking the previous stage's optimum.
func optimise(vehicles []unpackedVehicle, newAlloc allocationMatrix, existing []unpackedVehicle, existingAlloc allocationMatrix, intervals unpackedIntervals) optimiserResult {
	numT := intervals.numIntervals()

	m := &milp.Model{}

	xVar := make(map[[2]int]int) // (vehicleIdx, t) -> var index
	dVar := make([]int, len(vehicles))
	yVar := make(map[[2]int]int)
	uTrad := make([]int, numT)
	uRen := make([]int, numT)
	sink := make([]int, numT)

	for vi, v := range vehicles {
		for t := 0; t < numT; t++ {
			if newAlloc[vi][t] == 0 {
				continue
			}
			idx := m.AddVar(milp.Var{Name: "x", Lower: 0, Upper: float64(v.capKWhFloor), Integer: true})
			xVar[[2]int{vi, t}] = idx
		}
		dVar[vi] = m.AddVar(milp.Var{Name: "d", Lower: 0, Upper: infUpper(v.demand)})
	}

	for ei, e := range existing {
		for t := 0; t < numT; t++ {
			if existingAlloc[ei][t] == 0 {
				continue
			}
			idx := m.AddVar(milp.Var{Name: "y", Lower: 0, Upper: e.capKWh})
			yVar[[2]int{ei, t}] = idx
		}
	}

	for t := 0; t < numT; t++ {
		uTrad[t] = m.AddVar(milp.Var{Name: "u_trad", Lower: 0, Upper: intervals.traditionalProd[t]})
		uRen[t] = m.AddVar(milp.Var{Name: "u_ren", Lower: 0, Upper: intervals.renewablesProd[t]})
		sink[t] = m.AddVar(milp.Var{Name: "sink", Lower: 0, Upper: intervals.traditionalProd[t] + intervals.renewablesProd[t]})
	}

	// 2. Battery headroom: sum_t x[v][t] <= H_v.
	for vi, v := range vehicles {
		var terms []milp.Term
		for t := 0; t < numT; t++ {
			if idx, ok := xVar[[2]int{vi, t}]; ok {
				terms = append(terms, milp.Term{Var: idx, Coeff: 1})
			}
		}
		if len(terms) > 0 {
			m.AddConstraint(milp.Constraint{Name: "headroom", Terms: terms, Sense: milp.LE, RHS: v.headroom})
		}
	}

	// 3. Demand closure: sum_t x[v][t] + d_v == D_v.
	for vi, v := range vehicles {
		terms := []milp.Term{{Var: dVar[vi], Coeff: 1}}
		for t := 0; t < numT; t++ {
			if idx, ok := xVar[[2]int{vi, t}]; ok {
				terms = append(terms, milp.Term{Var: idx, Coeff: 1})
			}
		}
		m.AddConstraint(milp.Constraint{Name: "demand", Terms: terms, Sense: milp.EQ, RHS: float64(v.demand)})
	}

	// 4. Existing-commitment closure: sum_t y[e][t] == totalCharge_e.
	for ei, e := range existing {
		var terms []milp.Term
		for t := 0; t < numT; t++ {
			if idx, ok := yVar[[2]int{ei, t}]; ok {
				terms = append(terms, milp.Term{Var: idx, Coeff: 1})
			}
		}
		if len(terms) > 0 {
			m.AddConstraint(milp.Constraint{Name: "existing_closure", Terms: terms, Sense: milp.EQ, RHS: e.totalCharge})
		}
	}

	// 5. Equilibrium per interval: u_trad+u_ren == sum_v x[v][t] + sum_e y[e][t] + C_t.
	for t := 0; t < numT; t++ {
		terms := []milp.Term{{Var: uTrad[t], Coeff: 1}, {Var: uRen[t], Coeff: 1}}
		for vi := range vehicles {
			if idx, ok := xVar[[2]int{vi, t}]; ok {
				terms = append(terms, milp.Term{Var: idx, Coeff: -1})
			}
		}
		for ei := range existing {
			if idx, ok := yVar[[2]int{ei, t}]; ok {
				terms = append(terms, milp.Term{Var: idx, Coeff: -1})
			}
		}
		m.AddConstraint(milp.Constraint{Name: "equilibrium", Terms: terms, Sense: milp.EQ, RHS: intervals.consumption[t]})
	}

	// 6. Production balance per interval: u_trad+u_ren+sink == P_t+R_t.
	for t := 0; t < numT; t++ {
		terms := []milp.Term{
			{Var: uTrad[t], Coeff: 1},
			{Var: uRen[t], Coeff: 1},
			{Var: sink[t], Coeff: 1},
		}
		rhs := intervals.traditionalProd[t] + intervals.renewablesProd[t]
		m.AddConstraint(milp.Constraint{Name: "production_balance", Terms: terms, Sense: milp.EQ, RHS: rhs})
	}

	// 7. Capacity per interval: u_trad+u_ren <= M_t.
	for t := 0; t < numT; t++ {
		terms := []milp.Term{{Var: uTrad[t], Coeff: 1}, {Var: uRen[t], Coeff: 1}}
		m.AddConstraint(milp.Constraint{Name: "capacity", Terms: terms, Sense: milp.LE, RHS: intervals.maxCapacity[t]})
	}

	// Stage 1: minimize total shortfall.
	stage1 := make([]milp.Term, 0, len(dVar))
	for _, idx := range dVar {
		stage1 = append(stage1, milp.Term{Var: idx, Coeff: 1})
	}
	setObjective(m, stage1)
	sol1, ok := milp.Solve(m)
	if !ok {
		return optimiserResult{feasible: false}
	}
	lockStage(m, stage1, sol1.Objective)

	// Stage 2: minimize -sum(u_ren), i.e. maximize renewables use.
	stage2 := make([]milp.Term, 0, numT)
	for t := 0; t < numT; t++ {
		stage2 = append(stage2, milp.Term{Var: uRen[t], Coeff: -1})
	}
	setObjective(m, stage2)
	sol2, ok := milp.Solve(m)
	if !ok {
		return optimiserResult{feasible: false}
	}
	lockStage(m, stage2, sol2.Objective)

	// Stage 3: minimize sum(x[v][t] * tariff_t).
	var stage3 []milp.Term
	for vi := range vehicles {
		for t := 0; t < numT; t++ {
			if idx, ok := xVar[[2]int{vi, t}]; ok {
				stage3 = append(stage3, milp.Term{Var: idx, Coeff: intervals.priceTariff[t]})
			}
		}
	}
	setObjective(m, stage3)
	sol3, ok := milp.Solve(m)
	if !ok {
		return optimiserResult{feasible: false}
	}

	newC := newChargeMatrix(len(vehicles), numT)
	for vi := range vehicles {
		for t := 0; t < numT; t++ {
			if idx, ok := xVar[[2]int{vi, t}]; ok {
				newC[vi][t] = sol3.Values[idx]
			}
		}
	}
	existingC := newChargeMatrix(len(existing), numT)
	for ei := range existing {
		for t := 0; t < numT; t++ {
			if idx, ok := yVar[[2]int{ei, t}]; ok {
				existingC[ei][t] = sol3.Values[idx]
			}
		}
	}

	return optimiserResult{newCharge: newC, existingCharge: existingC, feasible: true}
}

func setObjective(m *milp.Model, terms []milp.Term) {
	for i := range m.Objective {
		m.Objective[i] = 0
	}
	for _, t := range terms {
		m.Objective[t.Var] += t.Coeff
	}
}

func lockStage(m *milp.Model, terms []milp.Term, optimum float64) {
	m.AddConstraint(milp.Constraint{
		Name:  "lex_lock",
		Terms: append([]milp.Term(nil), terms...),
		Sense: milp.LE,
		RHS:   optimum + lexTolerance,
	})
}

func infUpper(demand int) float64 {
	if demand <= 0 {
		return 0
	}
	return float64(demand)
}
