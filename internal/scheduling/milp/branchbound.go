package milp

import "math"

// maxNodes bounds branch-and-bound exploration; the constraint structure in
// this domain (near-transportation polytope) rarely needs more than a
// handful of branches, so this is a generous ceiling rather than a tuned
// parameter.
const maxNodes = 2000

const integerTol = 1e-6

// Solve solves the model for its optimal objective value, rounding integer
// variables via branch-and-bound on top of the LP relaxation. It reports
// infeasible (via the returned bool) if the relaxation itself is infeasible
// or if no integer-feasible solution is found within the node budget.
func Solve(m *Model) (Solution, bool) {
	nodes := 0
	return branchRecursive(m, &nodes)
}

func branchRecursive(m *Model, nodes *int) (Solution, bool) {
	*nodes++
	if *nodes > maxNodes {
		return Solution{}, false
	}

	sol, err := m.solveRelaxed()
	if err != nil {
		return Solution{}, false
	}

	branchVar := -1
	for i, v := range m.Vars {
		if !v.Integer {
			continue
		}
		frac := sol.Values[i] - math.Floor(sol.Values[i])
		if frac > integerTol && frac < 1-integerTol {
			branchVar = i
			break
		}
	}
	if branchVar == -1 {
		return sol, true
	}

	floorVal := math.Floor(sol.Values[branchVar])

	// Branch 1: var <= floorVal.
	down := cloneModel(m)
	if floorVal < down.Vars[branchVar].Upper {
		down.Vars[branchVar].Upper = floorVal
	}
	downSol, downOK := branchRecursive(down, nodes)

	// Branch 2: var >= floorVal+1.
	up := cloneModel(m)
	if floorVal+1 > up.Vars[branchVar].Lower {
		up.Vars[branchVar].Lower = floorVal + 1
	}
	upSol, upOK := branchRecursive(up, nodes)

	switch {
	case downOK && upOK:
		if downSol.Objective <= upSol.Objective {
			return downSol, true
		}
		return upSol, true
	case downOK:
		return downSol, true
	case upOK:
		return upSol, true
	default:
		return Solution{}, false
	}
}

func cloneModel(m *Model) *Model {
	clone := &Model{
		Vars:        append([]Var(nil), m.Vars...),
		Constraints: m.Constraints, // constraints are never mutated by branching
		Objective:   m.Objective,
	}
	return clone
}
