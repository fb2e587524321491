// Package milp builds and solves the mixed-integer linear program behind
// the scheduler's optimiser: a lexicographic three-stage objective over
// per-vehicle charge, shortfall, existing-commitment delivery, and
// production-use variables, solved via gonum's simplex LP relaxation with a
// branch-and-bound layer for the integer charge variables.
package milp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Sense is the comparison operator of a linear constraint.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

// Var is a bounded decision variable. Integer marks variables that must be
// rounded to whole numbers by branch-and-bound after the LP relaxation.
type Var struct {
	Name    string
	Lower   float64
	Upper   float64
	Integer bool
}

// Term is one (variable, coefficient) pair inside a Constraint.
type Term struct {
	Var   int
	Coeff float64
}

// Constraint is a single linear constraint over a subset of variables.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is a bounded-variable linear program in the scheduler's domain
// terms; it is translated to gonum's equality-only, nonnegative-variable
// standard form by toStandardForm.
type Model struct {
	Vars        []Var
	Constraints []Constraint
	Objective   []float64 // length len(Vars); minimize sum(Objective[i] * x[i])
}

// AddVar appends a variable and returns its index.
func (m *Model) AddVar(v Var) int {
	m.Vars = append(m.Vars, v)
	m.Objective = append(m.Objective, 0)
	return len(m.Vars) - 1
}

// AddConstraint appends a constraint.
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// SetObjective overwrites the minimization coefficient for variable i.
func (m *Model) SetObjective(i int, coeff float64) {
	m.Objective[i] = coeff
}

// Solution is the result of solving the LP relaxation of a Model.
type Solution struct {
	Values    []float64 // one per Model.Vars, in original (unshifted) units
	Objective float64
}

// standardForm is the gonum-ready translation of a Model: equality
// constraints only, all variables nonnegative.
type standardForm struct {
	numOrigVars int
	shift       []float64 // x_i = shift[i] + x'_i
	numCols     int
	rows        [][]float64
	rhs         []float64
	c           []float64
}

func (m *Model) toStandardForm() (*standardForm, error) {
	n := len(m.Vars)
	sf := &standardForm{numOrigVars: n, shift: make([]float64, n)}

	// Every original variable becomes x_i = lower_i + x'_i, x'_i >= 0.
	// A finite upper bound becomes an extra <= constraint on x'_i.
	numCols := n
	var boundRows [][]float64
	var boundRHS []float64
	for i, v := range m.Vars {
		if math.IsInf(v.Lower, -1) {
			return nil, fmt.Errorf("milp: variable %q has unbounded lower bound", v.Name)
		}
		sf.shift[i] = v.Lower
		if !math.IsInf(v.Upper, 1) {
			row := make([]float64, numCols+1) // +1 for this bound's own slack, appended below
			row[i] = 1
			boundRows = append(boundRows, row)
			boundRHS = append(boundRHS, v.Upper-v.Lower)
		}
	}

	// Append one slack column per bounded variable.
	for range boundRows {
		numCols++
	}
	for i, row := range boundRows {
		full := make([]float64, numCols)
		copy(full, row[:n])
		full[n+i] = 1
		boundRows[i] = full
	}

	rows := append([][]float64{}, boundRows...)
	rhs := append([]float64{}, boundRHS...)

	for _, cons := range m.Constraints {
		row := make([]float64, numCols)
		var constShift float64
		for _, t := range cons.Terms {
			row[t.Var] += t.Coeff
			constShift += t.Coeff * sf.shift[t.Var]
		}
		target := cons.RHS - constShift

		switch cons.Sense {
		case EQ:
			rows = append(rows, row)
			rhs = append(rhs, target)
		case LE:
			numCols++
			for i := range rows {
				rows[i] = append(rows[i], 0)
			}
			row = append(row, 1)
			rows = append(rows, row)
			rhs = append(rhs, target)
		case GE:
			numCols++
			for i := range rows {
				rows[i] = append(rows[i], 0)
			}
			row = append(row, -1)
			rows = append(rows, row)
			rhs = append(rhs, target)
		}
	}

	// Pad every row to the final column count (slack columns added after a
	// row was created need to be appended to earlier rows too).
	for i := range rows {
		for len(rows[i]) < numCols {
			rows[i] = append(rows[i], 0)
		}
	}

	c := make([]float64, numCols)
	copy(c, m.Objective)

	sf.numCols = numCols
	sf.rows = rows
	sf.rhs = rhs
	sf.c = c
	return sf, nil
}

// solveRelaxed solves the continuous relaxation of the model (integrality
// ignored) and returns variable values in the model's original units.
func (m *Model) solveRelaxed() (Solution, error) {
	sf, err := m.toStandardForm()
	if err != nil {
		return Solution{}, err
	}
	if len(sf.rows) == 0 {
		// No constraints: optimum is every variable at its lower bound.
		values := append([]float64{}, sf.shift...)
		return Solution{Values: values, Objective: dot(m.Objective, values)}, nil
	}

	dense := mat.NewDense(len(sf.rows), sf.numCols, nil)
	for i, row := range sf.rows {
		for j, v := range row {
			dense.Set(i, j, v)
		}
	}

	optF, optX, err := lp.Simplex(nil, sf.c, dense, sf.rhs, 1e-10)
	if err != nil {
		return Solution{}, err
	}

	values := make([]float64, sf.numOrigVars)
	for i := 0; i < sf.numOrigVars; i++ {
		values[i] = sf.shift[i] + optX[i]
	}
	return Solution{Values: values, Objective: optF}, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
