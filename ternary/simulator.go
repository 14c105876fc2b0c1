// Package ternary implements three-valued (0, 1, X) simulation over the
// combinational portion of a finite-state transition system. It is used to
// minimize predecessor and bad cubes by greedily dropping literals and
// checking that the relevant observable outputs stay determined, the way
// classical/gates.go's topological Circuit.Simulate walks a combinational
// netlist in one pass -- generalized here to three-valued logic and to
// weight-ordered literal dropping instead of a fixed evaluation order.
package ternary

import (
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/fsts"
)

// Value is a three-valued simulation value.
type Value int8

const (
	X Value = iota
	Zero
	One
)

func litValue(v Value, negated bool) Value {
	if !negated || v == X {
		return v
	}
	if v == Zero {
		return One
	}
	return Zero
}

// Simulator evaluates System.Gates in the topological order AIGER numbering
// guarantees (every gate's inputs reference lower-numbered variables), and
// maintains the per-state-literal weight table used to order dropping
// attempts during generalization.
type Simulator struct {
	sys     *fsts.System
	weights map[cnf.Variable]float64
	decay   float64
}

// New builds a Simulator for sys and attaches it as sys.Sim, completing the
// handle the FSTS needs to run simulation-backed operations without fsts
// importing this package.
func New(sys *fsts.System, decay float64) *Simulator {
	s := &Simulator{sys: sys, weights: make(map[cnf.Variable]float64), decay: decay}
	sys.Sim = s
	return s
}

// Weight returns v's current dropping priority; lower drops first.
func (s *Simulator) Weight(v cnf.Variable) float64 { return s.weights[v] }

// DecayWeights multiplies the weight of each variable in vars by s.decay,
// called after a successful generalization step.
func (s *Simulator) DecayWeights(vars []cnf.Variable) {
	for _, v := range vars {
		s.weights[v] *= s.decay
	}
}

type assignment map[cnf.Variable]Value

func (a assignment) set(l cnf.Literal) {
	v := One
	if l.Negated {
		v = Zero
	}
	a[l.Var] = v
}

func (a assignment) eval(l cnf.Literal) Value {
	return litValue(a[l.Var], l.Negated)
}

// propagate evaluates every gate given the current input/state assignment
// and returns the completed assignment including internal gate outputs.
func (s *Simulator) propagate(a assignment) assignment {
	for _, g := range s.sys.Gates {
		av, bv := a.eval(g.A), a.eval(g.B)
		var out Value
		switch {
		case av == Zero || bv == Zero:
			out = Zero
		case av == One && bv == One:
			out = One
		default:
			out = X
		}
		a[g.Out] = out
	}
	return a
}

func fromCubes(cubes ...cnf.Cube) assignment {
	a := make(assignment)
	a[0] = Zero // variable 0 is the AIGER constant-false wire
	for _, q := range cubes {
		for _, l := range q.Literals {
			a.set(l)
		}
	}
	return a
}

// ImplicationsOf assigns every internal signal implied by a (state, input)
// pair and returns them as a cube over gate-output variables.
func (s *Simulator) ImplicationsOf(state, input cnf.Cube) cnf.Cube {
	a := s.propagate(fromCubes(state, input))
	lits := make([]cnf.Literal, 0, len(s.sys.Gates))
	for _, g := range s.sys.Gates {
		switch a[g.Out] {
		case One:
			lits = append(lits, cnf.Pos(g.Out))
		case Zero:
			lits = append(lits, cnf.Neg(g.Out))
		}
	}
	return cnf.NewCube(lits...)
}

// badForced reports whether, under assignment a, some bad literal of the
// system evaluates definitely true.
func (s *Simulator) badForced(a assignment) bool {
	for _, b := range s.sys.Bad {
		if a.eval(b) == One {
			return true
		}
	}
	return false
}

// SimplifyBadCube greedily drops literals (lowest weight first) from state,
// then from input, while the remaining assignment still forces some bad
// output true.
func (s *Simulator) SimplifyBadCube(state, input cnf.Cube) (cnf.Cube, cnf.Cube) {
	lits := append([]cnf.Literal(nil), state.Literals...)
	cnf.SortByWeight(lits, s.Weight, s.sys.IsStateVariable)

	kept := lits
	for i := 0; i < len(kept); {
		trial := dropAt(kept, i)
		a := s.propagate(fromCubes(cnf.NewCube(trial...), input))
		if s.badForced(a) {
			kept = trial
			continue
		}
		i++
	}

	keptInput := append([]cnf.Literal(nil), input.Literals...)
	for i := 0; i < len(keptInput); {
		trial := dropAt(keptInput, i)
		a := s.propagate(fromCubes(cnf.NewCube(kept...), cnf.NewCube(trial...)))
		if s.badForced(a) {
			keptInput = trial
			continue
		}
		i++
	}

	vars := make([]cnf.Variable, len(kept))
	for i, l := range kept {
		vars[i] = l.Var
	}
	s.DecayWeights(vars)
	return cnf.NewCube(kept...), cnf.NewCube(keptInput...)
}

// successorForced reports whether, under assignment a, every latch's next()
// value matches the polarity required by successor -- i.e. the transition
// from this (state, input) still reaches successor.
func (s *Simulator) successorForced(a assignment, successor cnf.Cube) bool {
	if len(successor.Literals) == 0 {
		return true
	}
	required := make(map[cnf.Variable]bool, len(successor.Literals))
	for _, l := range successor.Literals {
		required[l.Var] = !l.Negated
	}
	for _, latch := range s.sys.Latches {
		want, ok := required[latch.Var]
		if !ok {
			continue
		}
		val := a.eval(latch.Next)
		if val == X {
			return false
		}
		if (val == One) != want {
			return false
		}
	}
	return true
}

// SimplifyPredecessor drops literals from state and, if dropTernary is set,
// from input as well, as long as the resulting (state, input) pair still
// forces successor (when successor is non-empty; otherwise only
// satisfiability of the pair itself matters, handled by the caller).
func (s *Simulator) SimplifyPredecessor(state, input, successor cnf.Cube, dropTernary bool) (cnf.Cube, cnf.Cube) {
	stateLits := append([]cnf.Literal(nil), state.Literals...)
	cnf.SortByWeight(stateLits, s.Weight, s.sys.IsStateVariable)

	keptState := stateLits
	for i := 0; i < len(keptState); {
		trial := dropAt(keptState, i)
		a := s.propagate(fromCubes(cnf.NewCube(trial...), input))
		if s.successorForced(a, successor) {
			keptState = trial
			continue
		}
		i++
	}

	keptInput := append([]cnf.Literal(nil), input.Literals...)
	if dropTernary {
		for i := 0; i < len(keptInput); {
			trial := dropAt(keptInput, i)
			a := s.propagate(fromCubes(cnf.NewCube(keptState...), cnf.NewCube(trial...)))
			if s.successorForced(a, successor) {
				keptInput = trial
				continue
			}
			i++
		}
	}

	vars := make([]cnf.Variable, 0, len(keptState))
	for _, l := range keptState {
		vars = append(vars, l.Var)
	}
	s.DecayWeights(vars)
	return cnf.NewCube(keptState...), cnf.NewCube(keptInput...)
}

func dropAt(lits []cnf.Literal, i int) []cnf.Literal {
	out := make([]cnf.Literal, 0, len(lits)-1)
	out = append(out, lits[:i]...)
	out = append(out, lits[i+1:]...)
	return out
}
