// Package fsts models the finite-state transition system extracted from
// an AIGER circuit: its CNF views (initial, transition, property,
// constraints), variable-class predicates, and the time-shift ("tagging")
// operations the rest of the engine uses to move a formula between cycles.
package fsts

import (
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/ic3err"
)

// LatchInit is the three-valued reset value of a latch.
type LatchInit int

const (
	InitZero LatchInit = iota
	InitOne
	InitX
)

// Latch is a sequential element: a current-cycle variable, the literal
// (over current-cycle state/input/internal variables) that computes its
// next value, and its reset behavior.
type Latch struct {
	Var  cnf.Variable
	Next cnf.Literal
	Init LatchInit
}

// Gate is a two-input AND gate of the underlying AIG: Out <-> A ∧ B.
type Gate struct {
	Out  cnf.Variable
	A, B cnf.Literal
}

// System is the finite-state transition system built from a parsed AIGER
// circuit. MaxVar is the "n" of the tagging invariant: shifting a literal
// by k cycles adds k*MaxVar to its variable number.
type System struct {
	MaxVar      cnf.Variable
	Inputs      []cnf.Variable
	Latches     []Latch
	Gates       []Gate
	Bad         []cnf.Literal // one literal per bad output; property violated if any is true
	Constraints []cnf.Literal // invariant-constraint cube: all must hold

	// Sim is the ternary simulator used to compute implications and
	// minimize cubes. It is wired in after construction by the caller
	// (see ternary.New) to avoid an import cycle between fsts and ternary,
	// per the cyclic-sharing note: sub-engines hold a handle to the FSTS
	// and also ask it to mutate state via simulation.
	Sim Simulator
}

// Simulator is the capability the ternary simulator provides back to the FSTS.
type Simulator interface {
	ImplicationsOf(state, input cnf.Cube) cnf.Cube
	SimplifyBadCube(state, input cnf.Cube) (cnf.Cube, cnf.Cube)
	SimplifyPredecessor(state, input cnf.Cube, successor cnf.Cube, dropTernary bool) (cnf.Cube, cnf.Cube)
}

// New builds a System from parsed circuit components. The caller attaches
// a Simulator afterward.
func New(maxVar cnf.Variable, inputs []cnf.Variable, latches []Latch, gates []Gate, bad []cnf.Literal, constraints []cnf.Literal) *System {
	return &System{
		MaxVar:      maxVar,
		Inputs:      inputs,
		Latches:     latches,
		Gates:       gates,
		Bad:         bad,
		Constraints: constraints,
	}
}

// IsStateVariable reports whether v is a current-cycle latch variable.
func (s *System) IsStateVariable(v cnf.Variable) bool {
	for _, l := range s.Latches {
		if l.Var == v {
			return true
		}
	}
	return false
}

// IsInputVariable reports whether v is a primary input.
func (s *System) IsInputVariable(v cnf.Variable) bool {
	for _, i := range s.Inputs {
		if i == v {
			return true
		}
	}
	return false
}

// IsExtensionVariable reports whether v lies in the extension range: every
// extension variable is allocated strictly above the circuit's variables
// and their tagged next-cycle copies.
func (s *System) IsExtensionVariable(v cnf.Variable) bool {
	return v > 2*s.MaxVar
}

// IsStateLiteral reports whether l's variable is a state variable.
func (s *System) IsStateLiteral(l cnf.Literal) bool { return s.IsStateVariable(l.Var) }

// IsInputLiteral reports whether l's variable is a primary input.
func (s *System) IsInputLiteral(l cnf.Literal) bool { return s.IsInputVariable(l.Var) }

// IsExtensionLiteral reports whether l's variable is an extension variable.
func (s *System) IsExtensionLiteral(l cnf.Literal) bool { return s.IsExtensionVariable(l.Var) }

// gateCNF returns the Tseitin clauses defining every AND gate:
// (Out ∨ ¬A ∨ ¬B) ∧ (¬Out ∨ A) ∧ (¬Out ∨ B).
func (s *System) gateCNF() *cnf.CNF {
	f := cnf.NewCNF()
	for _, g := range s.Gates {
		out := cnf.Pos(g.Out)
		f.AddClause(cnf.NewClause(out.Negate(), g.A))
		f.AddClause(cnf.NewClause(out.Negate(), g.B))
		f.AddClause(cnf.NewClause(out, g.A.Negate(), g.B.Negate()))
	}
	return f
}

// ConstructInitialCNF builds I(x): unit literals for every deterministically
// initialized latch; latches initialized to X contribute nothing. When
// withConstraints is set, the constraint cube's literals are added as units
// too (so callers can query whether the initial state itself satisfies them).
func (s *System) ConstructInitialCNF(withConstraints bool) *cnf.CNF {
	f := cnf.NewCNF()
	for _, l := range s.Latches {
		switch l.Init {
		case InitZero:
			f.AddClause(cnf.NewClause(cnf.Neg(l.Var)))
		case InitOne:
			f.AddClause(cnf.NewClause(cnf.Pos(l.Var)))
		case InitX:
			// contributes nothing
		}
	}
	if withConstraints {
		for _, c := range s.Constraints {
			f.AddClause(cnf.NewClause(c))
		}
	}
	return f
}

// ConstructTransitionCNF builds T(x, u, x'). includeConnector adds the
// transition_connector clauses (internal gate definitions in terms of
// current-cycle state/input); includeTransitionOnInternals adds the
// transition_on_internals clauses tying each latch's next-state variable
// (tagged by +MaxVar) to the literal computing it. firstCycleConstraints /
// secondCycleConstraints add the constraint cube as units at the
// corresponding cycle.
func (s *System) ConstructTransitionCNF(firstCycleConstraints, secondCycleConstraints, includeConnector, includeTransitionOnInternals bool) *cnf.CNF {
	f := cnf.NewCNF()
	if includeConnector {
		f.Append(s.gateCNF())
	}
	if includeTransitionOnInternals {
		for _, l := range s.Latches {
			nextVar := cnf.Tag(l.Var, s.MaxVar, 1)
			nextLit := cnf.Pos(nextVar)
			f.AddClause(cnf.NewClause(nextLit.Negate(), l.Next))
			f.AddClause(cnf.NewClause(nextLit, l.Next.Negate()))
		}
	}
	if firstCycleConstraints {
		for _, c := range s.Constraints {
			f.AddClause(cnf.NewClause(c))
		}
	}
	if secondCycleConstraints {
		for _, c := range s.Constraints {
			f.AddClause(cnf.NewClause(cnf.TagLiteral(c, s.MaxVar, 1)))
		}
	}
	return f
}

// PropertyClause returns the clause whose negation is the bad cube: the
// disjunction of the negations of every bad literal (safe iff all bads are false).
func (s *System) PropertyClause() cnf.Clause {
	lits := make([]cnf.Literal, len(s.Bad))
	for i, b := range s.Bad {
		lits[i] = b.Negate()
	}
	return cnf.NewClause(lits...)
}

// HasMultipleBad reports whether the circuit has more than one bad output.
func (s *System) HasMultipleBad() bool { return len(s.Bad) > 1 }

// IsEmpty reports a circuit with no bad outputs at all (trivially safe).
func (s *System) IsEmpty() bool { return len(s.Bad) == 0 }

// HasConstraints reports whether any invariant constraint is present.
func (s *System) HasConstraints() bool { return len(s.Constraints) > 0 }

// ConstFalse and ConstTrue are the two polarities of AIGER's variable 0:
// wire literal 0 is the constant false, wire literal 1 the constant true.
var (
	ConstFalse = cnf.Pos(0)
	ConstTrue  = cnf.Neg(0)
)

// HasConstantZeroConstraint reports a constraint that can never hold: a
// constraint wire that is the constant 0, or a constraint cube containing
// complementary literals.
func (s *System) HasConstantZeroConstraint() bool {
	for _, c := range s.Constraints {
		if c == ConstFalse {
			return true
		}
	}
	return cnf.NewCube(s.Constraints...).Negate().IsTautology()
}

// HasConstantOneBad reports a bad condition that is always violated: a bad
// wire that is the constant 1, or a pair of complementary bad wires (their
// disjunction is a tautology).
func (s *System) HasConstantOneBad() bool {
	for _, b := range s.Bad {
		if b == ConstTrue {
			return true
		}
	}
	return cnf.NewClause(s.Bad...).IsTautology()
}

// AddTagsToLiteral shifts l's variable by k*MaxVar. k is negative to undo.
func (s *System) AddTagsToLiteral(l cnf.Literal, k int) cnf.Literal {
	return cnf.TagLiteral(l, s.MaxVar, k)
}

// AddTagsToCube shifts every literal of q by k*MaxVar.
func (s *System) AddTagsToCube(q cnf.Cube, k int) cnf.Cube {
	return cnf.ShiftCube(q, cnf.Variable(k)*s.MaxVar)
}

// AddTagsToClause shifts every literal of c by k*MaxVar.
func (s *System) AddTagsToClause(c cnf.Clause, k int) cnf.Clause {
	return cnf.ShiftClause(c, cnf.Variable(k)*s.MaxVar)
}

// AddTagsToCNF shifts every clause of f by k*MaxVar.
func (s *System) AddTagsToCNF(f *cnf.CNF, k int) *cnf.CNF {
	return cnf.ShiftCNF(f, cnf.Variable(k)*s.MaxVar)
}

// GetImplicationsOfStateAndInput runs the ternary simulator to assign every
// internal signal implied by a (state, input) pair.
func (s *System) GetImplicationsOfStateAndInput(state, input cnf.Cube) (cnf.Cube, error) {
	if s.Sim == nil {
		return cnf.Cube{}, ic3err.Internal("fsts", "GetImplicationsOfStateAndInput", "no simulator attached")
	}
	return s.Sim.ImplicationsOf(state, input), nil
}

// SimplifyBadCube minimizes a bad (state, input) pair via ternary simulation.
func (s *System) SimplifyBadCube(state, input cnf.Cube) (cnf.Cube, cnf.Cube, error) {
	if s.Sim == nil {
		return cnf.Cube{}, cnf.Cube{}, ic3err.Internal("fsts", "SimplifyBadCube", "no simulator attached")
	}
	st, in := s.Sim.SimplifyBadCube(state, input)
	return st, in, nil
}

// SimplifyPredecessor minimizes a predecessor (state, input) pair so that it
// still reaches successor (when successor is non-empty) via ternary simulation.
func (s *System) SimplifyPredecessor(state, input, successor cnf.Cube, dropTernary bool) (cnf.Cube, cnf.Cube, error) {
	if s.Sim == nil {
		return cnf.Cube{}, cnf.Cube{}, ic3err.Internal("fsts", "SimplifyPredecessor", "no simulator attached")
	}
	st, in := s.Sim.SimplifyPredecessor(state, input, successor, dropTernary)
	return st, in, nil
}
