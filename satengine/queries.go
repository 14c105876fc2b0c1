package satengine

import (
	"github.com/go-air/gini/z"

	"github.com/go-pdr/ic3/cnf"
)

// GetBadCube looks for a state in F_k (0-based frame index) that satisfies
// some bad output, returning the ternary-minimized (state, input) pair on
// success.
func (f *Frames) GetBadCube(k int) (state, input cnf.Cube, ok bool) {
	f.EnsureReady()
	slot := f.slotForFrame(k)

	badAssump, retire := slot.assumeClause(f.sys.Bad)
	defer retire()

	assumps := append(f.frameAssumptions(k), badAssump)
	slot.g.Assume(assumps...)
	if slot.g.Solve() != 1 {
		return cnf.Cube{}, cnf.Cube{}, false
	}

	state = extractCube(slot, f.sys.IsStateVariable)
	input = extractCube(slot, f.sys.IsInputVariable)
	if f.sys.Sim != nil {
		state, input = f.sys.Sim.SimplifyBadCube(state, input)
	}
	return state, input, true
}

// GetBadCubeInInitial looks for an initial state (under constraints) that
// already satisfies some bad output: the zero-step counterexample the main
// frame loop never sees, checked once up front with a throwaway solver.
func (f *Frames) GetBadCubeInInitial() (state, input cnf.Cube, ok bool) {
	slot := newSlot()
	connector := f.sys.ConstructTransitionCNF(true, false, true, false)
	for _, c := range connector.Clauses {
		slot.assertClause(slot.translateAll(c.Literals))
	}
	init := f.sys.ConstructInitialCNF(true)
	for _, c := range init.Clauses {
		slot.assertClause(slot.translateAll(c.Literals))
	}

	badAssump, _ := slot.assumeClause(f.sys.Bad)
	slot.g.Assume(badAssump)
	if slot.g.Solve() != 1 {
		return cnf.Cube{}, cnf.Cube{}, false
	}
	state = extractCube(slot, f.sys.IsStateVariable)
	input = extractCube(slot, f.sys.IsInputVariable)
	if f.sys.Sim != nil {
		state, input = f.sys.Sim.SimplifyBadCube(state, input)
	}
	return state, input, true
}

func extractCube(slot *solverSlot, pred func(cnf.Variable) bool) cnf.Cube {
	lits := make([]cnf.Literal, 0)
	for v, m := range slot.varMap {
		if !pred(v) {
			continue
		}
		if slot.g.Value(m) {
			lits = append(lits, cnf.Pos(v))
		} else {
			lits = append(lits, cnf.Neg(v))
		}
	}
	return cnf.NewCube(lits...)
}

// IsClauseGuaranteedAfterTransition asks whether F_k ∧ T ∧ ¬C' is
// unsatisfiable, i.e. every successor of F_k satisfies C.
func (f *Frames) IsClauseGuaranteedAfterTransition(k int, c cnf.Clause) bool {
	return f.isClauseGuaranteed(k, c, false)
}

// IsClauseGuaranteedAfterTransitionIfAssumedCurrent is the relative
// induction query: F_k ∧ C ∧ T ∧ ¬C' unsatisfiable, with C constraining the
// current cycle as a clause.
func (f *Frames) IsClauseGuaranteedAfterTransitionIfAssumedCurrent(k int, c cnf.Clause) bool {
	return f.isClauseGuaranteed(k, c, true)
}

func (f *Frames) isClauseGuaranteed(k int, c cnf.Clause, assumeCurrent bool) bool {
	f.EnsureReady()
	slot := f.slotForFrame(k)

	negCPrime := f.sys.AddTagsToCube(c.Negate(), 1)
	assumps := append(f.frameAssumptions(k), slot.translateAll(negCPrime.Literals)...)

	if assumeCurrent {
		guardAssump, retire := slot.assumeClause(c.Literals)
		defer retire()
		assumps = append(assumps, guardAssump)
	}

	slot.g.Assume(assumps...)
	return slot.g.Solve() != 1
}

// GetPredecessorOfCube looks for (pred, input) in F_k ∧ ¬s with successor s.
// On success it returns the minimized pair; on failure it reduces s to the
// subset the unsat core actually required, via gini's Why. A negative k
// queries F_0, constraining the predecessor to the initial states.
func (f *Frames) GetPredecessorOfCube(k int, s cnf.Cube) (state, input cnf.Cube, reducedS cnf.Cube, ok bool) {
	f.EnsureReady()
	slot := f.slotForFrame(k)

	tagged := f.sys.AddTagsToCube(s, 1)
	taggedLits := slot.translateAll(tagged.Literals)

	notSAssump, retire := slot.assumeClause(s.Negate().Literals)
	defer retire()

	assumps := append(f.frameAssumptions(k), notSAssump)
	if k < 0 {
		init := f.sys.ConstructInitialCNF(true)
		for _, cl := range init.Clauses {
			if cl.IsUnit() {
				assumps = append(assumps, slot.translate(cl.Literals[0]))
			}
		}
	}
	assumps = append(assumps, taggedLits...)

	slot.g.Assume(assumps...)
	if slot.g.Solve() == 1 {
		state = extractCube(slot, f.sys.IsStateVariable)
		input = extractCube(slot, f.sys.IsInputVariable)
		if f.sys.Sim != nil {
			state, input = f.sys.Sim.SimplifyPredecessor(state, input, s, true)
		}
		return state, input, cnf.Cube{}, true
	}

	failed := slot.g.Why(nil)
	reducedLits := make([]cnf.Literal, 0, len(failed))
	taggedSet := make(map[z.Lit]bool, len(taggedLits))
	for _, m := range taggedLits {
		taggedSet[m] = true
	}
	for _, m := range failed {
		if taggedSet[m] {
			reducedLits = append(reducedLits, f.sys.AddTagsToLiteral(slot.untranslate(m), -1))
		}
	}
	return cnf.Cube{}, cnf.Cube{}, cnf.NewCube(reducedLits...), false
}

// SolveIsCubeBlocked asks whether s is unreachable in one step from F_k ∧ ¬s.
func (f *Frames) SolveIsCubeBlocked(k int, s cnf.Cube) bool {
	_, _, _, ok := f.GetPredecessorOfCube(k, s)
	return !ok
}

// IsClauseSatisfiedByInitial reports whether I (the initial cube, under
// constraints and definitions) ⇒ c, checked with a throwaway solver
// instance so it never disturbs the frame encoding's variable map: every
// dropped or replaced literal still has to hold under every initial state.
func (f *Frames) IsClauseSatisfiedByInitial(c cnf.Clause) bool {
	slot := newSlot()
	init := f.sys.ConstructInitialCNF(true)
	for _, cl := range init.Clauses {
		slot.assertClause(slot.translateAll(cl.Literals))
	}
	for _, d := range f.defs {
		for _, dc := range d.DefiningClauses() {
			slot.assertClause(slot.translateAll(dc.Literals))
		}
	}
	notC := c.Negate()
	slot.g.Assume(slot.translateAll(notC.Literals)...)
	return slot.g.Solve() != 1
}

// GetStateInClauseAThatHasPredecessorNotInClauseB supports CTG-based
// strengthening: finds a state satisfying ¬a (a candidate CTG) that has a
// predecessor in F_k not already excluded by b.
func (f *Frames) GetStateInClauseAThatHasPredecessorNotInClauseB(k int, a, b cnf.Clause) (ctg cnf.Cube, ok bool) {
	f.EnsureReady()
	slot := f.slotForFrame(k)

	notA := a.Negate()
	notBTagged := f.sys.AddTagsToCube(b.Negate(), 1)

	assumps := append(f.frameAssumptions(k), slot.translateAll(notA.Literals)...)
	assumps = append(assumps, slot.translateAll(notBTagged.Literals)...)

	slot.g.Assume(assumps...)
	if slot.g.Solve() != 1 {
		return cnf.Cube{}, false
	}
	state := extractCube(slot, f.sys.IsStateVariable)
	return state, true
}
