// Package witness emits and independently checks the two artifacts a PDR
// run produces: an AIGER "certifaiger" inductive-invariant certificate, and
// an AIGER counterexample simulation trace. The self-check SAT queries are
// deliberately re-implemented here rather than routed through satengine,
// the way a certificate checker is expected to be independent of the
// engine whose output it verifies. Grounded on the same gini usage pattern
// operator-framework-operator-lifecycle-manager's resolver package shows
// (a fresh solver instance, a circuit-variable-to-literal map, assumption-
// based queries), applied here to a one-shot verification role instead of
// an incremental one.
package witness

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/fsts"
	"github.com/go-pdr/ic3/ic3err"
)

// checker is a throwaway SAT instance for one verification query.
type checker struct {
	g      *gini.Gini
	varMap map[cnf.Variable]z.Lit
}

func newChecker() *checker {
	c := &checker{g: gini.New(), varMap: make(map[cnf.Variable]z.Lit)}
	// Variable 0 is the AIGER constant-false wire.
	c.assert(cnf.NewClause(cnf.Neg(0)))
	return c
}

func (c *checker) lit(v cnf.Variable) z.Lit {
	if l, ok := c.varMap[v]; ok {
		return l
	}
	l := c.g.Lit()
	c.varMap[v] = l
	return l
}

func (c *checker) translate(l cnf.Literal) z.Lit {
	m := c.lit(l.Var)
	if l.Negated {
		return m.Not()
	}
	return m
}

func (c *checker) translateAll(lits []cnf.Literal) []z.Lit {
	out := make([]z.Lit, len(lits))
	for i, l := range lits {
		out[i] = c.translate(l)
	}
	return out
}

func (c *checker) assert(cl cnf.Clause) {
	for _, m := range c.translateAll(cl.Literals) {
		c.g.Add(m)
	}
	c.g.Add(0)
}

func (c *checker) assertAll(cnfs ...[]cnf.Clause) {
	for _, clauses := range cnfs {
		for _, cl := range clauses {
			c.assert(cl)
		}
	}
}

func (c *checker) unsatUnderAssumptions(assumps ...z.Lit) bool {
	c.g.Assume(assumps...)
	return c.g.Solve() != 1
}

// definingClausesBoth returns every definition's defining clauses at both
// the current and next cycle, the same pairing satengine.Frames bakes into
// its transition relation on rebuild.
func definingClausesBoth(sys *fsts.System, defs []definitions.Definition) []cnf.Clause {
	var out []cnf.Clause
	for _, d := range defs {
		for _, c := range d.DefiningClauses() {
			out = append(out, c, sys.AddTagsToClause(c, 1))
		}
	}
	return out
}

// definingClausesCurrent returns every definition's defining clauses at the
// current cycle only, for the checks that never look across a transition.
func definingClausesCurrent(defs []definitions.Definition) []cnf.Clause {
	var out []cnf.Clause
	for _, d := range defs {
		out = append(out, d.DefiningClauses()...)
	}
	return out
}

// CheckInitialImplication verifies I (under constraints and definitions) ⇒
// every clause of invariant: condition 1 of the proof self-check. The
// defining clauses matter because invariant clauses may carry extension
// literals.
func CheckInitialImplication(sys *fsts.System, defs []definitions.Definition, invariant []cnf.Clause) bool {
	init := sys.ConstructInitialCNF(true)
	defCNF := definingClausesCurrent(defs)
	for _, c := range invariant {
		chk := newChecker()
		chk.assertAll(init.Clauses, defCNF)
		notC := c.Negate()
		if !chk.unsatUnderAssumptions(chk.translateAll(notC.Literals)...) {
			return false
		}
	}
	return true
}

// CheckInductive verifies invariant ∧ T ∧ defs ⇒ invariant': condition 2 of
// the proof self-check, and the second half of CheckInductiveSubset.
func CheckInductive(sys *fsts.System, defs []definitions.Definition, invariant []cnf.Clause) bool {
	transition := sys.ConstructTransitionCNF(true, true, true, true)
	defCNF := definingClausesBoth(sys, defs)
	for _, c := range invariant {
		chk := newChecker()
		chk.assertAll(transition.Clauses, defCNF, invariant)
		negCPrime := sys.AddTagsToClause(c, 1).Negate()
		if !chk.unsatUnderAssumptions(chk.translateAll(negCPrime.Literals)...) {
			return false
		}
	}
	return true
}

// CheckInductiveSubset reports whether candidate is itself an inductive
// invariant: every initial state satisfies it, and it is closed under one
// transition step. SelfCheck runs these two conditions directly rather than
// through this function, and nothing in this module calls it.
func CheckInductiveSubset(sys *fsts.System, defs []definitions.Definition, candidate []cnf.Clause) bool {
	return CheckInitialImplication(sys, defs, candidate) && CheckInductive(sys, defs, candidate)
}

// CheckImpliesProperty verifies invariant ∧ defs ∧ connector ⇒ P: condition
// 3 of the proof self-check. The gate connector is needed because bad wires
// are internal signals defined by the circuit, not state variables.
func CheckImpliesProperty(sys *fsts.System, defs []definitions.Definition, invariant []cnf.Clause) bool {
	chk := newChecker()
	connector := sys.ConstructTransitionCNF(true, false, true, false)
	chk.assertAll(invariant, definingClausesCurrent(defs), connector.Clauses)
	property := sys.PropertyClause()
	notP := property.Negate()
	return chk.unsatUnderAssumptions(chk.translateAll(notP.Literals)...)
}

// CheckDefinitionValidity verifies that no definition over-constrains its
// inputs: for every assignment to a definition's inputs, some assignment to
// its extension variable satisfies every one of its defining clauses. Since
// DefiningClauses is the direct Tseitin encoding of Var <-> F(Inputs), this
// holds by construction for a correctly built Definition; the check exists
// to catch a corrupted or hand-edited definition record, not to validate an
// inherently risky transformation.
func CheckDefinitionValidity(d definitions.Definition) bool {
	clauses := d.DefiningClauses()
	n := len(d.Inputs)
	if n > 20 {
		return true // exhaustive check would be too large; trust construction
	}
	for assignment := 0; assignment < (1 << n); assignment++ {
		chkTrue, chkFalse := newChecker(), newChecker()
		for _, cl := range clauses {
			chkTrue.assert(cl)
			chkFalse.assert(cl)
		}
		var assumpsTrue, assumpsFalse []z.Lit
		for i, in := range d.Inputs {
			bit := assignment&(1<<i) != 0
			lit := in
			if !bit {
				lit = in.Negate()
			}
			assumpsTrue = append(assumpsTrue, chkTrue.translate(lit))
			assumpsFalse = append(assumpsFalse, chkFalse.translate(lit))
		}
		chkTrue.assert(cnf.NewClause(cnf.Pos(d.Var)))
		chkFalse.assert(cnf.NewClause(cnf.Neg(d.Var)))
		satTrue := !chkTrue.unsatUnderAssumptions(assumpsTrue...)
		satFalse := !chkFalse.unsatUnderAssumptions(assumpsFalse...)
		if !satTrue && !satFalse {
			return false // neither polarity of v satisfies this input assignment
		}
	}
	return true
}

// SelfCheck runs every condition a proof self-check needs and returns the
// first failure as an *ic3err.Error with KindSelfCheck, or nil if the proof
// is sound.
func SelfCheck(sys *fsts.System, defs []definitions.Definition, invariant []cnf.Clause) error {
	if !CheckInitialImplication(sys, defs, invariant) {
		return ic3err.New("witness", "SelfCheck", ic3err.KindSelfCheck, "initial state violates invariant")
	}
	if !CheckInductive(sys, defs, invariant) {
		return ic3err.New("witness", "SelfCheck", ic3err.KindSelfCheck, "invariant is not inductive")
	}
	if !CheckImpliesProperty(sys, defs, invariant) {
		return ic3err.New("witness", "SelfCheck", ic3err.KindSelfCheck, "invariant does not imply the property")
	}
	for _, d := range defs {
		if !CheckDefinitionValidity(d) {
			return ic3err.New("witness", "SelfCheck", ic3err.KindSelfCheck, "definition over-constrains its inputs")
		}
	}
	return nil
}
