package definitions

import "github.com/go-pdr/ic3/cnf"

// Forward attempts one pass of folding sub-clauses into existing
// definitions' extension literals, scanning definitions newest-first so the
// most specific (most recently coined) patterns are preferred. It returns
// the rewritten clause and whether any fold applied; ok is false if the
// rewrite collapsed the clause to a tautology.
//
// Open question resolution (see DESIGN.md): of the two directions named in
// the distilled requirements -- fold toward an extension literal, or expand
// an extension literal back to its inputs -- only folding preserves a
// single clause in general (an AND definition's positive occurrence and
// an XOR definition's either occurrence do not expand to a single
// disjunction without case-splitting into multiple clauses). Canonical
// form is therefore defined here as the maximally folded representative.
func (l *Library) Forward(c cnf.Clause) (cnf.Clause, bool) {
	cur := c
	changed := false
	for i := len(l.defs) - 1; i >= 0; i-- {
		next, ok := foldOnce(cur, l.defs[i])
		if !ok {
			continue
		}
		cur = next
		changed = true
	}
	if cur.IsTautology() {
		return cnf.Clause{}, false
	}
	return cur, changed
}

// MakeClauseCanonical repeatedly folds c against the full definition set
// until a fixed point is reached -- the form every stored clause must
// already be in (invariant 5).
func (l *Library) MakeClauseCanonical(c cnf.Clause) cnf.Clause {
	cur := c
	for {
		next, changed := l.Forward(cur)
		if !changed {
			return cur
		}
		cur = next
	}
}

// foldOnce tries to fold one occurrence of d's pattern inside c.
func foldOnce(c cnf.Clause, d Definition) (cnf.Clause, bool) {
	switch d.F {
	case AND:
		return foldAND(c, d)
	case XOR:
		return foldXOR(c, d)
	}
	return c, false
}

// foldAND replaces ¬i1, ..., ¬in (all present) with the single literal ¬v,
// sound because v ↔ i1 ∧ ... ∧ in makes ¬v exactly equivalent to
// ¬i1 ∨ ... ∨ ¬in.
func foldAND(c cnf.Clause, d Definition) (cnf.Clause, bool) {
	if c.ContainsVar(d.Var) {
		return c, false
	}
	for _, in := range d.Inputs {
		if !c.Contains(in.Negate()) {
			return c, false
		}
	}
	rest := make([]cnf.Literal, 0, len(c.Literals))
	for _, l := range c.Literals {
		keep := true
		for _, in := range d.Inputs {
			if l == in.Negate() {
				keep = false
				break
			}
		}
		if keep {
			rest = append(rest, l)
		}
	}
	rest = append(rest, cnf.Neg(d.Var))
	return cnf.NewClause(rest...), true
}

// foldXOR handles the two-input case and its four defining-clause patterns:
// (¬v∨a∨b), (¬v∨¬a∨¬b), (v∨¬a∨b), (v∨a∨¬b). Each fully matches when both
// the a and b literals shown are present in c; the match is replaced by the
// corresponding single literal on v.
func foldXOR(c cnf.Clause, d Definition) (cnf.Clause, bool) {
	if len(d.Inputs) != 2 || c.ContainsVar(d.Var) {
		return c, false
	}
	a, b := d.Inputs[0], d.Inputs[1]
	patterns := []struct {
		a, b cnf.Literal
		out  cnf.Literal
	}{
		{a, b, cnf.Neg(d.Var)},
		{a.Negate(), b.Negate(), cnf.Neg(d.Var)},
		{a.Negate(), b, cnf.Pos(d.Var)},
		{a, b.Negate(), cnf.Pos(d.Var)},
	}
	for _, p := range patterns {
		if c.Contains(p.a) && c.Contains(p.b) {
			rest := make([]cnf.Literal, 0, len(c.Literals))
			for _, l := range c.Literals {
				if l == p.a || l == p.b {
					continue
				}
				rest = append(rest, l)
			}
			rest = append(rest, p.out)
			return cnf.NewClause(rest...), true
		}
	}
	return c, false
}

// DefiningClauses returns the Tseitin CNF asserting Var <-> F(Inputs): for
// AND, (¬v∨i1)∧...∧(¬v∨in)∧(v∨¬i1∨...∨¬in); for XOR (2 inputs only), the
// same four clauses foldXOR's pattern table folds against, oriented so the
// extension variable's positive/negative literal lines up with the
// corresponding input-parity pattern.
func (d Definition) DefiningClauses() []cnf.Clause {
	v := d.Var
	switch d.F {
	case AND:
		clauses := make([]cnf.Clause, 0, len(d.Inputs)+1)
		allNeg := make([]cnf.Literal, 0, len(d.Inputs)+1)
		allNeg = append(allNeg, cnf.Pos(v))
		for _, in := range d.Inputs {
			clauses = append(clauses, cnf.NewClause(cnf.Neg(v), in))
			allNeg = append(allNeg, in.Negate())
		}
		clauses = append(clauses, cnf.NewClause(allNeg...))
		return clauses
	case XOR:
		if len(d.Inputs) != 2 {
			return nil
		}
		a, b := d.Inputs[0], d.Inputs[1]
		return []cnf.Clause{
			cnf.NewClause(cnf.Neg(v), a, b),
			cnf.NewClause(cnf.Neg(v), a.Negate(), b.Negate()),
			cnf.NewClause(cnf.Pos(v), a.Negate(), b),
			cnf.NewClause(cnf.Pos(v), a, b.Negate()),
		}
	}
	return nil
}

// TernaryPropagation extends the partial assignment represented by cube q
// with literals implied by definitions whose inputs (or whose extension
// variable plus all-but-one input) are already determined in q. It returns
// false if a contradiction between an existing literal and an implied one
// is detected.
func (l *Library) TernaryPropagation(q cnf.Cube) (cnf.Cube, bool) {
	assigned := make(map[cnf.Variable]bool, len(q.Literals))
	for _, lit := range q.Literals {
		assigned[lit.Var] = !lit.Negated
	}

	changed := true
	for changed {
		changed = false
		for _, d := range l.defs {
			step, conflict := propagateDefinition(d, assigned)
			if conflict {
				return cnf.Cube{}, false
			}
			if step {
				changed = true
			}
		}
	}

	lits := make([]cnf.Literal, 0, len(assigned))
	for v, val := range assigned {
		lits = append(lits, cnf.Lit(v, !val))
	}
	return cnf.NewCube(lits...), true
}

// propagateDefinition infers d.Var from fully-assigned inputs, or infers a
// single missing input from d.Var plus all-but-one assigned inputs, writing
// any new fact into assigned. It reports whether it changed anything and
// whether the inference contradicts an existing assignment.
func propagateDefinition(d Definition, assigned map[cnf.Variable]bool) (changed, conflict bool) {
	allIn, anyMissingIdx := true, -1
	missing := 0
	for i, in := range d.Inputs {
		if _, ok := assigned[in.Var]; !ok {
			allIn = false
			missing++
			anyMissingIdx = i
		}
	}

	if allIn {
		val := inputsValue(d, assigned)
		if prev, already := assigned[d.Var]; already {
			return false, prev != val
		}
		assigned[d.Var] = val
		return true, false
	}

	if missing == 1 {
		if outVal, ok := assigned[d.Var]; ok {
			inferred, determined := inferMissingInput(d, assigned, anyMissingIdx, outVal)
			if !determined {
				return false, false
			}
			in := d.Inputs[anyMissingIdx]
			assigned[in.Var] = inferred != in.Negated
			return true, false
		}
	}
	return false, false
}

func inputsValue(d Definition, assigned map[cnf.Variable]bool) bool {
	switch d.F {
	case AND:
		for _, in := range d.Inputs {
			v := assigned[in.Var]
			if in.Negated {
				v = !v
			}
			if !v {
				return false
			}
		}
		return true
	case XOR:
		parity := false
		for _, in := range d.Inputs {
			v := assigned[in.Var]
			if in.Negated {
				v = !v
			}
			if v {
				parity = !parity
			}
		}
		return parity
	}
	return false
}

// inferMissingInput computes the boolean value the missing input must take
// (in un-negated form) given the other inputs and the known output.
// determined is false when the output leaves the missing input free: a
// false AND output with some other input already false says nothing.
func inferMissingInput(d Definition, assigned map[cnf.Variable]bool, missingIdx int, outVal bool) (value, determined bool) {
	switch d.F {
	case AND:
		if outVal {
			return true, true
		}
		for i, in := range d.Inputs {
			if i == missingIdx {
				continue
			}
			v := assigned[in.Var]
			if in.Negated {
				v = !v
			}
			if !v {
				return false, false
			}
		}
		return false, true
	case XOR:
		parity := false
		for i, in := range d.Inputs {
			if i == missingIdx {
				continue
			}
			v := assigned[in.Var]
			if in.Negated {
				v = !v
			}
			if v {
				parity = !parity
			}
		}
		return parity != outVal, true
	}
	return false, false
}
