package cnf

import "sort"

// CNF is a list of clauses in insertion order, free of exact duplicates.
type CNF struct {
	Clauses []Clause
}

// NewCNF returns an empty formula.
func NewCNF() *CNF {
	return &CNF{Clauses: make([]Clause, 0)}
}

// AddClause appends c, keeping Clauses free of exact duplicates.
func (f *CNF) AddClause(c Clause) {
	for _, existing := range f.Clauses {
		if existing.Equal(c) {
			return
		}
	}
	f.Clauses = append(f.Clauses, c)
}

// Append merges another formula's clauses in.
func (f *CNF) Append(other *CNF) {
	for _, c := range other.Clauses {
		f.AddClause(c)
	}
}

// MaxVar returns the highest variable number appearing anywhere in f, or 0.
func (f *CNF) MaxVar() Variable {
	var max Variable
	for _, c := range f.Clauses {
		for _, l := range c.Literals {
			if l.Var > max {
				max = l.Var
			}
		}
	}
	return max
}

// Shift adds delta to every variable in every literal of every clause,
// implementing the "add_tags" time-shift operation: shifting by k cycles
// means delta = k * maxVar, and a negative delta undoes a previous shift.
func Shift(lits []Literal, delta Variable) []Literal {
	out := make([]Literal, len(lits))
	for i, l := range lits {
		out[i] = Literal{Var: l.Var + delta, Negated: l.Negated}
	}
	return out
}

// ShiftClause returns a new clause with every variable shifted by delta.
func ShiftClause(c Clause, delta Variable) Clause {
	return NewClause(Shift(c.Literals, delta)...)
}

// ShiftCube returns a new cube with every variable shifted by delta.
func ShiftCube(q Cube, delta Variable) Cube {
	return NewCube(Shift(q.Literals, delta)...)
}

// Tag shifts a single variable by k*maxVar cycles. k is negative to undo.
func Tag(v Variable, maxVar Variable, k int) Variable {
	return v + Variable(k)*maxVar
}

// TagLiteral shifts a literal's variable by k*maxVar cycles.
func TagLiteral(l Literal, maxVar Variable, k int) Literal {
	return Literal{Var: Tag(l.Var, maxVar, k), Negated: l.Negated}
}

// ShiftCNF returns a new formula with every variable shifted by delta.
func ShiftCNF(f *CNF, delta Variable) *CNF {
	out := NewCNF()
	for _, c := range f.Clauses {
		out.AddClause(ShiftClause(c, delta))
	}
	return out
}

// SortByWeight sorts lits in place (stably): state literals precede all
// others, and within each group literals are ascending by weight(l.Var) --
// the ordering discipline the
// ternary simulator and generalization both rely on before greedily
// dropping literals.
func SortByWeight(lits []Literal, weight func(Variable) float64, isState func(Variable) bool) {
	sort.SliceStable(lits, func(i, j int) bool {
		si, sj := isState(lits[i].Var), isState(lits[j].Var)
		if si != sj {
			return si
		}
		return weight(lits[i].Var) < weight(lits[j].Var)
	})
}
