// Package bdd implements a binary decision diagram manager for semantic
// clause-implication checks. No ecosystem BDD package appears anywhere in
// the retrieved reference pack, so this is a small hash-consed Reduced
// Ordered BDD built on the standard library only (see DESIGN.md for the
// no-suitable-library justification). Variable ordering is simply ascending
// variable number.
package bdd

import "github.com/go-pdr/ic3/cnf"

// Node is a handle into a Manager's node table. The zero value and 1 are
// reserved sentinels for constant false/true.
type Node int32

const (
	False Node = 0
	True  Node = 1
)

type nodeKey struct {
	v      cnf.Variable
	lo, hi Node
}

// Manager is a hash-consed BDD table with memoized And/Not.
type Manager struct {
	nodes   []nodeKey
	unique  map[nodeKey]Node
	notMemo map[Node]Node
	andMemo map[[2]Node]Node
}

// NewManager returns an empty manager with the two constant sentinels seeded.
func NewManager() *Manager {
	m := &Manager{
		nodes:   []nodeKey{{}, {}}, // indices 0, 1 are never looked up by content
		unique:  make(map[nodeKey]Node),
		notMemo: make(map[Node]Node),
		andMemo: make(map[[2]Node]Node),
	}
	return m
}

func (m *Manager) mk(v cnf.Variable, lo, hi Node) Node {
	if lo == hi {
		return lo
	}
	key := nodeKey{v, lo, hi}
	if n, ok := m.unique[key]; ok {
		return n
	}
	id := Node(len(m.nodes))
	m.nodes = append(m.nodes, key)
	m.unique[key] = id
	return id
}

// Var returns the BDD for a single positive variable.
func (m *Manager) Var(v cnf.Variable) Node {
	return m.mk(v, False, True)
}

// Not negates a node.
func (m *Manager) Not(a Node) Node {
	switch a {
	case True:
		return False
	case False:
		return True
	}
	if r, ok := m.notMemo[a]; ok {
		return r
	}
	n := m.nodes[a]
	r := m.mk(n.v, m.Not(n.lo), m.Not(n.hi))
	m.notMemo[a] = r
	return r
}

// And computes the conjunction of a and b via Shannon expansion on the
// topmost variable of either operand, with result memoization.
func (m *Manager) And(a, b Node) Node {
	if a == False || b == False {
		return False
	}
	if a == True {
		return b
	}
	if b == True || a == b {
		return a
	}
	if a > b {
		a, b = b, a
	}
	key := [2]Node{a, b}
	if r, ok := m.andMemo[key]; ok {
		return r
	}

	na, nb := m.nodes[a], m.nodes[b]
	var v cnf.Variable
	var loA, hiA, loB, hiB Node
	switch {
	case na.v == nb.v:
		v, loA, hiA, loB, hiB = na.v, na.lo, na.hi, nb.lo, nb.hi
	case na.v < nb.v:
		v, loA, hiA, loB, hiB = na.v, na.lo, na.hi, b, b
	default:
		v, loA, hiA, loB, hiB = nb.v, a, a, nb.lo, nb.hi
	}

	lo := m.And(loA, loB)
	hi := m.And(hiA, hiB)
	r := m.mk(v, lo, hi)
	m.andMemo[key] = r
	return r
}

// Or computes the disjunction of a and b via De Morgan over And/Not.
func (m *Manager) Or(a, b Node) Node {
	return m.Not(m.And(m.Not(a), m.Not(b)))
}

// Implies reports whether a semantically implies b: a ∧ ¬b is unsatisfiable.
func (m *Manager) Implies(a, b Node) bool {
	return m.And(a, m.Not(b)) == False
}

// FromLiteral builds the BDD for a single literal.
func (m *Manager) FromLiteral(l cnf.Literal) Node {
	v := m.Var(l.Var)
	if l.Negated {
		return m.Not(v)
	}
	return v
}

// FromClause builds the BDD for a disjunction of literals (false for the
// empty clause).
func (m *Manager) FromClause(c cnf.Clause) Node {
	r := False
	for _, l := range c.Literals {
		r = m.Or(r, m.FromLiteral(l))
	}
	return r
}

// FromCube builds the BDD for a conjunction of literals (true for the empty cube).
func (m *Manager) FromCube(q cnf.Cube) Node {
	r := True
	for _, l := range q.Literals {
		r = m.And(r, m.FromLiteral(l))
	}
	return r
}

// Size returns the number of entries in the node table, the two constant
// nodes included.
func (m *Manager) Size() int { return len(m.nodes) }
