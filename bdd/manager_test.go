package bdd

import (
	"testing"

	"github.com/go-pdr/ic3/cnf"
)

func TestVarAndNotRoundTrip(t *testing.T) {
	m := NewManager()
	v := m.Var(1)
	if m.Not(m.Not(v)) != v {
		t.Errorf("Not(Not(v)) should be hash-consed back to v")
	}
	if m.Not(True) != False || m.Not(False) != True {
		t.Errorf("constant negation broken")
	}
}

func TestAndIdentitiesAndCommutativity(t *testing.T) {
	m := NewManager()
	a, b := m.Var(1), m.Var(2)

	if m.And(a, True) != a {
		t.Errorf("a AND true should be a")
	}
	if m.And(a, False) != False {
		t.Errorf("a AND false should be false")
	}
	if m.And(a, a) != a {
		t.Errorf("a AND a should be a")
	}
	if m.And(a, b) != m.And(b, a) {
		t.Errorf("And should be commutative via hash-consing")
	}
}

func TestOrDeMorgan(t *testing.T) {
	m := NewManager()
	a, b := m.Var(1), m.Var(2)
	or := m.Or(a, b)
	wantNotOr := m.And(m.Not(a), m.Not(b))
	if m.Not(or) != wantNotOr {
		t.Errorf("De Morgan: Not(Or(a,b)) should equal And(Not(a),Not(b))")
	}
}

func TestImplies(t *testing.T) {
	m := NewManager()
	a, b := m.Var(1), m.Var(2)
	aAndB := m.And(a, b)

	if !m.Implies(aAndB, a) {
		t.Errorf("a AND b should imply a")
	}
	if m.Implies(a, aAndB) {
		t.Errorf("a should not imply a AND b")
	}
	if !m.Implies(False, a) {
		t.Errorf("False should imply anything")
	}
	if !m.Implies(a, True) {
		t.Errorf("anything should imply True")
	}
}

func TestFromClauseAndFromCubeAreDual(t *testing.T) {
	m := NewManager()
	c := cnf.NewClause(cnf.Pos(1), cnf.Neg(2))
	clauseBDD := m.FromClause(c)
	cubeBDD := m.FromCube(c.Negate())

	if m.Not(clauseBDD) != cubeBDD {
		t.Errorf("Not(FromClause(c)) should equal FromCube(c.Negate())")
	}
}

func TestFromClauseEmptyIsFalse(t *testing.T) {
	m := NewManager()
	if m.FromClause(cnf.Clause{}) != False {
		t.Errorf("the empty clause's BDD must be False")
	}
}

func TestFromCubeEmptyIsTrue(t *testing.T) {
	m := NewManager()
	if m.FromCube(cnf.Cube{}) != True {
		t.Errorf("the empty cube's BDD must be True")
	}
}
