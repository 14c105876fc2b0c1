package cnf

import "testing"

func TestClauseCanonicalization(t *testing.T) {
	cases := []struct {
		description string
		in          []Literal
		wantLen     int
	}{
		{"dedups same literal", []Literal{Pos(1), Pos(1), Neg(2)}, 2},
		{"keeps both polarities as tautology", []Literal{Pos(1), Neg(1)}, 2},
		{"sorts by variable", []Literal{Pos(3), Pos(1), Pos(2)}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			c := NewClause(tc.in...)
			if len(c.Literals) != tc.wantLen {
				t.Fatalf("got %d literals, want %d: %v", len(c.Literals), tc.wantLen, c.Literals)
			}
		})
	}
}

func TestClauseCubeDuality(t *testing.T) {
	c := NewClause(Pos(1), Neg(2), Pos(3))
	q := c.Negate()
	if len(q.Literals) != len(c.Literals) {
		t.Fatalf("negate changed arity: %v -> %v", c, q)
	}
	back := q.Negate()
	if !back.Equal(c) {
		t.Errorf("double negation mismatch: got %v, want %v", back, c)
	}
}

func TestSubset(t *testing.T) {
	small := NewClause(Pos(1), Neg(2))
	big := NewClause(Pos(1), Neg(2), Pos(3))
	if !small.Subset(big) {
		t.Error("expected small to be a subset of big")
	}
	if big.Subset(small) {
		t.Error("big should not be a subset of small")
	}
}

func TestShiftRoundTrip(t *testing.T) {
	c := NewClause(Pos(1), Neg(5))
	maxVar := Variable(10)
	shifted := ShiftClause(c, maxVar)
	for i, l := range shifted.Literals {
		if l.Var != c.Literals[i].Var+maxVar {
			t.Fatalf("shift mismatch at %d: got %d", i, l.Var)
		}
	}
	back := ShiftClause(shifted, -maxVar)
	if !back.Equal(c) {
		t.Errorf("shift/unshift round trip failed: got %v, want %v", back, c)
	}
}

func TestCNFAddClauseDedups(t *testing.T) {
	f := NewCNF()
	f.AddClause(NewClause(Pos(1), Neg(2)))
	f.AddClause(NewClause(Neg(2), Pos(1)))
	if len(f.Clauses) != 1 {
		t.Fatalf("expected dedup to 1 clause, got %d", len(f.Clauses))
	}
}

func TestCNFMaxVar(t *testing.T) {
	f := NewCNF()
	f.AddClause(NewClause(Pos(1), Neg(7)))
	f.AddClause(NewClause(Pos(3)))
	if got := f.MaxVar(); got != 7 {
		t.Errorf("MaxVar() = %d, want 7", got)
	}
}
