package witness

import (
	"bytes"
	"testing"

	"github.com/go-pdr/ic3/aiger"
	"github.com/go-pdr/ic3/bdd"
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/fsts"
)

func TestCertBuilderAndConstantFolding(t *testing.T) {
	b := newCertBuilder(10, nil)
	x := aiger.Literal(4)

	if got := b.and(x, constTrue); got != x {
		t.Errorf("x AND true should be x, got %v", got)
	}
	if got := b.and(x, constFalse); got != constFalse {
		t.Errorf("x AND false should be false, got %v", got)
	}
	if got := b.and(x, x); got != x {
		t.Errorf("x AND x should be x, got %v", got)
	}
	if got := b.and(x, x^1); got != constFalse {
		t.Errorf("x AND ¬x should be false, got %v", got)
	}
	if len(b.gates) != 0 {
		t.Errorf("none of the folded cases should allocate a gate, got %d", len(b.gates))
	}
}

// TestCertBuilderAndSharesGateRegardlessOfOperandOrder exercises the
// hash-consing discipline: AND-ing the same two non-constant literals in
// either order must return the same gate, allocating exactly one.
func TestCertBuilderAndSharesGateRegardlessOfOperandOrder(t *testing.T) {
	b := newCertBuilder(10, nil)
	x, y := aiger.Literal(4), aiger.Literal(6)

	g1 := b.and(x, y)
	g2 := b.and(y, x)
	if g1 != g2 {
		t.Fatalf("expected AND to share its gate across operand order, got %v vs %v", g1, g2)
	}
	if len(b.gates) != 1 {
		t.Errorf("expected exactly one gate allocated, got %d", len(b.gates))
	}
}

// TestCertBuilderMaterializeDefinitionCachesAcrossReferences ensures a
// definition's defining subcircuit is built once even when resolve is
// called on its extension literal more than once (e.g. once directly,
// once through another reference to the same variable).
func TestCertBuilderMaterializeDefinitionCachesAcrossReferences(t *testing.T) {
	sys := fsts.New(2, nil, nil, nil, nil, nil)
	lib := definitions.NewLibrary(sys, bdd.NewManager(), nil)
	lib.AddDefinition(definitions.AND, []cnf.Literal{cnf.Pos(1), cnf.Pos(2)})
	def := lib.Get(0)

	b := newCertBuilder(10, lib)
	first := b.resolve(cnf.Pos(def.Var))
	gatesAfterFirst := len(b.gates)
	second := b.resolve(cnf.Neg(def.Var))

	if first != second^1 {
		t.Errorf("expected the negated reference to be the positive reference's complement, got %v vs %v", first, second)
	}
	if len(b.gates) != gatesAfterFirst {
		t.Errorf("expected no new gates from the second (cached) reference, had %d now have %d", gatesAfterFirst, len(b.gates))
	}
}

// TestEmitCertificateRoundTrip builds a certificate for a 2-latch system
// with one AND-gate original circuit, one coined AND extension variable,
// and a 2-output bad condition -- then reads the emitted AIGER back and
// checks that the original gate and latches survive unchanged, a single
// output is produced, and additional gates were allocated for the
// OR-of-bad and the extension variable's subcircuit.
func TestEmitCertificateRoundTrip(t *testing.T) {
	l1, l2 := cnf.Variable(1), cnf.Variable(2)
	g3 := cnf.Variable(3)
	sys := fsts.New(g3, nil,
		[]fsts.Latch{
			{Var: l1, Next: cnf.Pos(l1), Init: fsts.InitZero},
			{Var: l2, Next: cnf.Pos(l2), Init: fsts.InitZero},
		},
		[]fsts.Gate{{Out: g3, A: cnf.Pos(l1), B: cnf.Pos(l2)}},
		[]cnf.Literal{cnf.Pos(l1), cnf.Pos(l2)},
		nil,
	)

	lib := definitions.NewLibrary(sys, bdd.NewManager(), nil)
	lib.AddDefinition(definitions.AND, []cnf.Literal{cnf.Pos(l1), cnf.Pos(l2)})
	def := lib.Get(0)
	invariant := []cnf.Clause{cnf.NewClause(cnf.Neg(def.Var)), cnf.NewClause(cnf.Pos(l1), cnf.Pos(l2))}

	var buf bytes.Buffer
	if err := EmitCertificate(&buf, sys, lib, invariant); err != nil {
		t.Fatalf("EmitCertificate: %v", err)
	}

	got, err := aiger.Read(&buf)
	if err != nil {
		t.Fatalf("Read back the emitted certificate: %v", err)
	}

	if len(got.Outputs) != 1 {
		t.Fatalf("expected exactly one output, got %d", len(got.Outputs))
	}
	if len(got.Latches) != 2 {
		t.Fatalf("expected 2 latches to survive, got %d", len(got.Latches))
	}
	for _, lat := range got.Latches {
		if lat.Reset != aiger.Literal(0) {
			t.Errorf("expected both latches to reset to 0, got %v", lat.Reset)
		}
	}
	if len(got.Gates) == 0 {
		t.Fatalf("expected at least the original AND gate to survive")
	}
	originalLit := aiger.Literal(uint32(g3) * 2)
	found := false
	for _, g := range got.Gates {
		if g.Lit == originalLit {
			found = true
			// the binary body stores the larger operand first
			wantA, wantB := aiger.Literal(uint32(l2)*2), aiger.Literal(uint32(l1)*2)
			if g.Rhs0 != wantA || g.Rhs1 != wantB {
				t.Errorf("original gate's inputs changed: got (%v,%v), want (%v,%v)", g.Rhs0, g.Rhs1, wantA, wantB)
			}
		}
	}
	if !found {
		t.Errorf("expected the original AND gate (lit %v) to be carried forward unchanged", originalLit)
	}
	if len(got.Gates) <= 1 {
		t.Errorf("expected extra gates beyond the original for the OR-of-bad and the extension variable's subcircuit, got %d total", len(got.Gates))
	}
	if got.MaxVar <= int(g3) {
		t.Errorf("expected MaxVar to grow past the original circuit's highest variable, got %d", got.MaxVar)
	}
}
