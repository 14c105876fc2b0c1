package propagate

import (
	"testing"

	"github.com/go-pdr/ic3/bdd"
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/frames"
	"github.com/go-pdr/ic3/fsts"
	"github.com/go-pdr/ic3/satengine"
)

// newTestPropagator builds L0 <- input, L1 <- L0 (both reset to 0) and a
// fresh database over it pushed to depth 3 (F_1..F_3), with no clause
// loaded; each test below adds clauses whose propagation outcome is known
// by construction.
func newTestPropagator(cfg Config) (*Propagator, *frames.Database) {
	input := cnf.Variable(1)
	l0 := cnf.Variable(2)
	l1 := cnf.Variable(3)
	sys := fsts.New(3, []cnf.Variable{input},
		[]fsts.Latch{
			{Var: l0, Next: cnf.Pos(input), Init: fsts.InitZero},
			{Var: l1, Next: cnf.Pos(l0), Init: fsts.InitZero},
		}, nil, []cnf.Literal{cnf.Pos(l1)}, nil)
	lib := definitions.NewLibrary(sys, bdd.NewManager(), nil)
	solvers := satengine.New(sys, satengine.SingleSolverActivation)
	db := frames.New(sys, lib, solvers)
	db.PushFrame()
	db.PushFrame()
	return New(db, lib, cfg), db
}

func TestPropagateTautologyAlwaysMoves(t *testing.T) {
	p, db := newTestPropagator(Config{})
	db.AddClause(cnf.NewClause(cnf.Pos(2), cnf.Neg(2)), 1)

	p.Propagate()

	found := false
	for _, e := range db.ElementsAt(2) {
		if e.Clause.IsTautology() {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the tautological clause loaded at F_1 to have propagated to F_2")
	}
	if len(db.ElementsAt(1)) != 0 {
		t.Errorf("expected F_1 to be empty after the tautology propagated away, got %d elements", len(db.ElementsAt(1)))
	}
}

func TestPropagateEmptyDeltaReportsInvariant(t *testing.T) {
	p, db := newTestPropagator(Config{})
	// F_1 starts empty (no clause ever added), so the very first sweep
	// should report it as the invariant frame immediately.
	frame, found := p.Propagate()
	if !found {
		t.Fatalf("expected an empty delta_1 to report invariant found")
	}
	if frame != 1 {
		t.Errorf("expected invariant frame 1, got %d", frame)
	}
	_ = db
}

func TestPropagateAdvancesWatermarkWhenNoInvariant(t *testing.T) {
	p, db := newTestPropagator(Config{})
	// A non-tautological, non-guaranteed clause should NOT propagate, so the
	// frame stays non-empty and no invariant is reported on this sweep.
	db.AddClause(cnf.NewClause(cnf.Neg(3)), 1)

	_, found := p.Propagate()
	if found {
		t.Errorf("a non-empty, non-propagating delta_1 should not report invariant found")
	}
	if db.Watermark != db.Depth() {
		t.Errorf("expected watermark to advance to depth %d, got %d", db.Depth(), db.Watermark)
	}
}

func TestSplitCandidatesAND(t *testing.T) {
	x := cnf.Variable(10)
	a, b := cnf.Pos(1), cnf.Pos(2)
	def := definitions.Definition{Var: x, F: definitions.AND, Inputs: []cnf.Literal{a, b}}

	c := cnf.NewClause(cnf.Pos(x), cnf.Neg(5))
	cands := splitCandidates(c, cnf.Pos(x), def)
	if len(cands) != 2 {
		t.Fatalf("expected 2 AND split candidates, got %d", len(cands))
	}
	for _, cand := range cands {
		if !cand.Contains(cnf.Neg(5)) {
			t.Errorf("expected the rest of the clause to survive the split, got %v", cand)
		}
	}
}

func TestSplitCandidatesXOR(t *testing.T) {
	x := cnf.Variable(10)
	a, b := cnf.Pos(1), cnf.Pos(2)
	def := definitions.Definition{Var: x, F: definitions.XOR, Inputs: []cnf.Literal{a, b}}

	c := cnf.NewClause(cnf.Neg(x))
	cands := splitCandidates(c, cnf.Neg(x), def)
	if len(cands) != 2 {
		t.Fatalf("expected 2 XOR split candidates for one polarity, got %d", len(cands))
	}
}
