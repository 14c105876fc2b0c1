package ternary

import (
	"testing"

	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/fsts"
)

// shiftRegisterSystem builds latches L0,L1,L2 with L2 <- L1 <- L0 <- input,
// and bad = L2 AND NOT L1, via one AND gate (variable 10) over L2 and NOT L1.
func shiftRegisterSystem() *fsts.System {
	const (
		l0, l1, l2, input cnf.Variable = 1, 2, 3, 4
		gateOut           cnf.Variable = 10
	)
	latches := []fsts.Latch{
		{Var: l0, Next: cnf.Pos(input), Init: fsts.InitZero},
		{Var: l1, Next: cnf.Pos(l0), Init: fsts.InitZero},
		{Var: l2, Next: cnf.Pos(l1), Init: fsts.InitZero},
	}
	gates := []fsts.Gate{{Out: gateOut, A: cnf.Pos(l2), B: cnf.Neg(l1)}}
	sys := fsts.New(100, []cnf.Variable{input}, latches, gates, []cnf.Literal{cnf.Pos(gateOut)}, nil)
	New(sys, 0.5)
	return sys
}

func TestImplicationsOfStateAndInput(t *testing.T) {
	sys := shiftRegisterSystem()
	state := cnf.NewCube(cnf.Pos(3), cnf.Neg(2)) // L2=1, L1=0 -> bad gate should be 1
	input := cnf.NewCube(cnf.Neg(4))

	impl := sys.Sim.ImplicationsOf(state, input)
	if !impl.Contains(cnf.Pos(10)) {
		t.Errorf("expected gate output 10 to be implied true, got %v", impl)
	}
}

func TestSimplifyBadCubeDropsIrrelevantLiteral(t *testing.T) {
	sys := shiftRegisterSystem()
	// L0 is irrelevant to the bad gate (only L1, L2 matter).
	state := cnf.NewCube(cnf.Pos(3), cnf.Neg(2), cnf.Pos(1))
	minimized, _ := sys.Sim.SimplifyBadCube(state, cnf.Cube{})

	if minimized.Contains(cnf.Pos(1)) {
		t.Errorf("expected L0 literal to be dropped, got %v", minimized)
	}
	if !minimized.Contains(cnf.Pos(3)) || !minimized.Contains(cnf.Neg(2)) {
		t.Errorf("expected L2/NOT L1 to survive, got %v", minimized)
	}
}

func TestSimplifyPredecessorKeepsRequiredLiterals(t *testing.T) {
	sys := shiftRegisterSystem()
	state := cnf.NewCube(cnf.Neg(1), cnf.Neg(2), cnf.Neg(3))
	input := cnf.NewCube(cnf.Pos(4))
	successor := cnf.NewCube(cnf.Pos(1)) // L0' should be 1, forced by input=1 regardless of state

	minState, minInput := sys.Sim.SimplifyPredecessor(state, input, successor, true)
	if minInput.Contains(cnf.Pos(4)) == false {
		t.Errorf("expected input literal forcing L0'=1 to survive, got %v", minInput)
	}
	_ = minState
}
