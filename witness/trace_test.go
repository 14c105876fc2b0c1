package witness

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/fsts"
	"github.com/go-pdr/ic3/pdr"
)

// TestEmitCounterexampleFormat builds a 2-latch, 1-input system and a
// counterexample that fully assigns one latch and leaves the other
// unassigned (ternary X), checking the emitted witness matches the AIGER
// trace format exactly: a "1" line, the selected bad index, the initial
// latch bits, one line per input cycle, and a closing ".".
func TestEmitCounterexampleFormat(t *testing.T) {
	l1, l2, in := cnf.Variable(1), cnf.Variable(2), cnf.Variable(3)
	sys := fsts.New(3, []cnf.Variable{in},
		[]fsts.Latch{
			{Var: l1, Next: cnf.Pos(l1), Init: fsts.InitZero},
			{Var: l2, Next: cnf.Pos(l2), Init: fsts.InitZero},
		}, nil, nil, nil)

	cex := &pdr.Counterexample{
		Initial: cnf.NewCube(cnf.Pos(l1)), // l1=1, l2 left unassigned (X)
		Inputs:  []cnf.Cube{cnf.NewCube(cnf.Pos(in))},
	}

	var buf bytes.Buffer
	if err := EmitCounterexample(&buf, sys, 2, cex); err != nil {
		t.Fatalf("EmitCounterexample: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{"1", "b2", "1x", "1", "."}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

// TestEmitCounterexampleMultiCycleAllX covers a counterexample whose input
// cube never mentions some of the circuit's inputs: every omitted bit must
// come out as 'x', across more than one cycle.
func TestEmitCounterexampleMultiCycleAllX(t *testing.T) {
	l1 := cnf.Variable(1)
	in1, in2 := cnf.Variable(2), cnf.Variable(3)
	sys := fsts.New(3, []cnf.Variable{in1, in2},
		[]fsts.Latch{{Var: l1, Next: cnf.Pos(l1), Init: fsts.InitZero}}, nil, nil, nil)

	cex := &pdr.Counterexample{
		Initial: cnf.NewCube(), // no latch assignment at all
		Inputs: []cnf.Cube{
			cnf.NewCube(cnf.Pos(in1)),
			cnf.NewCube(cnf.Neg(in2)),
		},
	}

	var buf bytes.Buffer
	if err := EmitCounterexample(&buf, sys, 0, cex); err != nil {
		t.Fatalf("EmitCounterexample: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{"1", "b0", "x", "1x", "x0", "."}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}
