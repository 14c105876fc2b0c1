package aiger

import (
	"bytes"
	"strings"
	"testing"
)

// oneBitLatchCircuit is "aag 3 1 1 0 1" by hand: one input, one latch whose
// next value is the input, one AND gate unused by the latch (kept to
// exercise the gate delta-encoding round trip), and one bad output (the
// latch), which the round trip below also checks.
func oneBitLatchCircuit() *Circuit {
	return &Circuit{
		MaxVar: 3,
		Inputs: []Literal{2},
		Latches: []Latch{
			{Lit: 4, Next: 2},
		},
		Gates: []Gate{
			{Lit: 6, Rhs0: 4, Rhs1: 2},
		},
		Bad:     []Literal{4},
		Symbols: map[string]string{},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	circ := oneBitLatchCircuit()

	var buf bytes.Buffer
	if err := Write(&buf, circ); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.MaxVar != circ.MaxVar {
		t.Errorf("MaxVar: got %d, want %d", got.MaxVar, circ.MaxVar)
	}
	if len(got.Inputs) != len(circ.Inputs) {
		t.Fatalf("Inputs: got %d, want %d", len(got.Inputs), len(circ.Inputs))
	}
	if len(got.Latches) != 1 || got.Latches[0].Next != circ.Latches[0].Next {
		t.Fatalf("Latches: got %+v, want %+v", got.Latches, circ.Latches)
	}
	if len(got.Gates) != 1 || got.Gates[0].Rhs0 != circ.Gates[0].Rhs0 || got.Gates[0].Rhs1 != circ.Gates[0].Rhs1 {
		t.Fatalf("Gates: got %+v, want %+v", got.Gates, circ.Gates)
	}
	if len(got.Bad) != 1 || got.Bad[0] != circ.Bad[0] {
		t.Fatalf("Bad: got %+v, want %+v", got.Bad, circ.Bad)
	}
}

func TestReadRejectsJusticeFairness(t *testing.T) {
	header := "aig 2 1 1 0 0 0 0 1 0\n" + "2\n" + "4\n"
	_, err := Read(strings.NewReader(header))
	if err == nil {
		t.Fatalf("expected an error for nonzero justice count")
	}
}

func TestLiteralVarAndNegated(t *testing.T) {
	pos := Literal(6)
	neg := Literal(7)
	if pos.Var() != 3 || pos.Negated() {
		t.Errorf("Literal(6): got Var=%d Negated=%v, want Var=3 Negated=false", pos.Var(), pos.Negated())
	}
	if neg.Var() != 3 || !neg.Negated() {
		t.Errorf("Literal(7): got Var=%d Negated=%v, want Var=3 Negated=true", neg.Var(), neg.Negated())
	}
}

func TestWriteCounterexampleFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCounterexample(&buf, 0,
		[]TernaryBit{BitZero, BitX},
		[][]TernaryBit{{BitOne}, {BitZero}},
	)
	if err != nil {
		t.Fatalf("WriteCounterexample: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{"1", "b0", "0x", "1", "0", "."}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}
