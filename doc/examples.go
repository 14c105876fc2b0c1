// Command examples demonstrates the ic3 engine's public packages end to
// end: building a finite-state system by hand, running the PDR driver
// over it, and reading back its verdict, invariant, and counterexample.
package main

import (
	"fmt"

	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/fsts"
	"github.com/go-pdr/ic3/pdr"
	"github.com/go-pdr/ic3/ternary"
)

// ExampleEmptyCircuit demonstrates the trivial-safe shortcut: a circuit
// with no bad outputs is proved safe without running PDR at all.
func ExampleEmptyCircuit() {
	fmt.Println("=== Empty Circuit (no bad outputs) ===")
	sys := fsts.New(1, nil, nil, nil, nil, nil)
	result := runPDR(sys)
	fmt.Printf("Outcome: %s\n\n", result.Outcome)
}

// ExampleLatchNeverSet demonstrates a one-bit latch that starts at 0 and
// never changes, so the property "the latch is never 1" holds.
func ExampleLatchNeverSet() {
	fmt.Println("=== One-Bit Latch, Always Zero ===")
	latchVar := cnf.Variable(1)
	sys := fsts.New(
		1,
		nil,
		[]fsts.Latch{{Var: latchVar, Next: cnf.Pos(latchVar), Init: fsts.InitZero}},
		nil,
		[]cnf.Literal{cnf.Pos(latchVar)},
		nil,
	)
	result := runPDR(sys)
	fmt.Printf("Outcome: %s\n", result.Outcome)
	fmt.Printf("Invariant clauses: %d\n\n", len(result.Invariant))
}

// ExampleTwoBitCounter builds a free-running 2-bit binary counter (bit0
// toggles every cycle, bit1 toggles when bit0 was 1) out of AND gates and
// literal negation, the same De-Morgan trick EmitCertificate runs in
// reverse when it expands an extension variable back into a gate. The
// property "the counter never holds the value 3" is false -- a real
// mod-4 counter reaches every value -- so this prints a counterexample.
func ExampleTwoBitCounter() {
	fmt.Println("=== Two-Bit Counter Reaching Value 3 ===")
	bit0, bit1 := cnf.Variable(1), cnf.Variable(2)
	gAndNotB0, gNotAndB0, gNeitherDisjunct, gBothBits := cnf.Variable(3), cnf.Variable(4), cnf.Variable(5), cnf.Variable(6)

	next1 := cnf.Neg(gNeitherDisjunct) // ¬gNeitherDisjunct == bit1 XOR bit0

	sys := fsts.New(
		gBothBits,
		nil,
		[]fsts.Latch{
			{Var: bit0, Next: cnf.Neg(bit0), Init: fsts.InitZero},
			{Var: bit1, Next: next1, Init: fsts.InitZero},
		},
		[]fsts.Gate{
			{Out: gAndNotB0, A: cnf.Pos(bit1), B: cnf.Neg(bit0)},
			{Out: gNotAndB0, A: cnf.Neg(bit1), B: cnf.Pos(bit0)},
			{Out: gNeitherDisjunct, A: cnf.Neg(gAndNotB0), B: cnf.Neg(gNotAndB0)},
			{Out: gBothBits, A: cnf.Pos(bit0), B: cnf.Pos(bit1)},
		},
		[]cnf.Literal{cnf.Pos(gBothBits)},
		nil,
	)
	result := runPDR(sys)
	fmt.Printf("Outcome: %s\n", result.Outcome)
	if result.Counterexample != nil {
		fmt.Printf("Initial state: %s\n", result.Counterexample.Initial.String())
		fmt.Printf("Input cycles to reach value 3: %d\n", len(result.Counterexample.Inputs))
	}
	fmt.Println()
}

func runPDR(sys *fsts.System) pdr.Result {
	sim := ternary.New(sys, 0.99)
	sys.Sim = sim
	driver := pdr.New(sys, pdr.DefaultConfig())
	return driver.Run()
}

func main() {
	fmt.Println("ic3 Engine Examples")
	fmt.Println("===================")
	fmt.Println()

	ExampleEmptyCircuit()
	ExampleLatchNeverSet()
	ExampleTwoBitCounter()

	fmt.Println("All examples completed.")
}
