package witness

import (
	"io"

	"github.com/go-pdr/ic3/aiger"
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/fsts"
	"github.com/go-pdr/ic3/pdr"
)

// bitOf looks up how cube assigns v, reporting aiger.BitX when v is absent
// -- ternary simulation routinely leaves a cube partial, and an unassigned
// latch or input is exactly what the AIGER witness format's 'x' means.
func bitOf(cube cnf.Cube, v cnf.Variable) aiger.TernaryBit {
	for _, l := range cube.Literals {
		if l.Var == v {
			if l.Negated {
				return aiger.BitZero
			}
			return aiger.BitOne
		}
	}
	return aiger.BitX
}

func latchBits(sys *fsts.System, cube cnf.Cube) []aiger.TernaryBit {
	bits := make([]aiger.TernaryBit, len(sys.Latches))
	for i, l := range sys.Latches {
		bits[i] = bitOf(cube, l.Var)
	}
	return bits
}

func inputBits(sys *fsts.System, cube cnf.Cube) []aiger.TernaryBit {
	bits := make([]aiger.TernaryBit, len(sys.Inputs))
	for i, v := range sys.Inputs {
		bits[i] = bitOf(cube, v)
	}
	return bits
}

// EmitCounterexample writes cex in the standard AIGER witness format: the
// initial latch valuation, then one input line per cycle up to and
// including the cycle that drives a bad output high. badIndex selects which
// bad output the trace witnesses, for circuits with more than one.
func EmitCounterexample(w io.Writer, sys *fsts.System, badIndex int, cex *pdr.Counterexample) error {
	initial := latchBits(sys, cex.Initial)
	cycles := make([][]aiger.TernaryBit, len(cex.Inputs))
	for i, in := range cex.Inputs {
		cycles[i] = inputBits(sys, in)
	}
	return aiger.WriteCounterexample(w, badIndex, initial, cycles)
}
