package fsts

import (
	"github.com/go-pdr/ic3/aiger"
	"github.com/go-pdr/ic3/cnf"
)

// toCNFLiteral converts an AIGER wire literal to the engine's own literal
// type; both use the same variable numbers (the AIGER literal divided by
// 2), so this splits the wire literal into variable and sign without
// renumbering.
func toCNFLiteral(l aiger.Literal) cnf.Literal {
	return cnf.Lit(cnf.Variable(l.Var()), l.Negated())
}

func toCNFLiterals(ls []aiger.Literal) []cnf.Literal {
	out := make([]cnf.Literal, len(ls))
	for i, l := range ls {
		out[i] = toCNFLiteral(l)
	}
	return out
}

// latchInit classifies a parsed AIGER latch's reset literal: absent or 0
// means deterministically reset to 0, 1 means deterministically reset to
// 1, and a reset literal equal to the latch's own literal is AIGER's
// encoding of an uninitialized (don't-care) latch. Any other reset literal
// describes a combinational reset function this three-valued model can't
// represent exactly, so it is conservatively treated as uninitialized.
func latchInit(l aiger.Latch) LatchInit {
	if !l.HasReset || l.Reset == 0 {
		return InitZero
	}
	if l.Reset == 1 {
		return InitOne
	}
	if l.Reset == l.Lit {
		return InitX
	}
	return InitX
}

// FromAIGER builds a System from a parsed AIGER circuit. Circuits predating
// the "bad"/"constraint" extensions express their single safety property as
// the sole output instead; when c.Bad is empty and outputs are present,
// those outputs are adopted as the bad literals so both circuit styles
// drive the same engine.
func FromAIGER(c *aiger.Circuit) *System {
	inputs := make([]cnf.Variable, len(c.Inputs))
	for i, l := range c.Inputs {
		inputs[i] = cnf.Variable(l.Var())
	}

	latches := make([]Latch, len(c.Latches))
	for i, l := range c.Latches {
		latches[i] = Latch{
			Var:  cnf.Variable(l.Lit.Var()),
			Next: toCNFLiteral(l.Next),
			Init: latchInit(l),
		}
	}

	gates := make([]Gate, len(c.Gates))
	for i, g := range c.Gates {
		gates[i] = Gate{
			Out: cnf.Variable(g.Lit.Var()),
			A:   toCNFLiteral(g.Rhs0),
			B:   toCNFLiteral(g.Rhs1),
		}
	}

	bad := c.Bad
	if len(bad) == 0 {
		bad = c.Outputs
	}

	return New(
		cnf.Variable(c.MaxVar),
		inputs,
		latches,
		gates,
		toCNFLiterals(bad),
		toCNFLiterals(c.Constraints),
	)
}
