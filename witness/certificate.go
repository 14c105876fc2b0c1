package witness

import (
	"io"

	"github.com/go-pdr/ic3/aiger"
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/fsts"
)

// aigLit converts a circuit-numbered literal to its AIGER wire encoding.
func aigLit(l cnf.Literal) aiger.Literal {
	lit := aiger.Literal(uint32(l.Var) * 2)
	if l.Negated {
		lit++
	}
	return lit
}

const (
	constFalse = aiger.Literal(0)
	constTrue  = aiger.Literal(1)
)

// certBuilder constructs the certificate AIG: the original circuit's gates
// carried forward unchanged, plus fresh gates materializing every extension
// variable's defining subcircuit and every OR-of-literals the invariant CNF
// needs, with And results shared across equal (lhs, rhs) pairs the way a
// hash-consed gate builder would -- the same structural-sharing discipline
// bdd.Manager applies to BDD nodes, here applied to AIG nodes instead.
type certBuilder struct {
	nextVar  cnf.Variable
	andCache map[[2]aiger.Literal]aiger.Literal
	extCache map[cnf.Variable]aiger.Literal
	gates    []aiger.Gate
	lib      *definitions.Library
}

func newCertBuilder(startVar cnf.Variable, lib *definitions.Library) *certBuilder {
	return &certBuilder{
		nextVar:  startVar,
		andCache: make(map[[2]aiger.Literal]aiger.Literal),
		extCache: make(map[cnf.Variable]aiger.Literal),
		lib:      lib,
	}
}

// and returns the AIG literal for x ∧ y, folding constants and reusing an
// existing gate when one already computes this exact (unordered) pair.
func (b *certBuilder) and(x, y aiger.Literal) aiger.Literal {
	if x == constFalse || y == constFalse {
		return constFalse
	}
	if x == constTrue {
		return y
	}
	if y == constTrue {
		return x
	}
	if x == y {
		return x
	}
	if x == y^1 {
		return constFalse
	}
	key := [2]aiger.Literal{x, y}
	if x > y {
		key = [2]aiger.Literal{y, x}
	}
	if cached, ok := b.andCache[key]; ok {
		return cached
	}
	out := aiger.Literal(uint32(b.nextVar) * 2)
	b.nextVar++
	b.gates = append(b.gates, aiger.Gate{Lit: out, Rhs0: key[0], Rhs1: key[1]})
	b.andCache[key] = out
	return out
}

func (b *certBuilder) or(x, y aiger.Literal) aiger.Literal {
	return b.and(x^1, y^1) ^ 1
}

func (b *certBuilder) andAll(lits []aiger.Literal) aiger.Literal {
	acc := constTrue
	for _, l := range lits {
		acc = b.and(acc, l)
	}
	return acc
}

func (b *certBuilder) orAll(lits []aiger.Literal) aiger.Literal {
	acc := constFalse
	for _, l := range lits {
		acc = b.or(acc, l)
	}
	return acc
}

// resolve maps a circuit literal to its AIG wire, recursively materializing
// an extension variable's AND/XOR defining subcircuit (and caching it) the
// first time that variable is referenced, so sharing among clauses that
// reuse the same extension variable costs one subcircuit, not one per use.
func (b *certBuilder) resolve(l cnf.Literal) aiger.Literal {
	if l.Var == 0 {
		if l.Negated {
			return constTrue
		}
		return constFalse
	}
	if b.lib != nil {
		if def, ok := b.lib.DefinitionOf(l.Var); ok {
			pos := b.materializeDefinition(def)
			if l.Negated {
				return pos ^ 1
			}
			return pos
		}
	}
	lit := aigLit(cnf.Pos(l.Var))
	if l.Negated {
		return lit ^ 1
	}
	return lit
}

func (b *certBuilder) materializeDefinition(d definitions.Definition) aiger.Literal {
	if cached, ok := b.extCache[d.Var]; ok {
		return cached
	}
	var out aiger.Literal
	switch d.F {
	case definitions.AND:
		lits := make([]aiger.Literal, len(d.Inputs))
		for i, in := range d.Inputs {
			lits[i] = b.resolve(in)
		}
		out = b.andAll(lits)
	case definitions.XOR:
		out = constFalse
		for _, in := range d.Inputs {
			w := b.resolve(in)
			out = b.or(b.and(out, w^1), b.and(out^1, w))
		}
	}
	b.extCache[d.Var] = out
	return out
}

// resolveClause builds the OR-of-literals gate for one invariant clause via
// De Morgan: ¬(¬l1 ∧ ¬l2 ∧ ...).
func (b *certBuilder) resolveClause(c cnf.Clause) aiger.Literal {
	negs := make([]aiger.Literal, len(c.Literals))
	for i, l := range c.Literals {
		negs[i] = b.resolve(l.Negate())
	}
	return b.andAll(negs) ^ 1
}

// EmitCertificate writes a binary AIGER circuit whose single output encodes
// ¬(bad ∧ constraints ∧ invariant): an external certifaiger-style checker
// verifies this output is never 1, which combined with invariant's own
// inductiveness (SelfCheck) establishes that bad is unreachable under the
// constraints. The original circuit's gates, inputs, and latches are
// carried forward unchanged; extension variables are expanded into their
// AND/XOR defining subcircuit rather than left as free signals.
func EmitCertificate(w io.Writer, sys *fsts.System, lib *definitions.Library, invariant []cnf.Clause) error {
	// Fresh gate variables continue directly after the circuit's own, so
	// the binary body stays consecutively numbered: extension variables
	// never surface as AIG variables, only the gates that materialize them.
	b := newCertBuilder(sys.MaxVar+1, lib)

	originalGates := make([]aiger.Gate, len(sys.Gates))
	for i, g := range sys.Gates {
		originalGates[i] = aiger.Gate{
			Lit:  aigLit(cnf.Pos(g.Out)),
			Rhs0: aigLit(g.A),
			Rhs1: aigLit(g.B),
		}
	}

	latches := make([]aiger.Latch, len(sys.Latches))
	for i, l := range sys.Latches {
		lat := aiger.Latch{Lit: aigLit(cnf.Pos(l.Var)), Next: aigLit(l.Next), HasReset: true}
		switch l.Init {
		case fsts.InitZero:
			lat.Reset = constFalse
		case fsts.InitOne:
			lat.Reset = constTrue
		case fsts.InitX:
			lat.Reset = lat.Lit // self-literal marks an uninitialized latch
		}
		latches[i] = lat
	}

	inputs := make([]aiger.Literal, len(sys.Inputs))
	for i, v := range sys.Inputs {
		inputs[i] = aigLit(cnf.Pos(v))
	}

	badLits := make([]aiger.Literal, len(sys.Bad))
	for i, l := range sys.Bad {
		badLits[i] = b.resolve(l)
	}
	badWire := b.orAll(badLits)

	constraintLits := make([]aiger.Literal, len(sys.Constraints))
	for i, l := range sys.Constraints {
		constraintLits[i] = b.resolve(l)
	}
	constraintsWire := b.andAll(constraintLits)

	invWires := make([]aiger.Literal, len(invariant))
	for i, c := range invariant {
		invWires[i] = b.resolveClause(c)
	}
	invWire := b.andAll(invWires)

	output := b.andAll([]aiger.Literal{badWire, constraintsWire, invWire}) ^ 1

	circ := &aiger.Circuit{
		MaxVar:  int(b.nextVar) - 1,
		Inputs:  inputs,
		Latches: latches,
		Outputs: []aiger.Literal{output},
		Gates:   append(originalGates, b.gates...),
	}
	return aiger.Write(w, circ)
}
