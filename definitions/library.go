// Package definitions implements the append-only extension-variable
// library: allocation of fresh variables standing for AND/XOR of existing
// literals, canonical-form rewriting of clauses, BDD-backed caching, and
// cone-of-influence bookkeeping. The free-variable allocation formula and
// append-only, never-retracted history are grounded on
// sat/cnf_converter.go's Tseitin auxiliary-variable minting, generalized
// from "one fresh variable per introduced gate" to "a fresh variable per
// coined AND/XOR pattern, indexed for reuse."
package definitions

import (
	"sort"

	"github.com/go-pdr/ic3/bdd"
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/fsts"
)

// Func is the combinator an extension variable stands for.
type Func int

const (
	AND Func = iota
	XOR
)

// Definition records v ↔ f(inputs), v strictly above every input variable.
type Definition struct {
	Var      cnf.Variable
	F        Func
	Inputs   []cnf.Literal
	BDD      bdd.Node
	COI      map[cnf.Variable]bool
	StateCOI map[cnf.Variable]bool
}

// Emitter receives the CNF clauses a new definition contributes to the SAT
// encoding; satengine.Frames implements it.
type Emitter interface {
	AddDefinitionClauses(d Definition)
}

// Library is the append-only definition store.
type Library struct {
	sys     *fsts.System
	bddMgr  *bdd.Manager
	emitter Emitter

	defs     []Definition
	andIndex map[string]int
	xorIndex map[string]int

	clauseBDDCache map[string]bdd.Node
	cacheOrder     []string
	maxCacheSize   int
	useBDD         bool

	allocCounter int
}

// NewLibrary constructs an empty library bound to sys, bddMgr, and the SAT
// emitter that should learn each definition's defining clauses.
func NewLibrary(sys *fsts.System, bddMgr *bdd.Manager, emitter Emitter) *Library {
	return &Library{
		sys:            sys,
		bddMgr:         bddMgr,
		emitter:        emitter,
		andIndex:       make(map[string]int),
		xorIndex:       make(map[string]int),
		clauseBDDCache: make(map[string]bdd.Node),
		maxCacheSize:   4096,
		useBDD:         true,
	}
}

// SetBDDImplication toggles the semantic fall-through of Implies; with it
// off, only the syntactic subset fast path can report an implication.
func (l *Library) SetBDDImplication(on bool) { l.useBDD = on }

func sortedCopy(inputs []cnf.Literal) []cnf.Literal {
	out := append([]cnf.Literal(nil), inputs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Var != out[j].Var {
			return out[i].Var < out[j].Var
		}
		return !out[i].Negated && out[j].Negated
	})
	return out
}

func signature(inputs []cnf.Literal) string {
	s := make([]byte, 0, len(inputs)*6)
	for _, l := range inputs {
		s = append(s, []byte(l.String())...)
		s = append(s, ',')
	}
	return string(s)
}

func varSetSignature(inputs []cnf.Literal) (string, int) {
	vars := make([]cnf.Variable, len(inputs))
	negations := 0
	for i, l := range inputs {
		vars[i] = l.Var
		if l.Negated {
			negations++
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	s := make([]byte, 0, len(vars)*4)
	for _, v := range vars {
		s = append(s, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24), ','}...)
	}
	return string(s), negations
}

// Position looks up an existing definition for f over inputs. XOR matches
// up to even/odd parity of negations across inputs of the same variable
// set: flipping one input's polarity flips the XOR result, so an odd-parity
// match is the same definition negated.
func (l *Library) Position(f Func, inputs []cnf.Literal) (index int, negated bool, found bool) {
	switch f {
	case AND:
		sorted := sortedCopy(inputs)
		idx, ok := l.andIndex[signature(sorted)]
		return idx, false, ok
	case XOR:
		sig, negCount := varSetSignature(inputs)
		idx, ok := l.xorIndex[sig]
		if !ok {
			return 0, false, false
		}
		_, baseNeg := varSetSignature(l.defs[idx].Inputs)
		return idx, (negCount-baseNeg)%2 != 0, true
	}
	return 0, false, false
}

// freeVariable implements the deterministic allocation formula:
// base + (2n*(i/n)) + (i mod n), where n is the FSTS's current maxVar and
// base is set just past every tagged copy of every circuit variable so the
// result can never collide with a circuit variable, a tagged copy of one,
// or a previously allocated (and tagged) extension variable. Interleaving
// by 2n rather than n leaves a same-sized gap for each new variable's own
// tagged next-cycle copy.
func (l *Library) freeVariable() cnf.Variable {
	n := int(l.sys.MaxVar)
	if n == 0 {
		n = 1
	}
	base := 2*l.sys.MaxVar + 1
	i := l.allocCounter
	l.allocCounter++
	v := base + cnf.Variable(2*n*(i/n)) + cnf.Variable(i%n)
	return v
}

// buildBDD constructs a definition's function BDD; inputs that are
// themselves extension variables expand through their own BDD, so the
// result ranges over circuit variables only.
func (l *Library) buildBDD(f Func, inputs []cnf.Literal) bdd.Node {
	switch f {
	case AND:
		n := bdd.True
		for _, in := range inputs {
			n = l.bddMgr.And(n, l.literalBDD(in))
		}
		return n
	case XOR:
		n := bdd.False
		for _, in := range inputs {
			lit := l.literalBDD(in)
			n = l.bddMgr.Or(l.bddMgr.And(n, l.bddMgr.Not(lit)), l.bddMgr.And(l.bddMgr.Not(n), lit))
		}
		return n
	}
	return bdd.False
}

func (l *Library) buildCOI(inputs []cnf.Literal) (map[cnf.Variable]bool, map[cnf.Variable]bool) {
	coi := make(map[cnf.Variable]bool)
	stateCOI := make(map[cnf.Variable]bool)
	for _, in := range inputs {
		coi[in.Var] = true
		if l.sys.IsStateVariable(in.Var) {
			stateCOI[in.Var] = true
		}
		for _, d := range l.defs {
			if d.Var == in.Var {
				for v := range d.COI {
					coi[v] = true
				}
				for v := range d.StateCOI {
					stateCOI[v] = true
				}
			}
		}
	}
	return coi, stateCOI
}

// AddDefinition returns the existing index for (f, inputs) if present,
// otherwise allocates a fresh variable, records the definition, builds and
// caches its BDD, computes its COIs, and emits its defining CNF via the
// attached Emitter.
func (l *Library) AddDefinition(f Func, inputs []cnf.Literal) (index int, negated bool) {
	if idx, neg, ok := l.Position(f, inputs); ok {
		return idx, neg
	}

	sorted := sortedCopy(inputs)
	v := l.freeVariable()
	coi, stateCOI := l.buildCOI(sorted)
	coi[v] = true

	def := Definition{
		Var:      v,
		F:        f,
		Inputs:   sorted,
		BDD:      l.buildBDD(f, sorted),
		COI:      coi,
		StateCOI: stateCOI,
	}
	idx := len(l.defs)
	l.defs = append(l.defs, def)

	switch f {
	case AND:
		l.andIndex[signature(sorted)] = idx
	case XOR:
		sig, _ := varSetSignature(sorted)
		l.xorIndex[sig] = idx
	}

	if l.emitter != nil {
		l.emitter.AddDefinitionClauses(def)
	}
	return idx, false
}

// Get returns the definition at index as stored. It takes no negated flag;
// a caller holding the flag from AddDefinition/Position applies it to the
// extension variable's polarity itself.
func (l *Library) Get(index int) Definition { return l.defs[index] }

// Definitions returns every definition in allocation order.
func (l *Library) Definitions() []Definition { return l.defs }

// Len returns the number of definitions coined so far.
func (l *Library) Len() int { return len(l.defs) }

// BDDManager exposes the manager backing this library's definitions, for
// callers (witness self-check) that need to recompute or compare a
// definition's function BDD.
func (l *Library) BDDManager() *bdd.Manager { return l.bddMgr }

// DefinitionOf looks up the definition whose extension variable is v, used
// by fractional propagation to find what an extension literal stands for
// before splitting a clause back into its inputs.
func (l *Library) DefinitionOf(v cnf.Variable) (Definition, bool) {
	for _, d := range l.defs {
		if d.Var == v {
			return d, true
		}
	}
	return Definition{}, false
}

// IsExtensionVariable reports whether v was allocated by this library.
func (l *Library) IsExtensionVariable(v cnf.Variable) bool {
	_, ok := l.DefinitionOf(v)
	return ok
}
