// Package satengine implements the SAT-layer abstraction over
// github.com/go-air/gini: activation-literal frame encoding (or a solver
// per frame as a fallback), assumption-based queries, and failed-assumption
// extraction. Grounded on
// operator-framework-operator-lifecycle-manager/pkg/controller/registry/resolver/solver's
// litMapping, which wraps the same gini engine to translate between a
// problem's native variables and the solver's internal literals and to
// extract conflicting assumptions via Why.
package satengine

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/fsts"
	"github.com/go-pdr/ic3/ic3err"
)

// Encoding selects between the two SAT abstractions this package supports.
type Encoding int

const (
	// SingleSolverActivation uses one incremental solver with a per-frame
	// activation literal.
	SingleSolverActivation Encoding = iota
	// OneSolverPerFrame is the fallback: a dedicated solver per frame, each
	// with its own independent variable numbering (gini instances do not
	// share a literal space).
	OneSolverPerFrame
)

// InfiniteFrame is the frame index of F_infinity. Clauses added here are
// unguarded (single-solver encoding) or present in every per-frame solver,
// and stay that way across frame pushes and rebuilds.
const InfiniteFrame = int(^uint32(0) >> 1)

// solverSlot pairs one gini instance with its own circuit-variable map,
// needed because every gini.Gini allocates literals independently.
type solverSlot struct {
	g      *gini.Gini
	varMap map[cnf.Variable]z.Lit
	revMap map[z.Lit]cnf.Variable
}

func newSlot() *solverSlot {
	s := &solverSlot{g: gini.New(), varMap: make(map[cnf.Variable]z.Lit), revMap: make(map[z.Lit]cnf.Variable)}
	// Variable 0 is the AIGER constant-false wire; pin it so literals over
	// it keep their meaning inside the solver.
	s.assertClause([]z.Lit{s.litFor(0).Not()})
	return s
}

func (s *solverSlot) litFor(v cnf.Variable) z.Lit {
	if l, ok := s.varMap[v]; ok {
		return l
	}
	l := s.g.Lit()
	s.varMap[v] = l
	s.revMap[l] = v
	return l
}

func (s *solverSlot) translate(l cnf.Literal) z.Lit {
	m := s.litFor(l.Var)
	if l.Negated {
		return m.Not()
	}
	return m
}

func (s *solverSlot) translateAll(lits []cnf.Literal) []z.Lit {
	out := make([]z.Lit, len(lits))
	for i, l := range lits {
		out[i] = s.translate(l)
	}
	return out
}

func (s *solverSlot) assertClause(lits []z.Lit) {
	for _, l := range lits {
		s.g.Add(l)
	}
	s.g.Add(0)
}

// assumeClause adds c as a one-shot guarded clause (c ∨ guard) and returns
// the ¬guard assumption that activates it, plus a retire function that
// permanently satisfies the guard once the query is done. This is how a
// query constrains the solver with a disjunction without the constraint
// outliving it.
func (s *solverSlot) assumeClause(lits []cnf.Literal) (assumption z.Lit, retire func()) {
	guard := s.g.Lit()
	s.assertClause(append(s.translateAll(lits), guard))
	return guard.Not(), func() { s.assertClause([]z.Lit{guard}) }
}

func (s *solverSlot) untranslate(m z.Lit) cnf.Literal {
	v, ok := s.revMap[m.Var().Pos()]
	if !ok {
		panic(ic3err.Internal("satengine", "untranslate", "solver literal has no circuit variable"))
	}
	return cnf.Lit(v, !m.IsPos())
}

// Frames is the SAT-layer abstraction the frame database and PDR driver
// query. It owns the variable map between circuit variables and solver
// literals, and clears the reset-needed flag before every query.
type Frames struct {
	sys      *fsts.System
	encoding Encoding

	single      *solverSlot   // used when encoding == SingleSolverActivation
	perFrame    []*solverSlot // used when encoding == OneSolverPerFrame
	inf         *solverSlot   // F_infinity solver, per-frame encoding only
	activations []z.Lit       // a_0..a_{k-1}, single-solver encoding only

	needsReset bool
	clauseLog  []frameClause            // replayed on rebuild
	defs       []definitions.Definition // replayed into both cycles on rebuild
}

type frameClause struct {
	c cnf.Clause
	k int
}

// New builds a Frames abstraction over sys using the requested encoding.
func New(sys *fsts.System, encoding Encoding) *Frames {
	f := &Frames{sys: sys, encoding: encoding}
	f.rebuild()
	return f
}

// loadedSlot builds a fresh solver preloaded with the transition relation
// and every definition's defining clauses at both cycles.
func (f *Frames) loadedSlot() *solverSlot {
	s := newSlot()
	transition := f.sys.ConstructTransitionCNF(true, true, true, true)
	for _, d := range f.defs {
		for _, c := range d.DefiningClauses() {
			transition.AddClause(c)
			transition.AddClause(f.sys.AddTagsToClause(c, 1))
		}
	}
	for _, c := range transition.Clauses {
		s.assertClause(s.translateAll(c.Literals))
	}
	return s
}

// rebuild (re)constructs the solver(s) from scratch: the transition
// relation plus every clause ever added via AddClause, replayed from
// clauseLog. This reset-and-replay strategy is the simpler of the two
// valid approaches to variable-map reshuffling, triggered whenever a new
// definition changes the variable-map invariant.
func (f *Frames) rebuild() {
	switch f.encoding {
	case SingleSolverActivation:
		f.single = f.loadedSlot()
		for i := range f.activations {
			f.activations[i] = f.single.g.Lit()
		}
	case OneSolverPerFrame:
		for i := range f.perFrame {
			f.perFrame[i] = f.loadedSlot()
		}
		f.inf = f.loadedSlot()
	}

	for _, fc := range f.clauseLog {
		f.assertFrameClause(fc.c, fc.k)
	}
	f.needsReset = false
}

// PushFrame allocates a new highest frame, returning its index. For the
// single-solver encoding this allocates a fresh activation literal; for the
// per-frame fallback it adds an independent solver loaded with the
// transition relation and every F_infinity clause learned so far.
func (f *Frames) PushFrame() int {
	switch f.encoding {
	case SingleSolverActivation:
		f.EnsureReady()
		a := f.single.g.Lit()
		f.activations = append(f.activations, a)
		return len(f.activations) - 1
	case OneSolverPerFrame:
		f.EnsureReady()
		s := f.loadedSlot()
		for _, fc := range f.clauseLog {
			if fc.k == InfiniteFrame {
				s.assertClause(s.translateAll(fc.c.Literals))
			}
		}
		f.perFrame = append(f.perFrame, s)
		return len(f.perFrame) - 1
	}
	return -1
}

// AddDefinitionClauses implements definitions.Emitter: a new extension
// variable's defining clauses must be visible to every future query at both
// the current and next cycle, so they are recorded here and baked into the
// transition relation on the next rebuild; the reset flag is raised and
// cleared by the next EnsureReady.
func (f *Frames) AddDefinitionClauses(d definitions.Definition) {
	f.defs = append(f.defs, d)
	f.needsReset = true
}

// EnsureReady rebuilds the solver(s) if a definition was added since the
// last query, clearing the reset-needed flag.
func (f *Frames) EnsureReady() {
	if f.needsReset {
		f.rebuild()
	}
}

// assertFrameClause teaches the solver(s) that c holds in F_k. A clause
// homed at delta_k belongs to F_i for every i <= k, so in the per-frame
// encoding it lands in solvers 0..k, and in the single-solver encoding it
// carries guards a_k..a_last: a query against frame i assumes a_j false
// exactly for j >= i, activating the clause iff i <= k. F_infinity clauses
// carry no guard at all and land in every solver.
func (f *Frames) assertFrameClause(c cnf.Clause, k int) {
	switch f.encoding {
	case SingleSolverActivation:
		lits := f.single.translateAll(c.Literals)
		if k != InfiniteFrame {
			for i := k; i < len(f.activations); i++ {
				lits = append(lits, f.activations[i])
			}
		}
		f.single.assertClause(lits)
	case OneSolverPerFrame:
		for i := 0; i < len(f.perFrame) && i <= k; i++ {
			f.perFrame[i].assertClause(f.perFrame[i].translateAll(c.Literals))
		}
		if k == InfiniteFrame {
			f.inf.assertClause(f.inf.translateAll(c.Literals))
		}
	}
}

// AddClause teaches the solver(s) that c holds in F_k (and therefore every
// frame below it), recording it so a future rebuild can replay it. Use
// InfiniteFrame for F_infinity.
func (f *Frames) AddClause(c cnf.Clause, k int) {
	f.EnsureReady()
	f.clauseLog = append(f.clauseLog, frameClause{c: c, k: k})
	f.assertFrameClause(c, k)
}

// frameAssumptions builds the activation assumptions for a query against
// frame k: a_i is assumed false for every i >= k (activating every clause
// homed at or above k) and true for i < k (deactivating clauses valid only
// for strictly lower frames). Querying with k past the last activation
// leaves only the unguarded F_infinity clauses active; querying with k < 0
// activates everything, which is how F_0 queries see every frame clause
// before the caller adds the initial cube on top.
func (f *Frames) frameAssumptions(k int) []z.Lit {
	if f.encoding != SingleSolverActivation {
		return nil
	}
	assumps := make([]z.Lit, 0, len(f.activations))
	for i := range f.activations {
		if i < k {
			assumps = append(assumps, f.activations[i])
		} else {
			assumps = append(assumps, f.activations[i].Not())
		}
	}
	return assumps
}

func (f *Frames) slotForFrame(k int) *solverSlot {
	if f.encoding == SingleSolverActivation {
		return f.single
	}
	if k >= len(f.perFrame) {
		return f.inf
	}
	if k < 0 {
		k = 0
	}
	return f.perFrame[k]
}
