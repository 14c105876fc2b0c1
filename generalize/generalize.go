// Package generalize implements clause generalization:
// weight-ordered inductive minimization, CTG-based strengthening, and
// definition-based (extension-variable) generalization. Grounded on
// sat/conflict_analysis.go's UIP-minimization loop (sat/conflict_analysis.go's
// Analyzer.minimize drops a learned clause's literals one at a time while a
// redundancy predicate still holds), generalized here from "redundant w.r.t.
// the implication graph" to "redundant w.r.t. inductiveness relative to a frame".
package generalize

import (
	"math/rand"

	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/frames"
	"github.com/go-pdr/ic3/fsts"
)

// Weighted is the subset of ternary.Simulator's interface generalization
// needs: per-variable dropping priority and post-success decay.
type Weighted interface {
	Weight(v cnf.Variable) float64
	DecayWeights(vars []cnf.Variable)
}

// Config carries the tuning knobs this component exposes.
type Config struct {
	MinClauseLength int // minimum_clause_length_to_generalize
	UseCTG          bool
	CTGMaxDepth     int
	CTGMaxCount     int
	UseDefinitions  bool // er_generalization
	Decay           float64
	Rand            *rand.Rand
}

// DefaultConfig matches the original artifact's published defaults.
func DefaultConfig() Config {
	return Config{
		MinClauseLength: 1,
		UseCTG:          true,
		CTGMaxDepth:     1,
		CTGMaxCount:     3,
		UseDefinitions:  true,
		Decay:           0.99,
		Rand:            rand.New(rand.NewSource(1)),
	}
}

// Generalizer minimizes a clause that is already inductive relative to some
// frame F_k into a smaller clause that remains inductive.
type Generalizer struct {
	sys *fsts.System
	db  *frames.Database
	lib *definitions.Library
	w   Weighted
	cfg Config

	ctgsBlocked int
}

// New builds a Generalizer over db, using w for weight-ordered dropping.
func New(sys *fsts.System, db *frames.Database, lib *definitions.Library, w Weighted, cfg Config) *Generalizer {
	return &Generalizer{sys: sys, db: db, lib: lib, w: w, cfg: cfg}
}

// Generalize runs the full minimization pipeline on C (already known
// inductive relative to F_k) and returns the minimized clause.
func (g *Generalizer) Generalize(c cnf.Clause, k int) cnf.Clause {
	lits := append([]cnf.Literal(nil), c.Literals...)
	// Seeded shuffle first, then a stable sort by weight: equal-weight
	// literals end up in a reproducible pseudo-random dropping order.
	if g.cfg.Rand != nil {
		g.cfg.Rand.Shuffle(len(lits), func(i, j int) { lits[i], lits[j] = lits[j], lits[i] })
	}
	cnf.SortByWeight(lits, g.w.Weight, g.sys.IsStateVariable)
	cur := cnf.NewClause(lits...)

	cur = g.inductiveMinimize(cur, lits, k)
	if g.cfg.UseDefinitions {
		cur = g.definitionGeneralize(cur, k)
	}

	vars := make([]cnf.Variable, len(cur.Literals))
	for i, l := range cur.Literals {
		vars[i] = l.Var
	}
	g.w.DecayWeights(vars)
	return cur
}

// isInductive reports whether c holds under every initial state and is
// inductive relative to F_k: F_k ∧ C ∧ T ⇒ C'.
func (g *Generalizer) isInductive(c cnf.Clause, k int) bool {
	if !g.db.IsClauseSatisfiedByInitial(c) {
		return false
	}
	return g.db.IsClauseGuaranteedAfterTransitionIfAssumedCurrent(k, c)
}

// inductiveMinimize tries, for each literal in the given dropping order, to
// drop it; if dropping breaks inductiveness and the clause is all state
// literals, it tries CTG-based strengthening before giving up on that
// literal. The order carries the weight sort, which the clause's own
// canonical literal order would erase.
func (g *Generalizer) inductiveMinimize(c cnf.Clause, order []cnf.Literal, k int) cnf.Clause {
	cur := c
	for _, l := range order {
		if len(cur.Literals) <= g.cfg.MinClauseLength {
			break
		}
		if !cur.Contains(l) {
			continue // already dropped by an earlier CTG-driven rewrite
		}
		candidate := cur.Without(l)
		if g.isInductive(candidate, k) {
			cur = candidate
			continue
		}
		if g.cfg.UseCTG && allStateLiterals(candidate, g.sys) && k > 1 {
			depth, count := g.cfg.CTGMaxDepth, 0
			if g.ctgDown(&candidate, k, &depth, &count) {
				cur = candidate
			}
		}
	}
	return cur
}

func allStateLiterals(c cnf.Clause, sys *fsts.System) bool {
	for _, l := range c.Literals {
		if !sys.IsStateLiteral(l) {
			return false
		}
	}
	return true
}

// ctgDown is the standard IC3/PDR "down" procedure: repeatedly try to prove
// c inductive relative to F_k, and whenever it fails because of a
// predecessor in F_{k-1} (a CTG), recursively generalize and insert a
// blocking clause for that CTG before retrying, bounded by depth and count.
func (g *Generalizer) ctgDown(c *cnf.Clause, k int, depth, count *int) bool {
	for {
		if !g.db.IsClauseSatisfiedByInitial(*c) {
			return false
		}
		if g.db.IsClauseGuaranteedAfterTransitionIfAssumedCurrent(k, *c) {
			return true
		}
		if *depth <= 0 || *count >= g.cfg.CTGMaxCount {
			return false
		}
		ctgState, _, _, ok := g.db.GetPredecessorOfCube(k-1, c.Negate())
		if !ok {
			return false
		}
		*count++
		*depth--
		blocked := g.blockCTG(ctgState, k-1, depth, count)
		*depth++
		if !blocked {
			return false
		}
	}
}

// blockCTG generalizes ¬ctgState into an inductive clause relative to
// frame and inserts it at the highest frame possible, the way the PDR
// driver blocks an ordinary proof obligation -- but run locally, bounded by
// the caller's remaining CTG budget, rather than through the global
// obligation queue.
func (g *Generalizer) blockCTG(ctgState cnf.Cube, frame int, depth, count *int) bool {
	if frame < 1 {
		return false
	}
	blocking := ctgState.Negate()
	if !g.db.IsClauseSatisfiedByInitial(blocking) {
		return false
	}
	if !g.ctgDown(&blocking, frame, depth, count) {
		return false
	}
	minimized := g.inductiveMinimize(blocking, blocking.Literals, frame)
	g.db.InsertClauseToHighestFramePossible(minimized, frame)
	g.ctgsBlocked++
	return true
}

// CTGsBlocked returns the running total of counterexamples-to-generalization
// this Generalizer has blocked, for the driver's statistics.
func (g *Generalizer) CTGsBlocked() int { return g.ctgsBlocked }

// definitionGeneralize tries folding the clause against every existing
// AND/XOR definition (definitions.Library.Forward), keeping the fold only
// if the result is still inductive.
func (g *Generalizer) definitionGeneralize(c cnf.Clause, k int) cnf.Clause {
	folded, changed := g.lib.Forward(c)
	if !changed {
		return c
	}
	if g.isInductive(folded, k) {
		return folded
	}
	return c
}
