// Package propagate implements clause propagation: pushing
// each frame's clauses forward to the next frame when the transition
// relation alone guarantees them, with fractional propagation splitting a
// clause that carries an extension literal back into candidate sub-clauses
// over its defining inputs when the whole clause fails to propagate.
// Grounded on sat/inprocessor.go's clause-strengthening sweep (a pass that
// revisits every clause in the database and tries to shrink or relocate it),
// generalized here from "one global pass" to "per-frame, watermark-gated".
package propagate

import (
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/frames"
)

// Config carries the tuning knobs this component consumes.
type Config struct {
	FractionalPropagation bool // er_fp
	UseInfiniteFrame      bool // use_infinite_frame
}

// Propagator drives forward propagation over a frame database.
type Propagator struct {
	db  *frames.Database
	lib *definitions.Library
	cfg Config
}

// New builds a Propagator over db.
func New(db *frames.Database, lib *definitions.Library, cfg Config) *Propagator {
	return &Propagator{db: db, lib: lib, cfg: cfg}
}

// Propagate sweeps every frame from the database's watermark up to depth-1,
// pushing clauses forward wherever the transition relation alone (or a
// fractional split of an extension-variable clause) guarantees them at the
// next frame. If a frame's delta becomes empty it returns that frame index
// and true, meaning an inductive invariant was found. Otherwise it advances
// the watermark to depth and returns (0, false).
func (p *Propagator) Propagate() (invariantFrame int, found bool) {
	db := p.db
	start := db.Watermark
	if start < 1 {
		start = 1
	}
	fullyDrained := true
	for k := start; k < db.Depth(); k++ {
		// Snapshot the delta before moving anything: AddClause below edits
		// the frame's element lists through its subsumption pass.
		elems := append([]frames.Element(nil), db.ElementsAt(k)...)
		var moved []cnf.Clause
		remaining := make([]frames.Element, 0, len(elems))
		for _, e := range elems {
			if ok, sub := p.tryPropagate(e, k); ok {
				moved = append(moved, sub)
				continue
			}
			remaining = append(remaining, e)
		}
		db.SetElementsAt(k, remaining)
		for _, sub := range moved {
			db.AddClause(sub, k+1)
		}
		if len(db.ElementsAt(k)) == 0 {
			// Count only emptiness the sweep itself produced: every delta
			// since the watermark drained into this one. A bare frame
			// sitting above clauses that refused to move is not a fixpoint.
			if fullyDrained {
				db.Watermark = k + 1
				return k, true
			}
		} else {
			fullyDrained = false
		}
	}
	if p.cfg.UseInfiniteFrame {
		if top, emptied := p.propagateToInfinite(); emptied {
			db.Watermark = db.Depth()
			return top, true
		}
	}
	db.Watermark = db.Depth()
	return 0, false
}

// propagateToInfinite tries to promote every clause at the topmost finite
// frame into F_∞. Promotion must be justified against F_∞ itself, not the
// finite frame: the clause has to be inductive relative to F_∞ ∧ C, which
// is the if-assumed query against the frame past the frontier. Returns the
// frontier index and true if the frontier's delta emptied, making
// F_top = F_∞ the invariant.
func (p *Propagator) propagateToInfinite() (int, bool) {
	top := p.db.Depth()
	elems := append([]frames.Element(nil), p.db.ElementsAt(top)...)
	var moved []cnf.Clause
	remaining := make([]frames.Element, 0, len(elems))
	for _, e := range elems {
		if p.db.IsClauseGuaranteedAfterTransitionIfAssumedCurrent(top+1, e.Clause) {
			moved = append(moved, e.Clause)
			continue
		}
		remaining = append(remaining, e)
	}
	p.db.SetElementsAt(top, remaining)
	for _, c := range moved {
		p.db.AddClause(c, top+1)
	}
	return top, len(p.db.ElementsAt(top)) == 0 && len(moved) > 0
}

// tryPropagate attempts to push e.Clause from frame k to k+1, first as a
// whole clause and then, if fractional propagation is enabled and the
// clause carries an extension literal, as a candidate sub-clause obtained by
// splitting that literal back into one of its defining inputs.
func (p *Propagator) tryPropagate(e frames.Element, k int) (bool, cnf.Clause) {
	if p.db.IsClauseGuaranteedAfterTransition(k, e.Clause) {
		return true, e.Clause
	}
	if !p.cfg.FractionalPropagation {
		return false, cnf.Clause{}
	}
	for _, lit := range e.Clause.Literals {
		def, ok := p.lib.DefinitionOf(lit.Var)
		if !ok {
			continue
		}
		for _, candidate := range splitCandidates(e.Clause, lit, def) {
			// A fraction is strictly stronger than the clause it came from,
			// so it must independently hold on the initial states before it
			// may enter a frame.
			if p.db.IsClauseGuaranteedAfterTransition(k, candidate) &&
				p.db.IsClauseSatisfiedByInitial(candidate) {
				return true, candidate
			}
		}
	}
	return false, cnf.Clause{}
}

// splitCandidates implements the reverse of BVA coining: a clause
// containing extension literal lit (standing for v := AND/XOR(inputs)) is
// split into one candidate per input, replacing lit with that input's
// literal (suitably signed so the candidate is the clause bva/ would have
// started from before coining this definition). AND yields len(inputs)
// candidates (2, in the common binary case); XOR yields one candidate per
// input per the defining clause that contains lit's polarity and that
// input's pair, also 2 per polarity (4 total across both polarities).
func splitCandidates(c cnf.Clause, lit cnf.Literal, def definitions.Definition) []cnf.Clause {
	rest := c.Without(lit)
	out := make([]cnf.Clause, 0, len(def.Inputs))
	switch def.F {
	case definitions.AND:
		for _, in := range def.Inputs {
			replacement := in
			if lit.Negated {
				replacement = in.Negate()
			}
			lits := append(append([]cnf.Literal(nil), rest.Literals...), replacement)
			out = append(out, cnf.NewClause(lits...))
		}
	case definitions.XOR:
		if len(def.Inputs) != 2 {
			break
		}
		a, b := def.Inputs[0], def.Inputs[1]
		var pairs [][2]cnf.Literal
		if lit.Negated {
			pairs = [][2]cnf.Literal{{a, b}, {a.Negate(), b.Negate()}}
		} else {
			pairs = [][2]cnf.Literal{{a.Negate(), b}, {a, b.Negate()}}
		}
		for _, p := range pairs {
			lits := append(append([]cnf.Literal(nil), rest.Literals...), p[0], p[1])
			out = append(out, cnf.NewClause(lits...))
		}
	}
	return out
}
