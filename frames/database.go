// Package frames holds the per-depth clause deltas F_1, ..., F_k, F_∞ and
// the bookkeeping -- redundancy elimination, the propagation watermark, and
// invariant detection -- that the PDR driver operates on. It is distinct
// from satengine.Frames, which is the underlying SAT-solver abstraction
// this package drives. Grounded on sat/trail.go's level-indexed trail
// bookkeeping (levelStarts / currentLevel), generalized here from decision
// levels to clause-database frame indices.
package frames

import (
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/fsts"
	"github.com/go-pdr/ic3/satengine"
)

// Element is one clause in a frame's delta list, carrying the COI data
// definitions.Implies needs so the database doesn't recompute it per query.
type Element struct {
	Clause   cnf.Clause
	COI      map[cnf.Variable]bool
	StateCOI map[cnf.Variable]bool
}

func (e Element) view() definitions.DeltaView {
	return definitions.DeltaView{Clause: e.Clause, COI: e.COI, StateCOI: e.StateCOI}
}

// Database is the frame clause database: delta_1..delta_depth plus delta_∞,
// backed by a satengine.Frames for the SAT queries that redundancy checking
// and insertion need.
type Database struct {
	sys     *fsts.System
	lib     *definitions.Library
	solvers *satengine.Frames

	deltas   [][]Element // deltas[k-1] = delta_k, for k = 1..depth
	deltaInf []Element

	// Watermark is the lowest frame index not yet known to be fully
	// propagated since the last propagation sweep.
	Watermark int
}

// New builds an empty Database over sys, starting at depth 1 (F_1 only,
// besides F_0 = I and F_∞).
func New(sys *fsts.System, lib *definitions.Library, solvers *satengine.Frames) *Database {
	db := &Database{sys: sys, lib: lib, solvers: solvers}
	db.deltas = append(db.deltas, nil)
	solvers.PushFrame()
	return db
}

// Depth returns k, the index of the highest finite frame.
func (db *Database) Depth() int { return len(db.deltas) }

// Len returns the number of frames counting F_∞ (depth + 1).
func (db *Database) Len() int { return db.Depth() + 1 }

// PushFrame allocates a new highest frame F_{k+1}.
func (db *Database) PushFrame() int {
	db.deltas = append(db.deltas, nil)
	db.solvers.PushFrame()
	return db.Depth()
}

// ClausesFrom returns every clause active from frame k upward (delta_k,
// delta_{k+1}, ..., delta_depth, delta_∞) -- the conjunction a query against
// F_k must account for.
func (db *Database) ClausesFrom(k int) []Element {
	var out []Element
	if k < 1 {
		k = 1
	}
	for i := k - 1; i < len(db.deltas); i++ {
		out = append(out, db.deltas[i]...)
	}
	out = append(out, db.deltaInf...)
	return out
}

func (db *Database) elementsAt(k int) []Element {
	if k < 1 || k > len(db.deltas) {
		return nil
	}
	return db.deltas[k-1]
}

func (db *Database) setElementsAt(k int, es []Element) {
	if k >= 1 && k <= len(db.deltas) {
		db.deltas[k-1] = es
	}
}

func (db *Database) buildElement(c cnf.Clause) Element {
	coi := make(map[cnf.Variable]bool)
	stateCOI := make(map[cnf.Variable]bool)
	for _, lit := range c.Literals {
		coi[lit.Var] = true
		if db.sys.IsStateVariable(lit.Var) {
			stateCOI[lit.Var] = true
		}
	}
	return Element{Clause: c, COI: coi, StateCOI: stateCOI}
}

// AddClause canonicalizes C, drops it if subsumed by an existing clause at
// frame k or above, removes clauses at ≤ k that C itself subsumes, and
// updates the SAT solvers and delta lists. It returns false if C was
// dropped as redundant. k may be Depth()+1 to insert directly into F_∞.
func (db *Database) AddClause(c cnf.Clause, k int) bool {
	canon := db.lib.MakeClauseCanonical(c)
	elem := db.buildElement(canon)

	// An existing clause at frame >= k (or in F_infinity) that implies the
	// newcomer under the definition library covers every frame the newcomer
	// would, so the newcomer is redundant.
	for i := k; i <= db.Depth(); i++ {
		for _, e := range db.elementsAt(i) {
			if db.lib.Implies(e.view(), elem.view()) {
				return false
			}
		}
	}
	for _, e := range db.deltaInf {
		if db.lib.Implies(e.view(), elem.view()) {
			return false
		}
	}

	// The newcomer in turn retires any weaker clause it covers: those homed
	// at <= k, plus F_infinity's only when the newcomer itself lands there.
	for i := 1; i <= k && i <= db.Depth(); i++ {
		kept := db.elementsAt(i)[:0]
		for _, e := range db.elementsAt(i) {
			if !db.lib.Implies(elem.view(), e.view()) {
				kept = append(kept, e)
			}
		}
		db.setElementsAt(i, kept)
	}
	if k > db.Depth() {
		kept := db.deltaInf[:0]
		for _, e := range db.deltaInf {
			if !db.lib.Implies(elem.view(), e.view()) {
				kept = append(kept, e)
			}
		}
		db.deltaInf = kept
	}

	// satengine.Frames indexes frames 0-based in allocation order, while the
	// database numbers them 1-based (delta_1 is the first pushed frame), so
	// every downstream query translates k -> k-1; F_infinity translates to
	// satengine's InfiniteFrame sentinel.
	if k > db.Depth() {
		db.deltaInf = append(db.deltaInf, elem)
		db.solvers.AddClause(canon, satengine.InfiniteFrame)
	} else {
		db.setElementsAt(k, append(db.elementsAt(k), elem))
		db.solvers.AddClause(canon, k-1)
	}
	if k < db.Watermark || db.Watermark == 0 {
		db.Watermark = k
	}
	return true
}

// InsertClauseToHighestFramePossible pushes C forward from kLower until
// is_clause_guaranteed_after_transition_if_assumed fails, then inserts it at
// the highest frame that still held.
func (db *Database) InsertClauseToHighestFramePossible(c cnf.Clause, kLower int) int {
	k := kLower
	for k < db.Depth() && db.IsClauseGuaranteedAfterTransitionIfAssumedCurrent(k, c) {
		k++
	}
	db.AddClause(c, k)
	return k
}

// ElementsAt exposes delta_k (1 <= k <= Depth()) for packages (generalize,
// propagate, bva) that must rewrite a frame's element list directly.
func (db *Database) ElementsAt(k int) []Element { return db.elementsAt(k) }

// SetElementsAt replaces delta_k's element list in place.
func (db *Database) SetElementsAt(k int, es []Element) { db.setElementsAt(k, es) }

// DeltaInfinite exposes F_∞'s element list.
func (db *Database) DeltaInfinite() []Element { return db.deltaInf }

// BuildElement computes the COI bookkeeping for a raw clause the way
// AddClause does, for callers (propagate) that move an element between
// frames without going through the redundancy/canonicalization path again.
func (db *Database) BuildElement(c cnf.Clause) Element { return db.buildElement(c) }

// --- satengine query wrappers (1-based k, translated to satengine's 0-based
// frame index) ---

// GetBadCube looks for a (state, input) pair in F_k that itself satisfies
// some bad output.
func (db *Database) GetBadCube(k int) (state, input cnf.Cube, ok bool) {
	return db.solvers.GetBadCube(k - 1)
}

// IsClauseGuaranteedAfterTransition asks whether every successor of F_k
// satisfies C.
func (db *Database) IsClauseGuaranteedAfterTransition(k int, c cnf.Clause) bool {
	return db.solvers.IsClauseGuaranteedAfterTransition(k-1, c)
}

// IsClauseGuaranteedAfterTransitionIfAssumedCurrent is the same query with C
// additionally assumed at the current cycle.
func (db *Database) IsClauseGuaranteedAfterTransitionIfAssumedCurrent(k int, c cnf.Clause) bool {
	return db.solvers.IsClauseGuaranteedAfterTransitionIfAssumedCurrent(k-1, c)
}

// GetPredecessorOfCube looks for a predecessor of s within F_k.
func (db *Database) GetPredecessorOfCube(k int, s cnf.Cube) (state, input, reducedS cnf.Cube, ok bool) {
	return db.solvers.GetPredecessorOfCube(k-1, s)
}

// SolveIsCubeBlocked asks whether s is unreachable in one step from F_k.
func (db *Database) SolveIsCubeBlocked(k int, s cnf.Cube) bool {
	return db.solvers.SolveIsCubeBlocked(k-1, s)
}

// GetStateInClauseAThatHasPredecessorNotInClauseB supports CTG-based
// strengthening.
func (db *Database) GetStateInClauseAThatHasPredecessorNotInClauseB(k int, a, b cnf.Clause) (cnf.Cube, bool) {
	return db.solvers.GetStateInClauseAThatHasPredecessorNotInClauseB(k-1, a, b)
}

// IsClauseSatisfiedByInitial reports whether every initial state (under
// constraints) satisfies c, independent of any frame.
func (db *Database) IsClauseSatisfiedByInitial(c cnf.Clause) bool {
	return db.solvers.IsClauseSatisfiedByInitial(c)
}

// IsInvariantFound returns the smallest i > 0 below the frontier with an
// empty delta_i: then F_i = F_{i+1} = ... = F_∞ is inductive. The frontier
// frame's delta is excluded, since it is empty right after every push.
func (db *Database) IsInvariantFound() (int, bool) {
	for i := 1; i < db.Depth(); i++ {
		if len(db.elementsAt(i)) == 0 {
			return i, true
		}
	}
	return 0, false
}

// InvariantFrom returns the clause set of F_i, ..., F_∞ -- the inductive
// invariant once IsInvariantFound reports i.
func (db *Database) InvariantFrom(i int) []cnf.Clause {
	clauses := make([]cnf.Clause, 0)
	for _, e := range db.ClausesFrom(i) {
		clauses = append(clauses, e.Clause)
	}
	return clauses
}

// Implies reports whether the frame-k delta clause a implies b, using the
// definition library's COI-aware check.
func (db *Database) Implies(a, b Element) bool {
	return db.lib.Implies(a.view(), b.view())
}

// Solvers exposes the underlying SAT abstraction for packages (generalize,
// propagate, bva) that must issue their own queries against specific frames.
func (db *Database) Solvers() *satengine.Frames { return db.solvers }

// Library exposes the definition library backing this database.
func (db *Database) Library() *definitions.Library { return db.lib }

// System exposes the finite-state transition system this database targets.
func (db *Database) System() *fsts.System { return db.sys }
