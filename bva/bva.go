// Package bva implements the Bounded Variable Addition pattern matcher: it
// scans a frame database's current clauses for AND, XOR, and half-adder
// patterns, scores and deconflicts the matches it finds, and
// coins new extension-variable definitions for the survivors. Grounded on
// sat/gaussian.go's XORClause pattern matching (which scans a clause's
// literal set for an exact-parity structure before applying a Gaussian
// elimination step) and sat/cnf_converter.go's Tseitin auxiliary-variable
// minting, BVA being that transformation's reverse: instead of introducing
// one variable per expression node, it discovers which existing clause
// pairs already encode an AND/XOR/half-adder node and retrofits a variable
// for the pattern it finds.
package bva

import (
	"sort"

	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/frames"
)

// Config carries the tuning knobs for this component.
type Config struct {
	MinMatchCount int // min_match_count_to_add_definition
	AndPattern    bool
	XorPattern    bool
	HalfAdder     bool
}

// DefaultConfig enables every pattern with a conservative match threshold.
func DefaultConfig() Config {
	return Config{MinMatchCount: 1, AndPattern: true, XorPattern: true, HalfAdder: true}
}

// Matcher finds BVA opportunities across a frame database's clauses and
// coins definitions for the ones it selects.
type Matcher struct {
	db  *frames.Database
	lib *definitions.Library
	cfg Config
}

// New builds a Matcher over db.
func New(db *frames.Database, lib *definitions.Library, cfg Config) *Matcher {
	return &Matcher{db: db, lib: lib, cfg: cfg}
}

// clauseRef locates one clause inside the frame database for removal.
type clauseRef struct {
	frame int
	idx   int
	c     cnf.Clause
}

// clauseKey is the comparable identity of a clauseRef (frame+idx uniquely
// address a clause's location, so the non-comparable cached clause body
// is left out of the key).
type clauseKey struct {
	frame int
	idx   int
}

func (r clauseRef) key() clauseKey { return clauseKey{frame: r.frame, idx: r.idx} }

func (m *Matcher) allClauses() []clauseRef {
	var out []clauseRef
	for k := 1; k <= m.db.Depth(); k++ {
		for i, e := range m.db.ElementsAt(k) {
			out = append(out, clauseRef{frame: k, idx: i, c: e.Clause})
		}
	}
	return out
}

// patternKind distinguishes the three coining shapes this matcher looks for.
type patternKind int

const (
	patAND patternKind = iota
	patXOR
	patHalfAdder
)

// match is one candidate coining opportunity: the source clauses it would
// remove, the rewritten clauses it would insert, and the definitions it
// needs (one for AND/XOR, two for a half adder: sum and carry).
type match struct {
	kind     patternKind
	sources  []clauseRef
	rewrites []rewrite
	score    int
}

type rewrite struct {
	f      definitions.Func
	inputs []cnf.Literal
	rest   cnf.Clause
	negate bool // whether the extension literal appears negated in the rewrite
}

// Run performs one BVA pass: find matches, cluster and deconflict them,
// coin definitions for the survivors, and rewrite their source clauses. It
// returns the number of clauses rewritten.
func (m *Matcher) Run() int {
	clauses := m.allClauses()
	matches := m.findMatches(clauses)
	if len(matches) == 0 {
		return 0
	}
	chosen := m.deconflict(matches)

	rewritten := 0
	for _, mt := range chosen {
		if len(mt.sources) < m.cfg.MinMatchCount {
			continue
		}
		m.apply(mt)
		rewritten += len(mt.sources)
	}
	return rewritten
}

// findMatches scans every pair of clauses for the AND and XOR patterns,
// then builds half-adder matches by pairing the AND and XOR matches found.
func (m *Matcher) findMatches(clauses []clauseRef) []match {
	var out []match
	for i := 0; i < len(clauses); i++ {
		for j := i + 1; j < len(clauses); j++ {
			c1, c2 := clauses[i], clauses[j]
			if m.cfg.AndPattern {
				if mt, ok := matchAND(c1, c2); ok {
					out = append(out, mt)
				}
			}
			if m.cfg.XorPattern {
				if mt, ok := matchXOR(c1, c2); ok {
					out = append(out, mt)
				}
			}
		}
	}
	if m.cfg.HalfAdder {
		out = append(out, m.findHalfAdders(out)...)
	}
	return out
}

// symmetricDiff is the shared shape test every two-clause pattern below
// starts from: the symmetric difference between two clauses, bounded by
// the pattern's maximum expected difference.
func symmetricDiff(c1, c2 cnf.Clause) (only1, only2 []cnf.Literal) {
	set2 := make(map[cnf.Literal]bool, len(c2.Literals))
	for _, l := range c2.Literals {
		set2[l] = true
	}
	set1 := make(map[cnf.Literal]bool, len(c1.Literals))
	for _, l := range c1.Literals {
		set1[l] = true
	}
	for _, l := range c1.Literals {
		if !set2[l] {
			only1 = append(only1, l)
		}
	}
	for _, l := range c2.Literals {
		if !set1[l] {
			only2 = append(only2, l)
		}
	}
	return only1, only2
}

func commonLiterals(c1, c2 cnf.Clause) []cnf.Literal {
	set2 := make(map[cnf.Literal]bool, len(c2.Literals))
	for _, l := range c2.Literals {
		set2[l] = true
	}
	var out []cnf.Literal
	for _, l := range c1.Literals {
		if set2[l] {
			out = append(out, l)
		}
	}
	return out
}

// matchAND detects (a ∨ R), (b ∨ R) ⇒ x := a ∧ b, rewrite (x ∨ R).
func matchAND(c1, c2 clauseRef) (match, bool) {
	if len(c1.c.Literals) != len(c2.c.Literals) {
		return match{}, false
	}
	only1, only2 := symmetricDiff(c1.c, c2.c)
	if len(only1) != 1 || len(only2) != 1 {
		return match{}, false
	}
	a, b := only1[0], only2[0]
	if a.Var == b.Var {
		return match{}, false
	}
	rest := cnf.NewClause(commonLiterals(c1.c, c2.c)...)
	return match{
		kind:    patAND,
		sources: []clauseRef{c1, c2},
		rewrites: []rewrite{{
			f:      definitions.AND,
			inputs: []cnf.Literal{a, b},
			rest:   rest,
			negate: false,
		}},
		score: 2, // eliminates 2 clauses, introduces 1
	}, true
}

// matchXOR detects the two-clause XOR shape
// (a ∨ b ∨ R), (¬a ∨ ¬b ∨ R) ⇒ x := a ⊕ b, rewrite (¬x ∨ R), in either
// clause order. The mixed-polarity pair (a ∨ ¬b ∨ R), (¬a ∨ b ∨ R) is not
// matched.
func matchXOR(c1, c2 clauseRef) (match, bool) {
	if len(c1.c.Literals) != len(c2.c.Literals) {
		return match{}, false
	}
	only1, only2 := symmetricDiff(c1.c, c2.c)
	if len(only1) != 2 || len(only2) != 2 {
		return match{}, false
	}
	rest := cnf.NewClause(commonLiterals(c1.c, c2.c)...)

	varsOf := func(lits []cnf.Literal) (cnf.Variable, cnf.Variable) {
		if lits[0].Var < lits[1].Var {
			return lits[0].Var, lits[1].Var
		}
		return lits[1].Var, lits[0].Var
	}
	v1a, v1b := varsOf(only1)
	v2a, v2b := varsOf(only2)
	if v1a != v2a || v1b != v2b {
		return match{}, false
	}

	negCount := func(lits []cnf.Literal) int {
		n := 0
		for _, l := range lits {
			if l.Negated {
				n++
			}
		}
		return n
	}
	n1, n2 := negCount(only1), negCount(only2)
	// only the both-positive vs both-negative pair (negation counts 0 and 2)
	// is accepted; every other combination, including one negation on each
	// side, is rejected.
	if (n1+n2)%2 != 0 || n1 == n2 {
		return match{}, false
	}

	a := cnf.Pos(v1a)
	b := cnf.Pos(v1b)
	negateOut := n1 == 0 || n1 == 2 // the {a,b}/{¬a,¬b} pair folds to ¬x
	return match{
		kind:    patXOR,
		sources: []clauseRef{c1, c2},
		rewrites: []rewrite{{
			f:      definitions.XOR,
			inputs: []cnf.Literal{a, b},
			rest:   rest,
			negate: negateOut,
		}},
		score: 2,
	}, true
}

// findHalfAdders looks for an AND match and an XOR match discovered above
// that share the same input-variable pair and the same rest R: together
// they introduce both the carry (AND) and sum (XOR) definitions for that
// pair in one coordinated coining, the half-adder pattern's "yields a sum
// and carry definition simultaneously" -- approximated here as two
// 2-clause patterns over the same inputs bundled into one match, since the
// exact 3-clause encoding is an implementation-tuning detail left
// unspecified by the source material (recorded in DESIGN.md).
func (m *Matcher) findHalfAdders(base []match) []match {
	var out []match
	for i, mi := range base {
		if mi.kind != patAND {
			continue
		}
		for j, mj := range base {
			if i == j || mj.kind != patXOR {
				continue
			}
			if !sameInputVars(mi.rewrites[0].inputs, mj.rewrites[0].inputs) {
				continue
			}
			if !mi.rewrites[0].rest.Equal(mj.rewrites[0].rest) {
				continue
			}
			if sharesSource(mi.sources, mj.sources) {
				continue
			}
			out = append(out, match{
				kind:     patHalfAdder,
				sources:  append(append([]clauseRef(nil), mi.sources...), mj.sources...),
				rewrites: []rewrite{mi.rewrites[0], mj.rewrites[0]},
				score:    4, // eliminates 4 clauses, introduces 2
			})
		}
	}
	return out
}

func sameInputVars(a, b []cnf.Literal) bool {
	if len(a) != len(b) {
		return false
	}
	av := map[cnf.Variable]bool{}
	for _, l := range a {
		av[l.Var] = true
	}
	for _, l := range b {
		if !av[l.Var] {
			return false
		}
	}
	return true
}

func sharesSource(a, b []clauseRef) bool {
	for _, x := range a {
		for _, y := range b {
			if x.frame == y.frame && x.idx == y.idx {
				return true
			}
		}
	}
	return false
}

// deconflict selects matches highest-scoring first and greedily drops any
// later match sharing a source clause with an already-chosen one. Ties on
// score break toward the match touching the rarest clause -- the one that
// appears in the fewest candidate matches -- so a clause with only one way
// to be rewritten gets that way; the rarity table is computed fresh for
// each deconfliction pass.
func (m *Matcher) deconflict(matches []match) []match {
	occurrences := make(map[clauseKey]int)
	for _, mt := range matches {
		for _, s := range mt.sources {
			occurrences[s.key()]++
		}
	}
	rarity := func(mt match) int {
		rarest := int(^uint(0) >> 1)
		for _, s := range mt.sources {
			if occurrences[s.key()] < rarest {
				rarest = occurrences[s.key()]
			}
		}
		return rarest
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return rarity(matches[i]) < rarity(matches[j])
	})

	used := make(map[clauseKey]bool)
	var chosen []match
	for _, mt := range matches {
		conflict := false
		for _, s := range mt.sources {
			if used[s.key()] {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		for _, s := range mt.sources {
			used[s.key()] = true
		}
		chosen = append(chosen, mt)
	}
	return chosen
}

// apply coins the definition(s) a match needs, removes its source clauses
// from their frames, and inserts the rewritten clause(s) via Database.AddClause
// (which re-canonicalizes, checks redundancy, and updates the SAT solvers).
func (m *Matcher) apply(mt match) {
	m.removeSources(mt.sources)
	for _, rw := range mt.rewrites {
		idx, negated := m.lib.AddDefinition(rw.f, rw.inputs)
		def := m.lib.Get(idx)
		wantNegated := rw.negate != negated
		lit := cnf.Pos(def.Var)
		if wantNegated {
			lit = cnf.Neg(def.Var)
		}
		newClause := cnf.NewClause(append(append([]cnf.Literal(nil), rw.rest.Literals...), lit)...)
		m.db.InsertClauseToHighestFramePossible(newClause, lowestFrame(mt.sources))
	}
}

func lowestFrame(sources []clauseRef) int {
	lowest := sources[0].frame
	for _, s := range sources[1:] {
		if s.frame < lowest {
			lowest = s.frame
		}
	}
	return lowest
}

func (m *Matcher) removeSources(sources []clauseRef) {
	byFrame := make(map[int][]cnf.Clause)
	for _, s := range sources {
		byFrame[s.frame] = append(byFrame[s.frame], s.c)
	}
	for frame, removed := range byFrame {
		elems := m.db.ElementsAt(frame)
		kept := elems[:0]
		for _, e := range elems {
			drop := false
			for _, r := range removed {
				if e.Clause.Equal(r) {
					drop = true
					break
				}
			}
			if !drop {
				kept = append(kept, e)
			}
		}
		m.db.SetElementsAt(frame, kept)
	}
}
