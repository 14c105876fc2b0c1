package definitions

import (
	"github.com/go-pdr/ic3/bdd"
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/fsts"
)

// DeltaView is the subset of a frame's delta-element bookkeeping the
// implication checker needs: the clause itself plus its precomputed COI.
type DeltaView struct {
	Clause   cnf.Clause
	COI      map[cnf.Variable]bool
	StateCOI map[cnf.Variable]bool
}

// Implies decides a ⇒ b using, in order: the literal-subset
// syntactic fast path; rejection when the BDD check is disabled or no
// definition exists; rejection when neither clause uses an extension
// variable; two COI-based syntactic rejections; and finally a semantic BDD
// implication check with an LRU-evicted clause→BDD cache.
func (l *Library) Implies(a, b DeltaView) bool {
	if a.Clause.Subset(b.Clause) {
		return true
	}
	if !l.useBDD || len(l.defs) == 0 {
		return false
	}
	if !clauseUsesExtensionVar(a.Clause, l.sys) && !clauseUsesExtensionVar(b.Clause, l.sys) {
		return false
	}
	for _, lit := range a.Clause.Literals {
		if l.sys.IsStateVariable(lit.Var) && !b.COI[lit.Var] {
			return false
		}
	}
	for _, lit := range a.Clause.Literals {
		if l.sys.IsExtensionLiteral(lit) {
			// extension literal: reject unless its COI intersects b's COI
			// (a's own COI stands in for an extension-range variable that
			// has no definition)
			coi := a.COI
			if d, ok := l.DefinitionOf(lit.Var); ok {
				coi = d.COI
			}
			if !coiIntersects(coi, b.COI) {
				return false
			}
		}
	}
	return l.bddMgr.Implies(l.clauseBDD(a.Clause), l.clauseBDD(b.Clause))
}

func clauseUsesExtensionVar(c cnf.Clause, sys *fsts.System) bool {
	for _, lit := range c.Literals {
		if sys.IsExtensionLiteral(lit) {
			return true
		}
	}
	return false
}

func coiIntersects(a, b map[cnf.Variable]bool) bool {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for v := range small {
		if large[v] {
			return true
		}
	}
	return false
}

// clauseBDD returns the cached BDD for c, building and inserting it (with
// LRU eviction once the cache exceeds maxCacheSize) on a miss. Extension
// literals are expanded through their definition's function BDD, so the
// resulting node ranges over circuit variables only (plus any
// extension-range variable that has no definition) -- the semantic object
// the implication check compares.
func (l *Library) clauseBDD(c cnf.Clause) bdd.Node {
	key := signature(c.Literals)
	if n, ok := l.clauseBDDCache[key]; ok {
		l.touchCache(key)
		return n
	}
	n := bdd.False
	for _, lit := range c.Literals {
		n = l.bddMgr.Or(n, l.literalBDD(lit))
	}
	l.clauseBDDCache[key] = n
	l.cacheOrder = append(l.cacheOrder, key)
	l.evictIfNeeded()
	return n
}

func (l *Library) literalBDD(lit cnf.Literal) bdd.Node {
	if d, ok := l.DefinitionOf(lit.Var); ok {
		if lit.Negated {
			return l.bddMgr.Not(d.BDD)
		}
		return d.BDD
	}
	return l.bddMgr.FromLiteral(lit)
}

func (l *Library) touchCache(key string) {
	for i, k := range l.cacheOrder {
		if k == key {
			l.cacheOrder = append(l.cacheOrder[:i], l.cacheOrder[i+1:]...)
			l.cacheOrder = append(l.cacheOrder, key)
			return
		}
	}
}

func (l *Library) evictIfNeeded() {
	for len(l.cacheOrder) > l.maxCacheSize {
		oldest := l.cacheOrder[0]
		l.cacheOrder = l.cacheOrder[1:]
		delete(l.clauseBDDCache, oldest)
	}
}
