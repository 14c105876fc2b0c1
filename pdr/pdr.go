// Package pdr implements the main property-directed-reachability loop: it
// wires together the finite-state system, SAT abstraction, frame database,
// generalization, propagation, and BVA pattern matcher into the driver that
// proves a circuit safe or produces a counterexample. Grounded on the
// teacher's top-level evaluator (logic.go/evaluator.go's circuit-walking
// entrypoint), generalized here from "evaluate one expression" to "search a
// state space to a fixpoint."
package pdr

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-pdr/ic3/bdd"
	"github.com/go-pdr/ic3/bva"
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/frames"
	"github.com/go-pdr/ic3/fsts"
	"github.com/go-pdr/ic3/generalize"
	"github.com/go-pdr/ic3/ic3err"
	"github.com/go-pdr/ic3/propagate"
	"github.com/go-pdr/ic3/satengine"
	"github.com/go-pdr/ic3/ternary"
)

// Config is the full tuning surface the driver and its sub-engines consume.
type Config struct {
	Seed     int64
	Timeout  time.Duration
	MaxDepth int

	ExtensionLearning              bool // er
	FractionalPropagation          bool // er_fp
	UseDefinitionsInGeneralization bool // er_generalization
	UseBDDImplication              bool // er_impl
	DefinitionCoiningStride        int  // er_delta
	MinMatchCountToAddDefinition   int

	GeneralizeUsingCTG bool
	CTGMaxDepth        int
	CTGMaxCount        int

	UseInfiniteFrame bool
	UseOnlyOneSolver bool // use_only_one_solver

	Decay float64

	VerboseStats bool

	Log *logrus.Entry
}

// DefaultConfig mirrors the original artifact's published defaults.
func DefaultConfig() Config {
	return Config{
		Seed:                           1,
		Timeout:                        0,
		MaxDepth:                       0,
		ExtensionLearning:              true,
		FractionalPropagation:          true,
		UseDefinitionsInGeneralization: true,
		UseBDDImplication:              true,
		DefinitionCoiningStride:        50,
		MinMatchCountToAddDefinition:   1,
		GeneralizeUsingCTG:             true,
		CTGMaxDepth:                    1,
		CTGMaxCount:                    3,
		UseInfiniteFrame:               true,
		UseOnlyOneSolver:               true,
		Decay:                          0.99,
		Log:                            logrus.NewEntry(logrus.StandardLogger()),
	}
}

// Statistics are the per-run counters the original artifact's parameters
// module exposes alongside its configuration surface.
type Statistics struct {
	FramesPushed         int
	ObligationsProcessed int
	CTGsBlocked          int
	DefinitionsCoined    int
}

// Outcome is the driver's verdict.
type Outcome int

const (
	Unknown Outcome = iota
	Safe
	Unsafe
	Timeout
	MaxDepthReached
)

func (o Outcome) String() string {
	switch o {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	case Timeout:
		return "timeout"
	case MaxDepthReached:
		return "max-depth-reached"
	default:
		return "unknown"
	}
}

// Counterexample is the initial state plus the per-cycle inputs that drive
// the system from it into a bad state.
type Counterexample struct {
	Initial cnf.Cube
	Inputs  []cnf.Cube
}

// Result is the driver's termination value.
type Result struct {
	Outcome        Outcome
	Invariant      []cnf.Clause
	InvariantFrame int // frame index Invariant was read from, for a seed re-run
	Definitions    []definitions.Definition
	Counterexample *Counterexample
	Stats          Statistics
}

// obligation is a proof obligation: block state s at frame i. next links to
// the obligation this one's successor state must reach -- nil for the
// top-level bad cube, set when an obligation is split into a predecessor --
// so the full initial-to-bad input trail can be walked forward once a chain
// bottoms out at frame 0.
type obligation struct {
	state cnf.Cube
	input cnf.Cube
	frame int
	next  *obligation
}

// obligationQueue processes obligations in strictly ascending frame order,
// LIFO within a frame -- a stack per frame, popped from the lowest
// non-empty frame first.
type obligationQueue struct {
	byFrame map[int][]obligation
}

func newObligationQueue() *obligationQueue {
	return &obligationQueue{byFrame: make(map[int][]obligation)}
}

func (q *obligationQueue) push(o obligation) {
	q.byFrame[o.frame] = append(q.byFrame[o.frame], o)
}

func (q *obligationQueue) popLowest() (obligation, bool) {
	lowest := -1
	for f, os := range q.byFrame {
		if len(os) == 0 {
			continue
		}
		if lowest == -1 || f < lowest {
			lowest = f
		}
	}
	if lowest == -1 {
		return obligation{}, false
	}
	stack := q.byFrame[lowest]
	o := stack[len(stack)-1]
	q.byFrame[lowest] = stack[:len(stack)-1]
	return o, true
}

func (q *obligationQueue) empty() bool {
	for _, os := range q.byFrame {
		if len(os) > 0 {
			return false
		}
	}
	return true
}

// Driver is one PDR run over a fixed finite-state system.
type Driver struct {
	sys *fsts.System
	cfg Config
	rng *rand.Rand

	bddMgr  *bdd.Manager
	lib     *definitions.Library
	sim     *ternary.Simulator
	sat     *satengine.Frames
	db      *frames.Database
	gen     *generalize.Generalizer
	prop    *propagate.Propagator
	matcher *bva.Matcher

	stats Statistics
}

// New builds a Driver over sys, constructing every sub-engine the way a
// fresh run needs them.
func New(sys *fsts.System, cfg Config) *Driver {
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	encoding := satengine.SingleSolverActivation
	if !cfg.UseOnlyOneSolver {
		encoding = satengine.OneSolverPerFrame
	}
	sat := satengine.New(sys, encoding)
	bddMgr := bdd.NewManager()
	lib := definitions.NewLibrary(sys, bddMgr, sat)
	lib.SetBDDImplication(cfg.UseBDDImplication)
	sim := ternary.New(sys, cfg.Decay)
	db := frames.New(sys, lib, sat)

	genCfg := generalize.Config{
		MinClauseLength: 1,
		UseCTG:          cfg.GeneralizeUsingCTG,
		CTGMaxDepth:     cfg.CTGMaxDepth,
		CTGMaxCount:     cfg.CTGMaxCount,
		UseDefinitions:  cfg.UseDefinitionsInGeneralization,
		Decay:           cfg.Decay,
		Rand:            rng,
	}
	gen := generalize.New(sys, db, lib, sim, genCfg)

	propCfg := propagate.Config{
		FractionalPropagation: cfg.FractionalPropagation,
		UseInfiniteFrame:      cfg.UseInfiniteFrame,
	}
	prop := propagate.New(db, lib, propCfg)

	bvaCfg := bva.Config{
		MinMatchCount: cfg.MinMatchCountToAddDefinition,
		AndPattern:    cfg.ExtensionLearning,
		XorPattern:    cfg.ExtensionLearning,
		HalfAdder:     cfg.ExtensionLearning,
	}
	matcher := bva.New(db, lib, bvaCfg)

	return &Driver{
		sys: sys, cfg: cfg, rng: rng,
		bddMgr: bddMgr, lib: lib, sim: sim, sat: sat, db: db,
		gen: gen, prop: prop, matcher: matcher,
	}
}

// Run executes the full loop to termination: trivial-case check, frame
// initialization, and the bad-cube / obligation / propagation cycle.
func (d *Driver) Run() Result {
	if verdict := d.sys.CheckTrivial(); verdict != fsts.NotTrivial {
		return d.trivialResult(verdict)
	}

	// A bad state among the initial states never surfaces through the frame
	// loop, whose predecessor queries start at F_0; check it once up front.
	if state, input, ok := d.sat.GetBadCubeInInitial(); ok {
		return Result{
			Outcome:        Unsafe,
			Counterexample: &Counterexample{Initial: state, Inputs: []cnf.Cube{input}},
			Stats:          d.stats,
		}
	}

	deadline := time.Time{}
	if d.cfg.Timeout > 0 {
		deadline = d.nowPlus(d.cfg.Timeout)
	}

	sinceLastCoining := 0
	for {
		if !deadline.IsZero() && d.timedOut(deadline) {
			return d.budgetResult(Timeout)
		}

		state, input, ok := d.db.GetBadCube(d.db.Depth())
		if !ok {
			if i, found := d.prop.Propagate(); found {
				d.cfg.Log.WithField("frame", i).Info("invariant found")
				return d.successResult(i)
			}
			if d.cfg.MaxDepth > 0 && d.db.Depth() >= d.cfg.MaxDepth {
				return d.budgetResult(MaxDepthReached)
			}
			d.db.PushFrame()
			d.stats.FramesPushed++
			d.cfg.Log.WithField("depth", d.db.Depth()).Info("pushed frame")
			continue
		}

		queue := newObligationQueue()
		queue.push(obligation{state: state, input: input, frame: d.db.Depth()})

		if cex, ok := d.block(queue, &sinceLastCoining); ok {
			d.logStats()
			return Result{Outcome: Unsafe, Counterexample: cex, Stats: d.stats}
		}
	}
}

// block drains the obligation queue for one bad cube's discovery, returning
// a counterexample if some obligation's predecessor reaches an initial
// state.
func (d *Driver) block(queue *obligationQueue, sinceLastCoining *int) (*Counterexample, bool) {
	for !queue.empty() {
		ob, _ := queue.popLowest()
		d.stats.ObligationsProcessed++
		d.cfg.Log.WithFields(logrus.Fields{"frame": ob.frame, "obligations_left": len(queue.byFrame)}).Debug("processing obligation")

		if ob.frame == 0 {
			return d.traceFrom(ob), true
		}

		predState, predInput, reduced, ok := d.db.GetPredecessorOfCube(ob.frame-1, ob.state)
		if ok {
			obCopy := ob
			queue.push(obligation{state: predState, input: predInput, frame: ob.frame - 1, next: &obCopy})
			queue.push(ob)
			continue
		}

		// The unsat core usually needed only a subset of the cube; block the
		// reduced cube when it still excludes every initial state.
		blocked := ob.state
		if len(reduced.Literals) > 0 && len(reduced.Literals) < len(blocked.Literals) &&
			d.db.IsClauseSatisfiedByInitial(reduced.Negate()) {
			blocked = reduced
		}
		blocking := blocked.Negate()
		generalized := d.gen.Generalize(blocking, ob.frame)
		d.db.InsertClauseToHighestFramePossible(generalized, ob.frame)
		d.stats.CTGsBlocked = d.gen.CTGsBlocked()

		*sinceLastCoining++
		if d.cfg.ExtensionLearning && *sinceLastCoining >= d.cfg.DefinitionCoiningStride {
			n := d.matcher.Run()
			if n > 0 {
				d.stats.DefinitionsCoined = d.lib.Len()
				d.cfg.Log.WithField("rewritten", n).Info("bva coining pass")
			}
			*sinceLastCoining = 0
		}
	}
	return nil, false
}

// traceFrom reconstructs the counterexample path once an obligation's chain
// of predecessors has reached frame 0 (an initial state): ob.state is that
// initial state, and walking the next chain forward collects the input
// driving each subsequent step up to the original bad cube. The bad cube's
// own cycle contributes a final input line only when some input literal
// actually matters for the violation (ternary minimization left it in).
func (d *Driver) traceFrom(ob obligation) *Counterexample {
	inputs := []cnf.Cube{ob.input}
	for n := ob.next; n != nil; n = n.next {
		if n.next == nil && len(n.input.Literals) == 0 {
			break
		}
		inputs = append(inputs, n.input)
	}
	return &Counterexample{Initial: ob.state, Inputs: inputs}
}

func (d *Driver) trivialResult(verdict fsts.TrivialVerdict) Result {
	switch verdict {
	case fsts.TrivialSafe:
		return Result{Outcome: Safe, Stats: d.stats}
	case fsts.TrivialUnsafe:
		init := d.sys.ConstructInitialCNF(false)
		lits := make([]cnf.Literal, 0)
		for _, c := range init.Clauses {
			lits = append(lits, c.Literals...)
		}
		return Result{
			Outcome: Unsafe,
			Counterexample: &Counterexample{
				Initial: cnf.NewCube(lits...),
				Inputs:  []cnf.Cube{{}},
			},
			Stats: d.stats,
		}
	default:
		return Result{Outcome: Unknown, Stats: d.stats}
	}
}

// logStats reports the run's counters when verbose statistics are on.
func (d *Driver) logStats() {
	if !d.cfg.VerboseStats {
		return
	}
	d.cfg.Log.WithFields(logrus.Fields{
		"frames_pushed":         d.stats.FramesPushed,
		"obligations_processed": d.stats.ObligationsProcessed,
		"ctgs_blocked":          d.stats.CTGsBlocked,
		"definitions_coined":    d.stats.DefinitionsCoined,
	}).Info("run statistics")
}

func (d *Driver) successResult(frame int) Result {
	d.logStats()
	return Result{
		Outcome:        Safe,
		Invariant:      d.db.InvariantFrom(frame),
		InvariantFrame: frame,
		Definitions:    d.lib.Definitions(),
		Stats:          d.stats,
	}
}

func (d *Driver) budgetResult(outcome Outcome) Result {
	err := ic3err.New("pdr", "Run", ic3err.KindBudget, outcome.String())
	d.cfg.Log.WithError(err).Warn("budget exhausted")
	d.logStats()
	return Result{Outcome: outcome, Stats: d.stats}
}

// nowPlus and timedOut are the only two wall-clock reads the driver
// performs; both go through time.Now.
func (d *Driver) nowPlus(dur time.Duration) time.Time { return time.Now().Add(dur) }
func (d *Driver) timedOut(deadline time.Time) bool    { return time.Now().After(deadline) }

// Library exposes the definition library this driver accumulated, for
// callers (witness emission) that need it after Run returns.
func (d *Driver) Library() *definitions.Library { return d.lib }

// Database exposes the frame database, for callers that want to inspect
// frames after Run returns (tests, self-check).
func (d *Driver) Database() *frames.Database { return d.db }
