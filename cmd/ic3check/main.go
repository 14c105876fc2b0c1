// Command ic3check runs property-directed reachability over an AIGER
// circuit and reports safe/unsafe/unknown, optionally emitting an
// invariant certificate or a counterexample witness.
package main

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-pdr/ic3/aiger"
	"github.com/go-pdr/ic3/cnf"
	"github.com/go-pdr/ic3/definitions"
	"github.com/go-pdr/ic3/fsts"
	"github.com/go-pdr/ic3/pdr"
	"github.com/go-pdr/ic3/witness"
)

var log = logrus.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(3)
	}
}

type options struct {
	seed                           int64
	timeout                        time.Duration
	maxDepth                       int
	extensionLearning              bool
	fractionalPropagation          bool
	useDefinitionsInGeneralization bool
	useBDDImplication              bool
	definitionCoiningStride        int
	minMatchCount                  int
	generalizeUsingCTG             bool
	ctgMaxDepth                    int
	ctgMaxCount                    int
	useInfiniteFrame               bool
	insertClausesReversed          bool // accepted for CLI compatibility; see DESIGN.md
	performLICAnalysis             bool // accepted for CLI compatibility; see DESIGN.md
	useOnlyOneSolver               bool
	decay                          float64
	debug                          bool
	verboseStats                   bool

	certOut   string
	witOut    string
	selfCheck bool
}

func newRootCmd() *cobra.Command {
	opt := &options{}
	cmd := &cobra.Command{
		Use:   "ic3check [flags] <circuit.aig>",
		Short: "Property-directed reachability checker for AIGER circuits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opt.debug {
				log.SetLevel(logrus.DebugLevel)
			}
			return run(args[0], opt)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opt.seed, "seed", 1, "seed for randomization of generalization/propagation fractions")
	f.DurationVar(&opt.timeout, "timeout", 0, "wall-clock deadline (0 = unbounded)")
	f.IntVar(&opt.maxDepth, "max_depth", 0, "hard cap on frame count (0 = unbounded)")
	f.BoolVar(&opt.extensionLearning, "er", true, "enable extension-variable learning")
	f.BoolVar(&opt.fractionalPropagation, "er_fp", true, "enable fractional propagation")
	f.BoolVar(&opt.useDefinitionsInGeneralization, "er_generalization", true, "use definitions while generalizing")
	f.BoolVar(&opt.useBDDImplication, "er_impl", true, "use BDD-backed implication check; otherwise syntactic only")
	f.IntVar(&opt.definitionCoiningStride, "er_delta", 50, "insertion count between BVA passes")
	f.IntVar(&opt.minMatchCount, "min_match_count_to_add_definition", 1, "minimum BVA cluster size to coin")
	f.BoolVar(&opt.generalizeUsingCTG, "generalize_using_ctg", true, "enable CTG-based strengthening")
	f.IntVar(&opt.ctgMaxDepth, "ctg_max_depth", 1, "recursion depth budget for CTG strengthening")
	f.IntVar(&opt.ctgMaxCount, "ctg_max_count", 3, "attempt budget for CTG strengthening")
	f.BoolVar(&opt.useInfiniteFrame, "use_infinite_frame", true, "enable F_infinity propagation")
	f.BoolVar(&opt.insertClausesReversed, "insert_clauses_reversed", false, "reverse clause literal order on SAT insertion (tuning knob, no effect: see DESIGN.md)")
	f.BoolVar(&opt.performLICAnalysis, "perform_lic_analysis", false, "largest-inductive-clause pre-pass (not implemented: see DESIGN.md)")
	f.BoolVar(&opt.useOnlyOneSolver, "use_only_one_solver", true, "use one incremental solver with per-frame activation literals")
	f.Float64Var(&opt.decay, "decay", 0.99, "weight decay factor in (0, 1]")
	f.BoolVar(&opt.debug, "debug", false, "enable debug logging")
	f.BoolVar(&opt.verboseStats, "stats", false, "log run statistics on completion")
	f.StringVar(&opt.certOut, "emit-certificate", "", "path to write an AIGER invariant certificate on a safe result")
	f.StringVar(&opt.witOut, "emit-witness", "", "path to write an AIGER counterexample witness on an unsafe result")
	f.BoolVar(&opt.selfCheck, "self-check", false, "independently verify the proof or counterexample before reporting it")

	return cmd
}

func run(path string, opt *options) error {
	circFile, err := os.Open(path)
	if err != nil {
		return err
	}
	defer circFile.Close()

	circuit, err := aiger.Read(circFile)
	if err != nil {
		color.Red("failed to parse %s: %s", path, err)
		return err
	}
	sys := fsts.FromAIGER(circuit)

	cfg := pdr.Config{
		Seed:                           opt.seed,
		Timeout:                        opt.timeout,
		MaxDepth:                       opt.maxDepth,
		ExtensionLearning:              opt.extensionLearning,
		FractionalPropagation:          opt.fractionalPropagation,
		UseDefinitionsInGeneralization: opt.useDefinitionsInGeneralization,
		UseBDDImplication:              opt.useBDDImplication,
		DefinitionCoiningStride:        opt.definitionCoiningStride,
		MinMatchCountToAddDefinition:   opt.minMatchCount,
		GeneralizeUsingCTG:             opt.generalizeUsingCTG,
		CTGMaxDepth:                    opt.ctgMaxDepth,
		CTGMaxCount:                    opt.ctgMaxCount,
		UseInfiniteFrame:               opt.useInfiniteFrame,
		UseOnlyOneSolver:               opt.useOnlyOneSolver,
		Decay:                          opt.decay,
		VerboseStats:                   opt.verboseStats,
		Log:                            logrus.NewEntry(log),
	}

	driver := pdr.New(sys, cfg)
	result := driver.Run()

	switch result.Outcome {
	case pdr.Safe:
		color.Green("safe: invariant found at frame %d (%d definitions)", result.InvariantFrame, len(result.Definitions))
		if opt.selfCheck {
			if err := witness.SelfCheck(sys, result.Definitions, result.Invariant); err != nil {
				color.Red("self-check failed: %s", err)
				return err
			}
			log.Info("self-check passed")
		}
		if opt.certOut != "" {
			if err := writeCertificate(opt.certOut, sys, driver.Library(), result.Invariant); err != nil {
				return err
			}
		}
		os.Exit(0)
	case pdr.Unsafe:
		color.Red("unsafe: counterexample found")
		if opt.witOut != "" {
			if err := writeWitness(opt.witOut, sys, result.Counterexample); err != nil {
				return err
			}
		}
		os.Exit(1)
	default:
		color.Yellow("unknown: %s", result.Outcome)
		os.Exit(2)
	}
	return nil
}

func writeCertificate(path string, sys *fsts.System, lib *definitions.Library, invariant []cnf.Clause) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return witness.EmitCertificate(f, sys, lib, invariant)
}

func writeWitness(path string, sys *fsts.System, cex *pdr.Counterexample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return witness.EmitCounterexample(f, sys, 0, cex)
}
