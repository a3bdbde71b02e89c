// Package runner wires a parsed parameter document + problem document to
// the matching solver engine (spec §2 "control flow": adapter -> model ->
// Solver.init()/run()/finalize() -> Result), and implements the single
// retry-under-memory-pressure recovery spec §4.9/§7 names.
package runner

import (
	"time"

	"github.com/qiotoolkit/qiotoolkit/config"
	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/qerrors"
	"github.com/qiotoolkit/qiotoolkit/rng"
	"github.com/qiotoolkit/qiotoolkit/schedule"
	"github.com/qiotoolkit/qiotoolkit/solver"
	"github.com/qiotoolkit/qiotoolkit/solver/pa"
	"github.com/qiotoolkit/qiotoolkit/solver/paramfree"
	"github.com/qiotoolkit/qiotoolkit/solver/pt"
	"github.com/qiotoolkit/qiotoolkit/solver/sa"
	"github.com/qiotoolkit/qiotoolkit/solver/ssmc"
	"github.com/qiotoolkit/qiotoolkit/solver/tabu"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
)

// Run loads the problem named by doc.InputDataURI, builds its model, and
// dispatches to the solver family resolved from doc.Target.
func Run(doc *config.Document) (solver.Result, error) {
	resolved, ok := config.ResolveTarget(doc.Target)
	if !ok {
		return solver.Result{}, qerrors.New(qerrors.ParsingError, "unknown target %q", doc.Target)
	}
	if !resolved.Implemented {
		return solver.Result{}, qerrors.New(qerrors.NotImplemented, "target %q is registered but not implemented", doc.Target)
	}

	m, err := buildModel(doc.InputDataURI, doc.Params)
	if err != nil {
		return solver.Result{}, err
	}

	seed := rng.Seed(doc.Params.Seed)
	numSolutions := doc.Params.NumberOfSolutions
	if numSolutions == 0 {
		numSolutions = 1
	}
	limits := telemetry.Limits{
		StepLimit: doc.Params.StepLimit,
		CostLimit: doc.Params.CostLimit,
		TimeLimit: time.Duration(doc.Params.TimeLimitSeconds * float64(time.Second)),
	}

	if resolved.ParameterFree {
		return runParameterFree(resolved.Family, m, doc, seed, numSolutions)
	}

	switch resolved.Family {
	case config.FamilySimulatedAnnealing:
		return sa.Run(m, sa.Config{
			Seed:              seed,
			StepLimit:         doc.Params.StepLimit,
			Restarts:          orOne(doc.Params.Restarts),
			NumberOfSolutions: numSolutions,
			Schedule:          buildSchedule(doc.Params, schedule.Linear{V0: 2.0, V1: 0.01}),
			Limits:            limits,
		}), nil
	case config.FamilyTabu:
		return tabu.Run(m, tabu.Config{
			Seed:              seed,
			StepLimit:         doc.Params.StepLimit,
			Restarts:          orOne(doc.Params.Restarts),
			TabuTenure:        doc.Params.TabuTenure,
			NumberOfSolutions: numSolutions,
			Limits:            limits,
		}), nil
	case config.FamilyParallelTempering:
		temps := doc.Params.Temperatures
		if len(temps) == 0 {
			temps = []float64{0.1, 0.5, 1.0, 2.0}
		}
		result := pt.Run(m, pt.Config{
			Seed:              seed,
			StepLimit:         doc.Params.StepLimit,
			Temperatures:      temps,
			NumberOfSolutions: numSolutions,
			Limits:            limits,
		})
		return result.Result, nil
	case config.FamilyPopulationAnnealing:
		return pa.Run(m, pa.Config{
			Seed:              seed,
			StepLimit:         doc.Params.StepLimit,
			TargetPopulation:  orOne(doc.Params.TargetPopulation),
			Beta:              buildBetaSchedule(doc.Params),
			NumberOfSolutions: numSolutions,
			Limits:            limits,
		}), nil
	case config.FamilySubstochasticMonteCarlo:
		return ssmc.Run(m, ssmc.Config{
			Seed:              seed,
			StepLimit:         doc.Params.StepLimit,
			TargetPopulation:  orOne(doc.Params.TargetPopulation),
			Alpha:             schedule.Constant{V: doc.Params.Alpha},
			Beta:              schedule.Constant{V: doc.Params.Beta},
			NumberOfSolutions: numSolutions,
			Limits:            limits,
		}), nil
	default:
		return solver.Result{}, qerrors.New(qerrors.NotImplemented, "family %q is not implemented", resolved.Family)
	}
}

func runParameterFree(family config.Family, m model.CostModel, doc *config.Document, seed rng.Seed, numSolutions int) (solver.Result, error) {
	pfFamily, err := toParamfreeFamily(family)
	if err != nil {
		return solver.Result{}, err
	}
	budget := time.Duration(doc.Params.TimeLimitSeconds * float64(time.Second))
	if budget <= 0 {
		budget = 10 * time.Second
	}
	return paramfree.Run(pfFamily, m, paramfree.Config{
		Seed:              seed,
		TimeBudget:        budget,
		NumberOfSolutions: numSolutions,
		Restarts:          orOne(doc.Params.Restarts),
		TargetPopulation:  doc.Params.TargetPopulation,
		TabuTenure:        doc.Params.TabuTenure,
	}), nil
}

func toParamfreeFamily(f config.Family) (paramfree.Family, error) {
	switch f {
	case config.FamilySimulatedAnnealing:
		return paramfree.FamilySA, nil
	case config.FamilyParallelTempering:
		return paramfree.FamilyPT, nil
	case config.FamilyPopulationAnnealing:
		return paramfree.FamilyPA, nil
	case config.FamilySubstochasticMonteCarlo:
		return paramfree.FamilySSMC, nil
	case config.FamilyTabu:
		return paramfree.FamilyTabu, nil
	default:
		return 0, qerrors.New(qerrors.NotImplemented, "family %q has no parameter-free wrapper", f)
	}
}

// buildModel loads a JSON problem document from path and constructs its
// CostModel. MemoryLimited retry (spec §4.9/§7) is handled by
// buildModelWithRetry for graph-backed models; maxsat is built directly
// through config.BuildMaxSat since it has no graph/adaptive variant.
func buildModel(path string, params config.Params) (model.CostModel, error) {
	doc, err := config.LoadProblemDoc(path)
	if err != nil {
		return nil, err
	}
	if doc.CostFunction.Type == "maxsat" {
		m, err := config.BuildMaxSat(&doc.CostFunction)
		if err != nil {
			return nil, err
		}
		if err := checkMemoryBudget(m, params); err != nil {
			return nil, err
		}
		return m, nil
	}
	g, err := config.BuildGraph(&doc.CostFunction)
	if err != nil {
		return nil, err
	}
	return buildModelWithRetry(&doc.CostFunction, g, params)
}

// buildModelWithRetry is the one MemoryLimited recovery path spec §4.9/§7
// names: build the dense model, then check its estimated footprint against
// params.MaxMemoryBytes (if configured). A model that fails either the
// build itself or the memory check with MemoryLimited gets one retry with
// the adaptive (compact) PUBO encoding, when the cost function is PUBO
// (the only encoding adaptive.go's packed format matches). A second
// failure propagates as a user error.
func buildModelWithRetry(doc *config.CostFunctionDoc, g *graph.Graph, params config.Params) (model.CostModel, error) {
	m, err := config.BuildModel(doc, g)
	if err == nil {
		err = checkMemoryBudget(m, params)
	}
	if err == nil {
		return m, nil
	}
	qerr, ok := err.(*qerrors.Error)
	if !ok || qerr.Kind != qerrors.MemoryLimited {
		return nil, err
	}
	if doc.Type != "pubo" {
		return nil, qerrors.Wrap(qerrors.MemoryLimited, qerr, "no memory-saving variant available for cost_function type %q", doc.Type)
	}
	adaptive, adaptErr := model.NewAdaptivePuboModel(g)
	if adaptErr != nil {
		return nil, qerrors.Wrap(qerrors.MemoryLimited, adaptErr, "memory-saving retry also failed")
	}
	if err := checkMemoryBudget(adaptive, params); err != nil {
		return nil, err
	}
	return adaptive, nil
}

// checkMemoryBudget raises MemoryLimited when m's estimated in-flight
// footprint, scaled by the population of states the configured solver
// family keeps live at once (spec: "bytes per in-flight state... population
// solvers allocate many of each"), exceeds params.MaxMemoryBytes. A
// non-positive limit means the check is disabled (spec's feature flag is
// off by default).
func checkMemoryBudget(m model.CostModel, params config.Params) error {
	if params.MaxMemoryBytes <= 0 {
		return nil
	}
	population := int64(estimatePopulation(params))
	estimate := m.StateMemoryEstimate() * population
	if estimate > params.MaxMemoryBytes {
		return qerrors.New(qerrors.MemoryLimited, "estimated state memory %d bytes (population %d) exceeds max_memory_bytes %d", estimate, population, params.MaxMemoryBytes)
	}
	return nil
}

// estimatePopulation approximates how many in-flight states the resolved
// solver family will hold concurrently, from whichever population-shaped
// param is set (restarts, target population, or a temperature/replica
// ladder); a plain single-replica solver defaults to 1.
func estimatePopulation(p config.Params) int {
	n := 1
	if p.Restarts > n {
		n = p.Restarts
	}
	if p.TargetPopulation > n {
		n = p.TargetPopulation
	}
	if len(p.Temperatures) > n {
		n = len(p.Temperatures)
	}
	return n
}

func buildSchedule(p config.Params, fallback schedule.Schedule) schedule.Schedule {
	if p.BetaStart > 0 && p.BetaStop > 0 {
		// SA reads this schedule as a temperature: T = 1/beta along the
		// geometric beta range.
		return schedule.Geometric{V0: 1 / p.BetaStart, V1: 1 / p.BetaStop}
	}
	if len(p.Temperatures) >= 2 {
		return schedule.Linear{V0: p.Temperatures[0], V1: p.Temperatures[len(p.Temperatures)-1]}
	}
	if p.Schedule != nil {
		return scheduleFromSpec(*p.Schedule)
	}
	return fallback
}

func buildBetaSchedule(p config.Params) schedule.Schedule {
	if p.BetaStart > 0 && p.BetaStop > 0 {
		return schedule.BetaFromRange(p.BetaStart, p.BetaStop)
	}
	return schedule.BetaFromRange(0.1, 3.0)
}

func scheduleFromSpec(s config.ScheduleSpec) schedule.Schedule {
	switch s.Kind {
	case "linear":
		return schedule.Linear{V0: s.V0, V1: s.V1}
	case "geometric":
		return schedule.Geometric{V0: s.V0, V1: s.V1}
	default:
		return schedule.Constant{V: s.Value}
	}
}

func orOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
