package config

import "strings"

// Family identifies which solver engine a target resolves to.
type Family string

const (
	FamilySimulatedAnnealing     Family = "simulatedannealing"
	FamilyParallelTempering      Family = "paralleltempering"
	FamilyPopulationAnnealing    Family = "populationannealing"
	FamilySubstochasticMonteCarlo Family = "substochasticmontecarlo"
	FamilyTabu                   Family = "tabu"
	FamilyQuantumMonteCarlo       Family = "quantummontecarlo"
)

// targetInfo is the registry entry for one stable solver identifier
// (spec §6): its Family and whether it runs in parameter-free mode.
type targetInfo struct {
	Family        Family
	ParameterFree bool
}

// targetRegistry lists every stable solver identifier spec §6 names, plus
// the "-parameterfree" variant of each. quantummontecarlo.qiotoolkit is
// registered so an unrecognized-target error is never raised for it, but
// ResolveTarget reports it Implemented=false (SPEC_FULL §5): building one
// returns qerrors.NotImplemented instead of running a solver.
var targetRegistry = map[string]targetInfo{
	"simulatedannealing.qiotoolkit":                  {FamilySimulatedAnnealing, false},
	"simulatedannealing-parameterfree.qiotoolkit":     {FamilySimulatedAnnealing, true},
	"paralleltempering.qiotoolkit":                    {FamilyParallelTempering, false},
	"paralleltempering-parameterfree.qiotoolkit":      {FamilyParallelTempering, true},
	"populationannealing.cpu":                         {FamilyPopulationAnnealing, false},
	"populationannealing-parameterfree.cpu":           {FamilyPopulationAnnealing, true},
	"substochasticmontecarlo.cpu":                      {FamilySubstochasticMonteCarlo, false},
	"substochasticmontecarlo-parameterfree.cpu":        {FamilySubstochasticMonteCarlo, true},
	"tabu.qiotoolkit":                                  {FamilyTabu, false},
	"tabu-parameterfree.qiotoolkit":                    {FamilyTabu, true},
	"quantummontecarlo.qiotoolkit":                     {FamilyQuantumMonteCarlo, false},
	"quantummontecarlo-parameterfree.qiotoolkit":       {FamilyQuantumMonteCarlo, true},
}

// implementedFamilies are the solver families this toolkit actually runs;
// quantummontecarlo is registered but not implemented.
var implementedFamilies = map[Family]bool{
	FamilySimulatedAnnealing:      true,
	FamilyParallelTempering:       true,
	FamilyPopulationAnnealing:     true,
	FamilySubstochasticMonteCarlo: true,
	FamilyTabu:                    true,
}

// Resolved is the outcome of resolving a target identifier.
type Resolved struct {
	Family        Family
	ParameterFree bool
	Implemented   bool
}

// ResolveTarget looks up a solver identifier string (spec §6). The
// ".qiotoolkit"/".cpu" suffix and "-parameterfree" infix are part of the
// identifier's stable spelling, matched verbatim against the registry
// rather than parsed apart, since the registry is the closed source of
// truth for which strings are valid.
func ResolveTarget(target string) (Resolved, bool) {
	info, ok := targetRegistry[target]
	if !ok {
		return Resolved{}, false
	}
	return Resolved{
		Family:        info.Family,
		ParameterFree: info.ParameterFree,
		Implemented:   implementedFamilies[info.Family],
	}, true
}

// IsParameterFreeName reports whether a target identifier names the
// parameter-free variant, purely by its "-parameterfree" infix — used by
// callers that want this without a full registry lookup.
func IsParameterFreeName(target string) bool {
	return strings.Contains(target, "-parameterfree")
}
