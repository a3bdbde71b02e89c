package config

import (
	"os"

	"github.com/qiotoolkit/qiotoolkit/qerrors"
	"gopkg.in/yaml.v3"
)

// ScheduleSpec configures a temperature/beta schedule inline in the
// parameter document (spec §3/§6 params.schedule, params.temperatures).
type ScheduleSpec struct {
	Kind  string    `yaml:"kind,omitempty"` // linear | geometric; any other kind (constant, segments, ...) is read as a constant of Value
	V0    float64   `yaml:"v0,omitempty"`
	V1    float64   `yaml:"v1,omitempty"`
	Value float64   `yaml:"value,omitempty"`
}

// Params mirrors the parameter document's "params" object (spec §6).
type Params struct {
	Seed               int64         `yaml:"seed,omitempty"`
	StepLimit          int64         `yaml:"step_limit,omitempty"`
	CostLimit          *float64      `yaml:"cost_limit,omitempty"`
	TimeLimitSeconds   float64       `yaml:"time_limit_seconds,omitempty"`
	Threads            int           `yaml:"threads,omitempty"`
	NumberOfSolutions  int           `yaml:"number_of_solutions,omitempty"`
	Restarts           int           `yaml:"restarts,omitempty"`
	Schedule           *ScheduleSpec `yaml:"schedule,omitempty"`
	Temperatures       []float64     `yaml:"temperatures,omitempty"`
	Alpha              float64       `yaml:"alpha,omitempty"`
	Beta               float64       `yaml:"beta,omitempty"`
	TargetPopulation   int           `yaml:"target_population,omitempty"`
	TabuTenure         int           `yaml:"tabu_tenure,omitempty"`
	BetaStart          float64       `yaml:"beta_start,omitempty"`
	BetaStop           float64       `yaml:"beta_stop,omitempty"`
	MaxMemoryBytes     int64         `yaml:"max_memory_bytes,omitempty"`
}

// Document is the top-level parameter document (spec §6).
type Document struct {
	Target        string  `yaml:"target"`
	InputDataURI  string  `yaml:"input_data_uri"`
	Params        Params  `yaml:"params,omitempty"`
	Log           string  `yaml:"log,omitempty"`
}

// LoadDocument reads and parses a YAML parameter document from path,
// mirroring sim/workload/spec.go's LoadWorkloadSpec pattern.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.FileIO, err, "reading parameter document %s", path)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, qerrors.Wrap(qerrors.ParsingError, err, "parsing parameter document %s", path)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the invariants spec §6/§8 name explicitly (B2 is
// checked later, at cost_function load time, since it needs the problem
// document).
func (d *Document) Validate() error {
	if d.Target == "" {
		return qerrors.New(qerrors.MissingInput, "parameter document missing required field target")
	}
	if d.InputDataURI == "" {
		return qerrors.New(qerrors.MissingInput, "parameter document missing required field input_data_uri")
	}
	if _, ok := targetRegistry[d.Target]; !ok {
		return qerrors.New(qerrors.ParsingError, "unknown target %q", d.Target)
	}
	// B3: number_of_solutions > 1000 or non-positive is a ValueError. Zero
	// means "unset", so it is not checked here; only an explicitly set
	// non-positive or over-limit value is rejected.
	if d.Params.NumberOfSolutions != 0 && (d.Params.NumberOfSolutions < 1 || d.Params.NumberOfSolutions > 1000) {
		return qerrors.New(qerrors.ValueError, "number_of_solutions must be in [1, 1000], got %d", d.Params.NumberOfSolutions)
	}
	return nil
}
