// Package config implements the input adapters of spec §6: the JSON
// problem document (cost_function) and the YAML parameter document, plus
// the target-name registry that resolves a solver identifier.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/qiotoolkit/qiotoolkit/graph"
	"github.com/qiotoolkit/qiotoolkit/model"
	"github.com/qiotoolkit/qiotoolkit/qerrors"
)

// Term is one entry of a problem document's "terms" array.
type Term struct {
	C   float64 `json:"c"`
	IDs []int   `json:"ids"`
}

// SLCTerm is one entry of the "terms_slc" array: a face's linear
// combination (c, [{c, ids}, ...]) before squaring.
type SLCTerm struct {
	C     float64 `json:"c"`
	Terms []Term  `json:"terms"`
}

// CostFunctionDoc mirrors the JSON problem document's cost_function block
// (spec §6). Variable names in terms/terms_slc are ids here because the
// wire format carries them as small integers; the grouped/ungrouped loader
// below renders them as the string var names the Graph expects.
type CostFunctionDoc struct {
	Type                 string             `json:"type"`
	Version              string             `json:"version"`
	Q                    int                `json:"q,omitempty"`
	Terms                []Term             `json:"terms,omitempty"`
	TermsSLC             []SLCTerm          `json:"terms_slc,omitempty"`
	InitialConfiguration map[string]float64 `json:"initial_configuration,omitempty"`
}

// ProblemDoc is the top-level problem document.
type ProblemDoc struct {
	CostFunction CostFunctionDoc `json:"cost_function"`
}

// LoadProblemDoc reads and parses a JSON problem document from path.
func LoadProblemDoc(path string) (*ProblemDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.FileIO, err, "reading problem document %s", path)
	}
	var doc ProblemDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, qerrors.Wrap(qerrors.ParsingError, err, "parsing problem document %s", path)
	}
	return &doc, nil
}

func idName(id int) string {
	return fmt.Sprintf("%d", id)
}

// BuildGraph renders a cost_function document's terms into a *graph.Graph,
// var ids as their decimal-string names. B2: both terms and terms_slc
// empty/missing is a ParsingError.
func BuildGraph(doc *CostFunctionDoc) (*graph.Graph, error) {
	if len(doc.Terms) == 0 && len(doc.TermsSLC) == 0 {
		return nil, qerrors.New(qerrors.ParsingError, "cost_function has neither terms nor terms_slc")
	}
	g := graph.New(false)
	for _, term := range doc.Terms {
		names := make([]string, len(term.IDs))
		for i, id := range term.IDs {
			names[i] = idName(id)
		}
		if err := g.AddTerm(term.C, names); err != nil {
			return nil, err
		}
	}
	for _, face := range doc.TermsSLC {
		var linTerms []graph.LinearTerm
		var w0 float64
		for _, t := range face.Terms {
			switch len(t.IDs) {
			case 0:
				// A sub-term with no variable is the face's constant offset w0.
				w0 += t.C
			case 1:
				linTerms = append(linTerms, graph.LinearTerm{Name: idName(t.IDs[0]), Weight: t.C})
			default:
				return nil, qerrors.New(qerrors.ParsingError, "terms_slc sub-term must reference at most one variable, got %d", len(t.IDs))
			}
		}
		if _, err := g.AddFace(face.C, w0, linTerms); err != nil {
			return nil, err
		}
	}
	g.Finalize()
	return g, nil
}

// BuildModel constructs the CostModel named by doc.Type over g, applying
// any initial_configuration. Grounded on spec §3's closed model taxonomy;
// "clock", "tsp", and "poly" are out of scope. B4's q<=2 clock-model check
// is the only clock-model behavior this toolkit implements: q<=2 is a
// ValueError, q>2 falls through to NotImplemented since no clock solver
// exists yet.
func BuildModel(doc *CostFunctionDoc, g *graph.Graph) (model.CostModel, error) {
	switch doc.Type {
	case "ising":
		m := model.NewIsingModel(g)
		if err := applyInitial(m, doc.InitialConfiguration); err != nil {
			return nil, err
		}
		return m, nil
	case "pubo":
		m := model.NewPuboModel(g)
		if err := applyInitial(m, doc.InitialConfiguration); err != nil {
			return nil, err
		}
		return m, nil
	case "ising_grouped":
		base := model.NewIsingModel(g)
		return model.NewGroupedModel(base, g), nil
	case "pubo_grouped":
		base := model.NewPuboModel(g)
		return model.NewGroupedModel(base, g), nil
	case "maxsat":
		return nil, qerrors.New(qerrors.ParsingError, "maxsat cost_function documents are built via config.BuildMaxSat, not BuildModel")
	case "clock":
		if doc.Q <= 2 {
			return nil, qerrors.New(qerrors.ValueError, "clock model q must be greater than 2, got %d", doc.Q)
		}
		return nil, qerrors.New(qerrors.NotImplemented, "clock model (q=%d) is not implemented", doc.Q)
	case "tsp", "poly":
		return nil, qerrors.New(qerrors.NotImplemented, "cost_function type %q is not implemented", doc.Type)
	default:
		return nil, qerrors.New(qerrors.ParsingError, "unknown cost_function type %q", doc.Type)
	}
}

// BuildMaxSat renders a maxsat cost_function document into a
// *model.MaxSatModel. The "terms" array is reused for clauses: ids encode
// literals (negative id = negated variable, 1-indexed), c is the clause
// weight. Unlike the DIMACS WCNF header (out of scope, spec §1), the JSON
// wire format carries no explicit variable count, so numVars is inferred as
// the largest absolute literal id referenced by any clause.
func BuildMaxSat(doc *CostFunctionDoc) (*model.MaxSatModel, error) {
	if len(doc.Terms) == 0 {
		return nil, qerrors.New(qerrors.ParsingError, "maxsat cost_function has no terms")
	}
	numVars := 0
	clauses := make([]model.Clause, len(doc.Terms))
	for i, term := range doc.Terms {
		lits := make([]model.Lit, len(term.IDs))
		for j, id := range term.IDs {
			neg := id < 0
			v := id
			if neg {
				v = -v
			}
			if v == 0 {
				return nil, qerrors.New(qerrors.ParsingError, "maxsat clause literal id must be nonzero")
			}
			if v > numVars {
				numVars = v
			}
			lits[j] = model.Lit{Var: v - 1, Neg: neg}
		}
		clauses[i] = model.Clause{Weight: term.C, Lits: lits}
	}
	return model.NewMaxSatModel(numVars, clauses), nil
}

type initialConfigSetter interface {
	SetInitialConfiguration(map[string]float64)
}

func applyInitial(m interface{}, initial map[string]float64) error {
	if len(initial) == 0 {
		return nil
	}
	setter, ok := m.(initialConfigSetter)
	if !ok {
		return qerrors.New(qerrors.InitialConfigError, "model type does not support initial_configuration")
	}
	setter.SetInitialConfiguration(initial)
	return nil
}
