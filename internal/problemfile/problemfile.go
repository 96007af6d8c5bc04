// Package problemfile loads JSON problem documents for the CLI and the MCP
// server: performance matrices, factor names, weight constraints, value
// function shapes, hierarchies and imprecise blocks.
package problemfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/deatools/deascope/schema"
)

// Document is the on-disk JSON shape of a problem.
type Document struct {
	Name  string           `json:"name"`
	Model schema.ModelKind `json:"model"`
	Units []string         `json:"units"`

	InputNames  []string `json:"inputNames"`
	OutputNames []string `json:"outputNames"`

	Inputs  [][]float64 `json:"inputs,omitempty"`
	Outputs [][]float64 `json:"outputs,omitempty"`

	MinInputs  [][]float64 `json:"minInputs,omitempty"`
	MaxInputs  [][]float64 `json:"maxInputs,omitempty"`
	MinOutputs [][]float64 `json:"minOutputs,omitempty"`
	MaxOutputs [][]float64 `json:"maxOutputs,omitempty"`

	Constraints []ConstraintDoc `json:"constraints,omitempty"`

	FunctionShapes      map[string][][2]float64 `json:"functionShapes,omitempty"`
	LowerFunctionShapes map[string][][2]float64 `json:"lowerFunctionShapes,omitempty"`
	UpperFunctionShapes map[string][][2]float64 `json:"upperFunctionShapes,omitempty"`

	Hierarchy *HierarchyDoc `json:"hierarchy,omitempty"`

	OrdinalFactors      []string `json:"ordinalFactors,omitempty"`
	OrdinalRatio        float64  `json:"ordinalRatio,omitempty"`
	OrdinalMin          float64  `json:"ordinalMin,omitempty"`
	VFMonotonicityRatio float64  `json:"vfMonotonicityRatio,omitempty"`
}

// ConstraintDoc is one weight constraint with an infix operator.
type ConstraintDoc struct {
	Op     string             `json:"op"` // "<=", ">=" or "="
	RHS    float64            `json:"rhs"`
	Coeffs map[string]float64 `json:"coeffs"`
}

// HierarchyDoc is one hierarchy node with its children.
type HierarchyDoc struct {
	Name     string         `json:"name"`
	Children []HierarchyDoc `json:"children,omitempty"`
}

// Problem is a loaded problem: exactly one variant is populated, matching
// the document's model kind.
type Problem struct {
	Name  string
	Model schema.ModelKind
	Units []string

	CCR           *schema.ProblemData
	VDEA          *schema.VDEAProblemData
	Hierarchical  *schema.HierarchicalVDEAProblemData
	ImpreciseVDEA *schema.ImpreciseVDEAProblemData
	ImpreciseCCR  *schema.CCRImpreciseProblemData
}

// NumDMUs returns the unit count of whichever variant is loaded.
func (p *Problem) NumDMUs() int {
	switch p.Model {
	case schema.CCRModel:
		return p.CCR.NumDMUs()
	case schema.VDEAModel:
		return p.VDEA.NumDMUs()
	case schema.HierarchicalVDEAModel:
		return p.Hierarchical.NumDMUs()
	case schema.ImpreciseVDEAModel:
		return p.ImpreciseVDEA.NumDMUs()
	default:
		return p.ImpreciseCCR.NumDMUs()
	}
}

// UnitNames returns display names, falling back to 1-based numbering.
func (p *Problem) UnitNames() []string {
	if len(p.Units) > 0 {
		return p.Units
	}
	names := make([]string, p.NumDMUs())
	for i := range names {
		names[i] = fmt.Sprintf("%d", i+1)
	}
	return names
}

// Load reads and assembles a problem document.
func Load(path string) (*Problem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse problem file %s: %w", path, err)
	}
	return Assemble(&doc)
}

// Assemble validates a document and builds the matching problem variant.
func Assemble(doc *Document) (*Problem, error) {
	model := doc.Model
	if model == "" {
		model = schema.CCRModel
	}
	if _, ok := schema.ValidModelKinds[model]; !ok {
		return nil, fmt.Errorf("unknown model kind %q", model)
	}
	p := &Problem{Name: doc.Name, Model: model, Units: doc.Units}

	var err error
	switch model {
	case schema.CCRModel:
		p.CCR, err = schema.NewProblemData(doc.Inputs, doc.Outputs, doc.InputNames, doc.OutputNames)
		if err != nil {
			return nil, err
		}
		err = addConstraints(doc, p.CCR.AddWeightConstraint)

	case schema.VDEAModel:
		p.VDEA, err = schema.NewVDEAProblemData(doc.Inputs, doc.Outputs, doc.InputNames, doc.OutputNames)
		if err != nil {
			return nil, err
		}
		if err = addShapes(doc.FunctionShapes, p.VDEA.SetFunctionShape); err != nil {
			return nil, err
		}
		err = addConstraints(doc, p.VDEA.AddWeightConstraint)

	case schema.HierarchicalVDEAModel:
		if doc.Hierarchy == nil {
			return nil, fmt.Errorf("model %q needs a hierarchy", model)
		}
		h := schema.NewHierarchy(doc.Hierarchy.Name)
		if err := addHierarchyChildren(h, doc.Hierarchy); err != nil {
			return nil, err
		}
		p.Hierarchical, err = schema.NewHierarchicalVDEAProblemData(doc.Inputs, doc.Outputs, doc.InputNames, doc.OutputNames, h)
		if err != nil {
			return nil, err
		}
		if err = addShapes(doc.FunctionShapes, p.Hierarchical.SetFunctionShape); err != nil {
			return nil, err
		}
		err = addConstraints(doc, p.Hierarchical.AddWeightConstraint)

	case schema.ImpreciseVDEAModel:
		p.ImpreciseVDEA, err = schema.NewImpreciseVDEAProblemData(
			doc.MinInputs, doc.MinOutputs, doc.MaxInputs, doc.MaxOutputs, doc.InputNames, doc.OutputNames)
		if err != nil {
			return nil, err
		}
		if err = addShapes(doc.FunctionShapes, p.ImpreciseVDEA.SetFunctionShape); err != nil {
			return nil, err
		}
		if err = addShapes(doc.LowerFunctionShapes, p.ImpreciseVDEA.SetLowerFunctionShape); err != nil {
			return nil, err
		}
		if err = addShapes(doc.UpperFunctionShapes, p.ImpreciseVDEA.SetUpperFunctionShape); err != nil {
			return nil, err
		}
		p.ImpreciseVDEA.Imprecise = impreciseInfo(doc)
		if err = addConstraints(doc, p.ImpreciseVDEA.AddWeightConstraint); err != nil {
			return nil, err
		}
		err = p.ImpreciseVDEA.Validate()

	case schema.ImpreciseCCRModel:
		p.ImpreciseCCR, err = schema.NewCCRImpreciseProblemData(
			doc.MinInputs, doc.MinOutputs, doc.MaxInputs, doc.MaxOutputs, doc.InputNames, doc.OutputNames)
		if err != nil {
			return nil, err
		}
		p.ImpreciseCCR.Imprecise = impreciseInfo(doc)
		if err = addConstraints(doc, p.ImpreciseCCR.AddWeightConstraint); err != nil {
			return nil, err
		}
		err = p.ImpreciseCCR.Validate()
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func impreciseInfo(doc *Document) schema.ImpreciseInformation {
	ii := schema.NewImpreciseInformation().WithOrdinal(doc.OrdinalFactors...)
	if doc.OrdinalRatio > 0 {
		ii.OrdinalRatio = doc.OrdinalRatio
	}
	if doc.OrdinalMin > 0 {
		ii.OrdinalMin = doc.OrdinalMin
	}
	if doc.VFMonotonicityRatio > 0 {
		ii.VFMonotonicityRatio = doc.VFMonotonicityRatio
	}
	return ii
}

func addConstraints(doc *Document, add func(schema.WeightConstraint) error) error {
	for _, c := range doc.Constraints {
		var op schema.ConstraintOperator
		switch c.Op {
		case "<=":
			op = schema.LEQ
		case ">=":
			op = schema.GEQ
		case "=", "==":
			op = schema.EQ
		default:
			return fmt.Errorf("unknown constraint operator %q", c.Op)
		}
		if err := add(schema.NewWeightConstraint(op, c.RHS, c.Coeffs)); err != nil {
			return err
		}
	}
	return nil
}

func addShapes(shapes map[string][][2]float64, set func(string, []schema.Point) error) error {
	for name, pts := range shapes {
		points := make([]schema.Point, len(pts))
		for i, p := range pts {
			points[i] = schema.Point{X: p[0], U: p[1]}
		}
		if err := set(name, points); err != nil {
			return err
		}
	}
	return nil
}

func addHierarchyChildren(h *schema.Hierarchy, node *HierarchyDoc) error {
	for i := range node.Children {
		child := &node.Children[i]
		if _, err := h.AddNode(node.Name, child.Name); err != nil {
			return err
		}
		if err := addHierarchyChildren(h, child); err != nil {
			return err
		}
	}
	return nil
}
