package model

import (
	"github.com/deatools/deascope/internal/sampler"
	"github.com/deatools/deascope/internal/solver"
	"github.com/deatools/deascope/schema"
)

// HierarchyContext resolves a hierarchical analysis to a named node: the
// factor (leaf) order of the value matrix, the subset of columns below the
// node, and the custom constraints expanded from category names to leaves.
type HierarchyContext struct {
	Order    []string // all leaves, value-matrix column order
	NodeCols []int    // columns under the analysis node
	Cons     []schema.WeightConstraint
}

// NewHierarchyContext validates the node name and expands every constraint
// that references a category into the sum of its leaf weights.
func NewHierarchyContext(data *schema.HierarchicalVDEAProblemData, node string) (*HierarchyContext, error) {
	idx, ok := data.Hierarchy.Node(node)
	if !ok {
		return nil, &schema.ConfigError{Op: "hierarchy", Msg: "unknown analysis node " + node}
	}
	order := data.FactorNames()
	colOf := make(map[string]int, len(order))
	for j, name := range order {
		colOf[name] = j
	}
	ctx := &HierarchyContext{Order: order}
	for _, leaf := range data.Hierarchy.Leaves(idx) {
		ctx.NodeCols = append(ctx.NodeCols, colOf[leaf])
	}
	for _, c := range data.Constraints {
		expanded := schema.WeightConstraint{Operator: c.Operator, RHS: c.RHS, Coeffs: map[string]float64{}}
		for name, coef := range c.Coeffs {
			if nodeIdx, isNode := data.Hierarchy.Node(name); isNode && !data.Hierarchy.At(nodeIdx).Leaf() {
				for _, leaf := range data.Hierarchy.Leaves(nodeIdx) {
					expanded.Coeffs[leaf] += coef
				}
				continue
			}
			expanded.Coeffs[name] += coef
		}
		ctx.Cons = append(ctx.Cons, expanded)
	}
	return ctx, nil
}

// hierarchicalVars sets up the Charnes-Cooper scaled weight space for an
// analysis at a node: leaf weights scaled so the node's subtree sums to
// one, the root sum tied to the scale variable, and the expanded custom
// constraints homogenized against it. The scaled subtree weights are then
// exactly the normalized weights the node-level efficiency uses.
func hierarchicalVars(spec *solver.Spec, hc *HierarchyContext) factorCols {
	cols := make(factorCols, len(hc.Order))
	rootTerms := make([]solver.Term, 0, len(hc.Order)+1)
	for _, name := range hc.Order {
		cols[name] = spec.AddVariable("w_"+name, 0, solver.Inf())
		rootTerms = append(rootTerms, solver.Term{Var: cols[name], Coef: 1})
	}
	tau := spec.AddVariable("tau", 0, solver.Inf())

	nodeTerms := make([]solver.Term, 0, len(hc.NodeCols))
	for _, j := range hc.NodeCols {
		nodeTerms = append(nodeTerms, solver.Term{Var: cols[hc.Order[j]], Coef: 1})
	}
	spec.AddConstraint(nodeTerms, solver.EQ, 1)

	rootTerms = append(rootTerms, solver.Term{Var: tau, Coef: -1})
	spec.AddConstraint(rootTerms, solver.EQ, 0)

	addWeightConstraints(spec, hc.Cons, cols, tau)
	return cols
}

// nodeObjective sets Σ w_f*coef_f over the node's columns.
func nodeObjective(spec *solver.Spec, hc *HierarchyContext, cols factorCols, coef func(j int) float64) {
	for _, j := range hc.NodeCols {
		spec.SetObjective(cols[hc.Order[j]], coef(j))
	}
}

// BuildHierarchicalExtremeEfficiency optimizes the node-level efficiency of
// DMU s.
func BuildHierarchicalExtremeEfficiency(values [][]float64, hc *HierarchyContext, s int, dir solver.Direction) *solver.Spec {
	spec := solver.NewSpec(dir)
	cols := hierarchicalVars(spec, hc)
	nodeObjective(spec, hc, cols, func(j int) float64 { return values[s][j] })
	return spec
}

// BuildHierarchicalPreference optimizes the node-level efficiency gap
// E(s) - E(t); only the optimum's sign answers the preference question.
func BuildHierarchicalPreference(values [][]float64, hc *HierarchyContext, s, t int, dir solver.Direction) *solver.Spec {
	spec := solver.NewSpec(dir)
	cols := hierarchicalVars(spec, hc)
	nodeObjective(spec, hc, cols, func(j int) float64 { return values[s][j] - values[t][j] })
	return spec
}

// BuildHierarchicalMinDistance minimizes the node-level distance to the
// best unit with one auxiliary gap variable.
func BuildHierarchicalMinDistance(values [][]float64, hc *HierarchyContext, s int) *solver.Spec {
	spec := solver.NewSpec(solver.Minimize)
	cols := hierarchicalVars(spec, hc)
	gap := spec.AddVariable("d", 0, solver.Inf())
	spec.SetObjective(gap, 1)
	for k := range values {
		terms := make([]solver.Term, 0, len(hc.NodeCols)+1)
		for _, j := range hc.NodeCols {
			terms = append(terms, solver.Term{Var: cols[hc.Order[j]], Coef: values[k][j] - values[s][j]})
		}
		terms = append(terms, solver.Term{Var: gap, Coef: -1})
		spec.AddConstraint(terms, solver.LEQ, 0)
	}
	return spec
}

// BuildHierarchicalMaxDistance maximizes E(best) - E(s) at the node while
// the candidate best unit dominates all others.
func BuildHierarchicalMaxDistance(values [][]float64, hc *HierarchyContext, s, best int) *solver.Spec {
	spec := solver.NewSpec(solver.Maximize)
	cols := hierarchicalVars(spec, hc)
	for k := range values {
		if k == best {
			continue
		}
		terms := make([]solver.Term, 0, len(hc.NodeCols))
		for _, j := range hc.NodeCols {
			terms = append(terms, solver.Term{Var: cols[hc.Order[j]], Coef: values[k][j] - values[best][j]})
		}
		spec.AddConstraint(terms, solver.LEQ, 0)
	}
	nodeObjective(spec, hc, cols, func(j int) float64 { return values[best][j] - values[s][j] })
	return spec
}

// BuildHierarchicalMinRank counts with binaries how few units can strictly
// beat s at the node under one favorable weight vector.
func BuildHierarchicalMinRank(values [][]float64, hc *HierarchyContext, s int) *solver.Spec {
	spec := solver.NewSpec(solver.Minimize)
	cols := hierarchicalVars(spec, hc)
	for k := range values {
		if k == s {
			continue
		}
		b := spec.AddBinaryVariable("beats")
		spec.SetObjective(b, 1)
		terms := make([]solver.Term, 0, len(hc.NodeCols)+1)
		for _, j := range hc.NodeCols {
			terms = append(terms, solver.Term{Var: cols[hc.Order[j]], Coef: values[k][j] - values[s][j]})
		}
		terms = append(terms, solver.Term{Var: b, Coef: -1})
		spec.AddConstraint(terms, solver.LEQ, 0)
	}
	return spec
}

// BuildHierarchicalMaxRank counts with binaries how many units can strictly
// beat s at the node under one adversarial weight vector.
func BuildHierarchicalMaxRank(values [][]float64, hc *HierarchyContext, s int, eps float64) *solver.Spec {
	spec := solver.NewSpec(solver.Maximize)
	cols := hierarchicalVars(spec, hc)
	for k := range values {
		if k == s {
			continue
		}
		b := spec.AddBinaryVariable("beats")
		spec.SetObjective(b, 1)
		terms := make([]solver.Term, 0, len(hc.NodeCols)+1)
		for _, j := range hc.NodeCols {
			terms = append(terms, solver.Term{Var: cols[hc.Order[j]], Coef: values[k][j] - values[s][j]})
		}
		terms = append(terms, solver.Term{Var: b, Coef: -(1 + eps)})
		spec.AddConstraint(terms, solver.GEQ, -1)
	}
	return spec
}

// BuildHierarchicalWeightPolytope is the global sampling region over leaf
// weights: simplex at the root plus expanded custom constraints. Node-level
// scores renormalize per sample.
func BuildHierarchicalWeightPolytope(hc *HierarchyContext) *sampler.Polytope {
	p := sampler.NewPolytope(len(hc.Order))
	p.AddNonneg()
	p.AddSumTo(1)
	for _, c := range hc.Cons {
		appendPolytopeConstraint(p, c, hc.Order)
	}
	return p
}

// HierarchicalSampleScores contracts the value matrix with a globally
// sampled weight vector renormalized to the node's subtree. A vanishing
// subtree weight reports ok = false so the driver can skip the sample.
func HierarchicalSampleScores(values [][]float64, hc *HierarchyContext, w []float64) (scores []float64, ok bool) {
	total := 0.0
	for _, j := range hc.NodeCols {
		total += w[j]
	}
	if total <= 1e-12 {
		return nil, false
	}
	out := make([]float64, len(values))
	for k, row := range values {
		s := 0.0
		for _, j := range hc.NodeCols {
			s += w[j] * row[j]
		}
		out[k] = s / total
	}
	return out, true
}
