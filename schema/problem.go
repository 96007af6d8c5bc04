package schema

import (
	"fmt"
	"math"
	"sort"
)

// ProblemData is the base problem variant analyzed under the ratio (CCR)
// model: dense per-DMU input and output performances, factor names, and an
// ordered collection of weight constraints. All problem variants are built
// once and treated as immutable during analysis.
type ProblemData struct {
	Inputs      [][]float64 // n x mIn performances
	Outputs     [][]float64 // n x mOut performances
	InputNames  []string
	OutputNames []string

	Constraints []WeightConstraint // Custom restrictions, in insertion order

	factorSet map[string]struct{}
}

// NewProblemData validates the matrices and names and returns the problem.
func NewProblemData(inputs, outputs [][]float64, inputNames, outputNames []string) (*ProblemData, error) {
	d := &ProblemData{Inputs: inputs, Outputs: outputs, InputNames: inputNames, OutputNames: outputNames}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// NumDMUs returns the number of decision-making units.
func (d *ProblemData) NumDMUs() int { return len(d.Inputs) }

// NumInputs returns the number of input factors.
func (d *ProblemData) NumInputs() int { return len(d.InputNames) }

// NumOutputs returns the number of output factors.
func (d *ProblemData) NumOutputs() int { return len(d.OutputNames) }

// FactorNames returns all factor names, inputs first.
func (d *ProblemData) FactorNames() []string {
	names := make([]string, 0, len(d.InputNames)+len(d.OutputNames))
	names = append(names, d.InputNames...)
	return append(names, d.OutputNames...)
}

// IsInput reports whether the named factor is an input.
func (d *ProblemData) IsInput(name string) bool {
	for _, n := range d.InputNames {
		if n == name {
			return true
		}
	}
	return false
}

// Performance returns the performance of DMU i on the named factor.
func (d *ProblemData) Performance(i int, name string) float64 {
	for j, n := range d.InputNames {
		if n == name {
			return d.Inputs[i][j]
		}
	}
	for j, n := range d.OutputNames {
		if n == name {
			return d.Outputs[i][j]
		}
	}
	return math.NaN()
}

// Column returns all DMU performances on the named factor.
func (d *ProblemData) Column(name string) []float64 {
	out := make([]float64, d.NumDMUs())
	for i := range out {
		out[i] = d.Performance(i, name)
	}
	return out
}

// AddWeightConstraint appends one custom weight restriction. Referencing an
// unknown factor is a configuration error.
func (d *ProblemData) AddWeightConstraint(c WeightConstraint) error {
	if err := c.validateAgainst(d.factorSet); err != nil {
		return err
	}
	d.Constraints = append(d.Constraints, c)
	return nil
}

func (d *ProblemData) validate() error {
	n := len(d.Inputs)
	if n == 0 || n != len(d.Outputs) {
		return &ConfigError{Op: "problem data",
			Msg: fmt.Sprintf("need matching non-empty performance matrices, got %d input and %d output rows", n, len(d.Outputs))}
	}
	if len(d.InputNames) == 0 || len(d.OutputNames) == 0 {
		return &ConfigError{Op: "problem data", Msg: "inputs and outputs must be nonempty"}
	}
	for i, row := range d.Inputs {
		if len(row) != len(d.InputNames) {
			return &ConfigError{Op: "problem data", DMU: i + 1,
				Msg: fmt.Sprintf("input row has %d values for %d factors", len(row), len(d.InputNames))}
		}
	}
	for i, row := range d.Outputs {
		if len(row) != len(d.OutputNames) {
			return &ConfigError{Op: "problem data", DMU: i + 1,
				Msg: fmt.Sprintf("output row has %d values for %d factors", len(row), len(d.OutputNames))}
		}
	}
	d.factorSet = make(map[string]struct{}, len(d.InputNames)+len(d.OutputNames))
	for _, name := range d.FactorNames() {
		if _, dup := d.factorSet[name]; dup {
			return &ConfigError{Op: "problem data", Factor: name, Msg: "factor name collision"}
		}
		d.factorSet[name] = struct{}{}
	}
	return nil
}

// VDEAProblemData is the additive value-model variant: base performances
// plus a marginal value function shape per factor. Factors left without an
// explicit shape receive a linear default over the observed range (cost
// direction for inputs, gain for outputs) when the value matrix is built.
type VDEAProblemData struct {
	ProblemData
	Shapes map[string]ValueFunction
}

// NewVDEAProblemData validates and returns the value-model problem.
func NewVDEAProblemData(inputs, outputs [][]float64, inputNames, outputNames []string) (*VDEAProblemData, error) {
	base, err := NewProblemData(inputs, outputs, inputNames, outputNames)
	if err != nil {
		return nil, err
	}
	return &VDEAProblemData{ProblemData: *base, Shapes: make(map[string]ValueFunction)}, nil
}

// SetFunctionShape fixes the marginal value function of the named factor.
func (d *VDEAProblemData) SetFunctionShape(name string, points []Point) error {
	if _, ok := d.factorSet[name]; !ok {
		return &ConfigError{Op: "value function", Factor: name, Msg: "unknown factor"}
	}
	f, err := NewValueFunction(points)
	if err != nil {
		return err
	}
	d.Shapes[name] = f
	return nil
}

// Shape returns the effective value function of the named factor, falling
// back to the linear default over the observed performance range.
func (d *VDEAProblemData) Shape(name string) ValueFunction {
	if f, ok := d.Shapes[name]; ok {
		return f
	}
	col := d.Column(name)
	lo, hi := col[0], col[0]
	for _, v := range col {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		hi = lo + 1 // constant column; any weight contributes a constant value
	}
	if d.IsInput(name) {
		return LinearCost(lo, hi)
	}
	return LinearGain(lo, hi)
}

// ValueMatrix evaluates every DMU on every factor through its value
// function, yielding the n x m matrix consumed by the value-model builders
// and the analytic SMAA scorer. Column order follows FactorNames.
func (d *VDEAProblemData) ValueMatrix() [][]float64 {
	names := d.FactorNames()
	out := make([][]float64, d.NumDMUs())
	for i := range out {
		row := make([]float64, len(names))
		for j, name := range names {
			row[j] = d.Shape(name).Value(d.Performance(i, name))
		}
		out[i] = row
	}
	return out
}

// HierarchicalVDEAProblemData adds a factor hierarchy to the value model.
// Analyses are evaluated at a named hierarchy node and consider only the
// subtree below it.
type HierarchicalVDEAProblemData struct {
	VDEAProblemData
	Hierarchy *Hierarchy
}

// NewHierarchicalVDEAProblemData validates that the hierarchy leaves are
// exactly the factors and returns the problem.
func NewHierarchicalVDEAProblemData(inputs, outputs [][]float64, inputNames, outputNames []string, h *Hierarchy) (*HierarchicalVDEAProblemData, error) {
	base, err := NewVDEAProblemData(inputs, outputs, inputNames, outputNames)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, &ConfigError{Op: "hierarchy", Msg: "missing hierarchy"}
	}
	if err := h.ValidateLeaves(base.FactorNames()); err != nil {
		return nil, err
	}
	return &HierarchicalVDEAProblemData{VDEAProblemData: *base, Hierarchy: h}, nil
}

// AddWeightConstraint accepts restrictions over factor and category names.
func (d *HierarchicalVDEAProblemData) AddWeightConstraint(c WeightConstraint) error {
	known := make(map[string]struct{}, d.Hierarchy.Len())
	for _, name := range d.Hierarchy.Names() {
		known[name] = struct{}{}
	}
	if err := c.validateAgainst(known); err != nil {
		return err
	}
	d.Constraints = append(d.Constraints, c)
	return nil
}

// ImpreciseVDEAProblemData is the value-model variant with interval and
// ordinal performances and value-function shapes given as envelope ranges.
type ImpreciseVDEAProblemData struct {
	MinInputs  [][]float64
	MaxInputs  [][]float64
	MinOutputs [][]float64
	MaxOutputs [][]float64

	InputNames  []string
	OutputNames []string

	Constraints []WeightConstraint
	Ranges      map[string]ValueFunctionRange
	Imprecise   ImpreciseInformation

	lo *VDEAProblemData // view over the minimal performances
	hi *VDEAProblemData // view over the maximal performances
}

// NewImpreciseVDEAProblemData validates the interval matrices and returns
// the problem with default tolerances.
func NewImpreciseVDEAProblemData(minInputs, minOutputs, maxInputs, maxOutputs [][]float64, inputNames, outputNames []string) (*ImpreciseVDEAProblemData, error) {
	lo, err := NewVDEAProblemData(minInputs, minOutputs, inputNames, outputNames)
	if err != nil {
		return nil, err
	}
	hi, err := NewVDEAProblemData(maxInputs, maxOutputs, inputNames, outputNames)
	if err != nil {
		return nil, err
	}
	d := &ImpreciseVDEAProblemData{
		MinInputs: minInputs, MaxInputs: maxInputs,
		MinOutputs: minOutputs, MaxOutputs: maxOutputs,
		InputNames: inputNames, OutputNames: outputNames,
		Ranges:    make(map[string]ValueFunctionRange),
		Imprecise: NewImpreciseInformation(),
		lo:        lo, hi: hi,
	}
	if err := d.validateIntervals(); err != nil {
		return nil, err
	}
	return d, nil
}

// NumDMUs returns the number of decision-making units.
func (d *ImpreciseVDEAProblemData) NumDMUs() int { return len(d.MinInputs) }

// FactorNames returns all factor names, inputs first.
func (d *ImpreciseVDEAProblemData) FactorNames() []string { return d.lo.FactorNames() }

// IsInput reports whether the named factor is an input.
func (d *ImpreciseVDEAProblemData) IsInput(name string) bool { return d.lo.IsInput(name) }

// Interval returns the admissible performance interval of DMU i on the
// named factor. Ordinal factors return their rank on both ends.
func (d *ImpreciseVDEAProblemData) Interval(i int, name string) (lo, hi float64) {
	return d.lo.Performance(i, name), d.hi.Performance(i, name)
}

// AddWeightConstraint appends one custom weight restriction.
func (d *ImpreciseVDEAProblemData) AddWeightConstraint(c WeightConstraint) error {
	if err := c.validateAgainst(d.lo.factorSet); err != nil {
		return err
	}
	d.Constraints = append(d.Constraints, c)
	return nil
}

// SetFunctionShape fixes an exact marginal value function for the factor.
func (d *ImpreciseVDEAProblemData) SetFunctionShape(name string, points []Point) error {
	f, err := NewValueFunction(points)
	if err != nil {
		return err
	}
	return d.setRange(name, ExactRange(f))
}

// SetLowerFunctionShape sets the lower envelope of the factor's admissible
// value functions, keeping any previously set upper envelope.
func (d *ImpreciseVDEAProblemData) SetLowerFunctionShape(name string, points []Point) error {
	f, err := NewValueFunction(points)
	if err != nil {
		return err
	}
	r := d.Ranges[name]
	r.Lower = f
	if len(r.Upper.Points) == 0 {
		r.Upper = f
	}
	return d.setRange(name, r)
}

// SetUpperFunctionShape sets the upper envelope of the factor's admissible
// value functions, keeping any previously set lower envelope.
func (d *ImpreciseVDEAProblemData) SetUpperFunctionShape(name string, points []Point) error {
	f, err := NewValueFunction(points)
	if err != nil {
		return err
	}
	r := d.Ranges[name]
	r.Upper = f
	if len(r.Lower.Points) == 0 {
		r.Lower = f
	}
	return d.setRange(name, r)
}

func (d *ImpreciseVDEAProblemData) setRange(name string, r ValueFunctionRange) error {
	if _, ok := d.lo.factorSet[name]; !ok {
		return &ConfigError{Op: "value function", Factor: name, Msg: "unknown factor"}
	}
	if err := r.Validate(); err != nil {
		return err
	}
	d.Ranges[name] = r
	return nil
}

// Range returns the effective value-function range of the named factor,
// defaulting to an exact linear shape over the union of all intervals.
func (d *ImpreciseVDEAProblemData) Range(name string) ValueFunctionRange {
	if r, ok := d.Ranges[name]; ok {
		return r
	}
	lo := d.lo.Column(name)
	hi := d.hi.Column(name)
	minX, maxX := lo[0], hi[0]
	for i := range lo {
		minX = math.Min(minX, lo[i])
		maxX = math.Max(maxX, hi[i])
	}
	if maxX <= minX {
		maxX = minX + 1
	}
	if d.IsInput(name) {
		return ExactRange(LinearCost(minX, maxX))
	}
	return ExactRange(LinearGain(minX, maxX))
}

// Precise reports whether every interval is degenerate and no factor is
// ordinal, i.e. the problem reduces to a plain value-model one.
func (d *ImpreciseVDEAProblemData) Precise() bool {
	if len(d.Imprecise.OrdinalFactors) > 0 {
		return false
	}
	for i := 0; i < d.NumDMUs(); i++ {
		for _, name := range d.FactorNames() {
			lo, hi := d.Interval(i, name)
			if lo != hi {
				return false
			}
		}
	}
	return true
}

// PreciseVDEA builds the plain value-model problem over the minimal
// performances with the lower envelopes as exact shapes. Only meaningful
// when Precise() holds.
func (d *ImpreciseVDEAProblemData) PreciseVDEA() *VDEAProblemData {
	out := *d.lo
	out.Constraints = append([]WeightConstraint(nil), d.Constraints...)
	out.Shapes = make(map[string]ValueFunction, len(d.Ranges))
	for name, r := range d.Ranges {
		out.Shapes[name] = r.Lower
	}
	return &out
}

// Validate checks interval order, tolerances and ordinal permutations.
// Called by drivers before analysis; construction already checks shapes.
func (d *ImpreciseVDEAProblemData) Validate() error {
	if err := d.Imprecise.Validate(); err != nil {
		return err
	}
	return validateOrdinal(d.lo.ProblemData, d.hi.ProblemData, d.Imprecise)
}

func (d *ImpreciseVDEAProblemData) validateIntervals() error {
	for i := 0; i < d.NumDMUs(); i++ {
		for _, name := range d.FactorNames() {
			lo, hi := d.Interval(i, name)
			if lo > hi {
				return &ConfigError{Op: "interval performance", Factor: name, DMU: i + 1,
					Msg: fmt.Sprintf("lower bound %g above upper bound %g", lo, hi)}
			}
		}
	}
	return nil
}

// CCRImpreciseProblemData is the ratio-model variant with interval and
// ordinal performances.
type CCRImpreciseProblemData struct {
	MinInputs  [][]float64
	MaxInputs  [][]float64
	MinOutputs [][]float64
	MaxOutputs [][]float64

	InputNames  []string
	OutputNames []string

	Constraints []WeightConstraint
	Imprecise   ImpreciseInformation

	lo *ProblemData
	hi *ProblemData
}

// NewCCRImpreciseProblemData validates the interval matrices and returns
// the problem with default tolerances.
func NewCCRImpreciseProblemData(minInputs, minOutputs, maxInputs, maxOutputs [][]float64, inputNames, outputNames []string) (*CCRImpreciseProblemData, error) {
	lo, err := NewProblemData(minInputs, minOutputs, inputNames, outputNames)
	if err != nil {
		return nil, err
	}
	hi, err := NewProblemData(maxInputs, maxOutputs, inputNames, outputNames)
	if err != nil {
		return nil, err
	}
	d := &CCRImpreciseProblemData{
		MinInputs: minInputs, MaxInputs: maxInputs,
		MinOutputs: minOutputs, MaxOutputs: maxOutputs,
		InputNames: inputNames, OutputNames: outputNames,
		Imprecise: NewImpreciseInformation(),
		lo:        lo, hi: hi,
	}
	for i := 0; i < d.NumDMUs(); i++ {
		for _, name := range d.FactorNames() {
			l, h := d.Interval(i, name)
			if l > h {
				return nil, &ConfigError{Op: "interval performance", Factor: name, DMU: i + 1,
					Msg: fmt.Sprintf("lower bound %g above upper bound %g", l, h)}
			}
		}
	}
	return d, nil
}

// NumDMUs returns the number of decision-making units.
func (d *CCRImpreciseProblemData) NumDMUs() int { return len(d.MinInputs) }

// FactorNames returns all factor names, inputs first.
func (d *CCRImpreciseProblemData) FactorNames() []string { return d.lo.FactorNames() }

// IsInput reports whether the named factor is an input.
func (d *CCRImpreciseProblemData) IsInput(name string) bool { return d.lo.IsInput(name) }

// Interval returns the admissible performance interval of DMU i on the
// named factor.
func (d *CCRImpreciseProblemData) Interval(i int, name string) (lo, hi float64) {
	return d.lo.Performance(i, name), d.hi.Performance(i, name)
}

// AddWeightConstraint appends one custom weight restriction.
func (d *CCRImpreciseProblemData) AddWeightConstraint(c WeightConstraint) error {
	if err := c.validateAgainst(d.lo.factorSet); err != nil {
		return err
	}
	d.Constraints = append(d.Constraints, c)
	return nil
}

// Validate checks tolerances and ordinal rank permutations.
func (d *CCRImpreciseProblemData) Validate() error {
	if err := d.Imprecise.Validate(); err != nil {
		return err
	}
	return validateOrdinal(*d.lo, *d.hi, d.Imprecise)
}

// validateOrdinal checks that each ordinal column carries lo == hi values
// forming a permutation of 1..n.
func validateOrdinal(lo, hi ProblemData, ii ImpreciseInformation) error {
	n := lo.NumDMUs()
	for _, name := range ii.OrdinalFactors {
		loCol := lo.Column(name)
		hiCol := hi.Column(name)
		ranks := make([]float64, n)
		for i := 0; i < n; i++ {
			if math.IsNaN(loCol[i]) {
				return &ConfigError{Op: "ordinal factor", Factor: name, Msg: "unknown factor"}
			}
			if loCol[i] != hiCol[i] {
				return &ConfigError{Op: "ordinal factor", Factor: name, DMU: i + 1,
					Msg: "ordinal performances cannot be intervals"}
			}
			ranks[i] = loCol[i]
		}
		sorted := append([]float64(nil), ranks...)
		sort.Float64s(sorted)
		for i := 0; i < n; i++ {
			if sorted[i] != float64(i+1) {
				return &ConfigError{Op: "ordinal factor", Factor: name,
					Msg: fmt.Sprintf("ranks must be a permutation of 1..%d", n)}
			}
		}
	}
	return nil
}

// RankOrder returns the DMU indices of an ordinal column ordered from the
// lowest rank (1) to the highest (n).
func RankOrder(ranks []float64) []int {
	order := make([]int, len(ranks))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return ranks[order[a]] < ranks[order[b]] })
	return order
}
