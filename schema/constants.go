package schema

// Custom string types for type safety.
type (
	// ModelKind selects the efficiency model family for an analysis.
	ModelKind string

	// Indicator selects the quantity whose range or distribution is analyzed.
	Indicator string

	// OutputMode represents the format of CLI output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All efficiency models supported.
const (
	CCRModel              ModelKind = "ccr" // default
	VDEAModel             ModelKind = "vdea"
	HierarchicalVDEAModel ModelKind = "hvdea"
	ImpreciseVDEAModel    ModelKind = "ivdea"
	ImpreciseCCRModel     ModelKind = "iccr"
)

// All indicators supported.
const (
	EfficiencyIndicator Indicator = "efficiency" // default
	DistanceIndicator   Indicator = "distance"
	RankIndicator       Indicator = "rank"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run-store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidModelKinds lists all valid efficiency models.
var ValidModelKinds = map[ModelKind]struct{}{
	CCRModel:              {},
	VDEAModel:             {},
	HierarchicalVDEAModel: {},
	ImpreciseVDEAModel:    {},
	ImpreciseCCRModel:     {},
}

// ValidIndicators lists all valid indicators.
var ValidIndicators = map[Indicator]struct{}{
	EfficiencyIndicator: {},
	DistanceIndicator:   {},
	RankIndicator:       {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid run-store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
