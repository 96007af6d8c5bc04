package iocache

import (
	"database/sql"
	"fmt"
	"time"
)

// RunRow is one exported analysis run.
type RunRow struct {
	RunID        int64
	StartedAt    time.Time
	FinishedAt   *time.Time
	TotalUnits   *int32
	Model        string
	Analysis     string
	ConfigParams *string
}

// UnitScoreRow is one exported per-unit indicator record.
type UnitScoreRow struct {
	RunID         int64
	UnitIndex     int32
	UnitName      string
	Indicator     string
	MinValue      *float64
	MaxValue      *float64
	ExpectedValue *float64
}

// ExportRuns reads every tracked run, oldest first.
func (s *RunStore) ExportRuns() ([]RunRow, error) {
	if !s.Enabled() {
		return nil, nil
	}
	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT run_id, started_at, finished_at, total_units, model, analysis, config_params FROM %s ORDER BY run_id`, runsTable))
	if err != nil {
		return nil, fmt.Errorf("failed to export runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var finished sql.NullTime
		var units sql.NullInt32
		var params sql.NullString
		if err := rows.Scan(&r.RunID, &r.StartedAt, &finished, &units, &r.Model, &r.Analysis, &params); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		if units.Valid {
			v := units.Int32
			r.TotalUnits = &v
		}
		if params.Valid {
			v := params.String
			r.ConfigParams = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ExportUnitScores reads every tracked score, grouped by run.
func (s *RunStore) ExportUnitScores() ([]UnitScoreRow, error) {
	if !s.Enabled() {
		return nil, nil
	}
	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT run_id, unit_index, unit_name, indicator, min_value, max_value, expected_value FROM %s ORDER BY run_id, unit_index`, unitScoresTable))
	if err != nil {
		return nil, fmt.Errorf("failed to export scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []UnitScoreRow
	for rows.Next() {
		var r UnitScoreRow
		var minV, maxV, expV sql.NullFloat64
		if err := rows.Scan(&r.RunID, &r.UnitIndex, &r.UnitName, &r.Indicator, &minV, &maxV, &expV); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		if minV.Valid {
			v := minV.Float64
			r.MinValue = &v
		}
		if maxV.Valid {
			v := maxV.Float64
			r.MaxValue = &v
		}
		if expV.Valid {
			v := expV.Float64
			r.ExpectedValue = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
