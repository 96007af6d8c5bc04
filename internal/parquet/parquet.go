// Package parquet exports tracked analysis runs and per-unit scores to
// Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/deatools/deascope/internal/iocache"
)

// AnalysisRun maps the deascope_runs table onto a Parquet row.
type AnalysisRun struct {
	RunID        int64      `parquet:"run_id,snappy"`
	StartedAt    time.Time  `parquet:"started_at,snappy"`
	FinishedAt   *time.Time `parquet:"finished_at,optional,snappy"`
	TotalUnits   *int32     `parquet:"total_units,optional,snappy"`
	Model        string     `parquet:"model,snappy"`
	Analysis     string     `parquet:"analysis,snappy"`
	ConfigParams *string    `parquet:"config_params,optional,snappy"`
}

// UnitScore maps the deascope_unit_scores table onto a Parquet row.
type UnitScore struct {
	RunID         int64    `parquet:"run_id,snappy"`
	UnitIndex     int32    `parquet:"unit_index,snappy"`
	UnitName      string   `parquet:"unit_name,snappy"`
	Indicator     string   `parquet:"indicator,snappy"`
	MinValue      *float64 `parquet:"min_value,optional,snappy"`
	MaxValue      *float64 `parquet:"max_value,optional,snappy"`
	ExpectedValue *float64 `parquet:"expected_value,optional,snappy"`
}

// WriteRuns writes run metadata to a Parquet file.
func WriteRuns(rows []iocache.RunRow, outputPath string) error {
	records := make([]AnalysisRun, len(rows))
	for i, r := range rows {
		records[i] = AnalysisRun{
			RunID:        r.RunID,
			StartedAt:    r.StartedAt,
			FinishedAt:   r.FinishedAt,
			TotalUnits:   r.TotalUnits,
			Model:        r.Model,
			Analysis:     r.Analysis,
			ConfigParams: r.ConfigParams,
		}
	}
	return writeFile(records, outputPath)
}

// WriteUnitScores writes per-unit indicator records to a Parquet file.
func WriteUnitScores(rows []iocache.UnitScoreRow, outputPath string) error {
	records := make([]UnitScore, len(rows))
	for i, r := range rows {
		records[i] = UnitScore{
			RunID:         r.RunID,
			UnitIndex:     r.UnitIndex,
			UnitName:      r.UnitName,
			Indicator:     r.Indicator,
			MinValue:      r.MinValue,
			MaxValue:      r.MaxValue,
			ExpectedValue: r.ExpectedValue,
		}
	}
	return writeFile(records, outputPath)
}

// writeFile writes any record slice with struct-inferred schema.
func writeFile[T any](records []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
