// Package outwriter renders analysis results as tables, CSV or JSON: the
// extreme-value and distribution layouts of the report surface, preference
// matrices and outranking indices.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/deatools/deascope/schema"
)

// Config tunes the rendering of one result.
type Config struct {
	Output     schema.OutputMode // text, csv or json
	Precision  int               // decimal places for numeric cells
	OutputFile string            // write target; empty means stdout
	Width      int               // table width override; 0 autodetects
	NoColor    bool              // disable efficient-unit highlighting
}

// Labels for efficient units in text output.
var (
	efficientColor = color.New(color.FgGreen, color.Bold)
	headerColor    = color.New(color.Bold)
)

// formatFloat renders one numeric cell at the configured precision.
func (cfg *Config) formatFloat(v float64) string {
	return fmt.Sprintf("%.*f", cfg.precision(), v)
}

func (cfg *Config) precision() int {
	if cfg.Precision <= 0 {
		return 3
	}
	if cfg.Precision > 6 {
		return 6
	}
	return cfg.Precision
}

// unitLabel highlights units that reach the top of the scale.
func (cfg *Config) unitLabel(name string, efficient bool) string {
	if efficient && !cfg.NoColor {
		return efficientColor.Sprint(name)
	}
	return name
}

// selectOutputFile opens the configured target, defaulting to stdout.
func (cfg *Config) selectOutputFile() (*os.File, error) {
	if cfg.OutputFile == "" {
		return os.Stdout, nil
	}
	f, err := os.Create(cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file %s: %w", cfg.OutputFile, err)
	}
	return f, nil
}

// writeWithFile opens the target, runs the writer and cleans up.
func (cfg *Config) writeWithFile(writer func(io.Writer) error) error {
	file, err := cfg.selectOutputFile()
	if err != nil {
		return err
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}
	if err := writer(file); err != nil {
		return err
	}
	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "Wrote results to %s\n", cfg.OutputFile)
	}
	return nil
}

// writeJSON encodes data with stable indentation.
func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSV writes a header and rows through one csv.Writer.
func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

// maxNameWidth caps the unit-name column from the terminal width.
func (cfg *Config) maxNameWidth(columns int) int {
	width := cfg.Width
	if width == 0 {
		detected, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detected <= 0 {
			width = 80
		} else {
			width = detected
		}
	}
	// Reserve roughly ten characters per numeric column plus borders.
	available := width - 10*columns - 8
	if available < 8 {
		return 8
	}
	if available > 40 {
		return 40
	}
	return available
}

// truncateName shortens a unit name to the column budget.
func truncateName(name string, width int) string {
	if len(name) <= width {
		return name
	}
	if width <= 3 {
		return name[:width]
	}
	return name[:width-3] + "..."
}
