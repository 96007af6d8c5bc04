package outwriter

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/deatools/deascope/schema"
)

// PrintExtremes renders per-unit minimal and maximal indicator values, with
// the super-efficiency column when present.
func PrintExtremes(title string, names []string, res *schema.ExtremesResult, cfg *Config) error {
	headers := []string{"Unit", "Min", "Max"}
	if res.Super != nil {
		headers = append(headers, "Super")
	}
	rows := make([][]string, len(names))
	for i, name := range names {
		row := []string{name, cfg.formatFloat(res.Min[i]), cfg.formatFloat(res.Max[i])}
		if res.Super != nil {
			row = append(row, cfg.formatFloat(res.Super[i]))
		}
		rows[i] = row
	}

	switch cfg.Output {
	case schema.JSONOut:
		return cfg.writeWithFile(func(w io.Writer) error {
			return writeJSON(w, map[string]any{"units": names, "min": res.Min, "max": res.Max, "super": res.Super, "failed": res.Failed})
		})
	case schema.CSVOut:
		return cfg.writeWithFile(func(w io.Writer) error { return writeCSV(w, headers, rows) })
	default:
		return cfg.writeWithFile(func(w io.Writer) error {
			fmt.Fprintln(w, headerColor.Sprint(title))
			nameWidth := cfg.maxNameWidth(len(headers) - 1)
			table := tablewriter.NewWriter(w)
			table.Header(headers)
			table.Configure(func(tc *tablewriter.Config) {
				tc.Row.Alignment.Global = tw.AlignRight
			})
			data := make([][]string, len(rows))
			for i, row := range rows {
				efficient := res.Max[i] >= 1-1e-9
				row[0] = cfg.unitLabel(truncateName(names[i], nameWidth), efficient)
				data[i] = row
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			if err := table.Render(); err != nil {
				return err
			}
			return printFailed(w, res.Failed, names)
		})
	}
}

// PrintRanks renders per-unit extreme ranks.
func PrintRanks(title string, names []string, res *schema.RanksResult, cfg *Config) error {
	headers := []string{"Unit", "Best", "Worst"}
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, strconv.Itoa(res.Min[i]), strconv.Itoa(res.Max[i])}
	}
	switch cfg.Output {
	case schema.JSONOut:
		return cfg.writeWithFile(func(w io.Writer) error {
			return writeJSON(w, map[string]any{"units": names, "min": res.Min, "max": res.Max, "failed": res.Failed})
		})
	case schema.CSVOut:
		return cfg.writeWithFile(func(w io.Writer) error { return writeCSV(w, headers, rows) })
	default:
		return cfg.writeWithFile(func(w io.Writer) error {
			fmt.Fprintln(w, headerColor.Sprint(title))
			nameWidth := cfg.maxNameWidth(2)
			table := tablewriter.NewWriter(w)
			table.Header(headers)
			table.Configure(func(tc *tablewriter.Config) {
				tc.Row.Alignment.Global = tw.AlignRight
			})
			data := make([][]string, len(rows))
			for i, row := range rows {
				row[0] = cfg.unitLabel(truncateName(names[i], nameWidth), res.Min[i] == 1)
				data[i] = row
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			if err := table.Render(); err != nil {
				return err
			}
			return printFailed(w, res.Failed, names)
		})
	}
}

// PrintDistribution renders the histogram matrix with expectations; bin
// headers follow the indicator (value intervals or rank positions).
func PrintDistribution(title string, names, bins []string, res *schema.DistributionResult, cfg *Config) error {
	headers := append([]string{"Unit"}, bins...)
	headers = append(headers, "Expected")
	rows := make([][]string, len(names))
	for i, name := range names {
		row := make([]string, 0, len(headers))
		row = append(row, name)
		for _, v := range res.Histogram[i] {
			row = append(row, cfg.formatFloat(v))
		}
		row = append(row, cfg.formatFloat(res.Expected[i]))
		rows[i] = row
	}
	switch cfg.Output {
	case schema.JSONOut:
		return cfg.writeWithFile(func(w io.Writer) error {
			return writeJSON(w, map[string]any{"units": names, "bins": bins, "histogram": res.Histogram, "expected": res.Expected})
		})
	case schema.CSVOut:
		return cfg.writeWithFile(func(w io.Writer) error { return writeCSV(w, headers, rows) })
	default:
		return cfg.writeWithFile(func(w io.Writer) error {
			fmt.Fprintln(w, headerColor.Sprint(title))
			table := tablewriter.NewWriter(w)
			table.Configure(func(tc *tablewriter.Config) {
				tc.Row.Alignment.Global = tw.AlignRight
				tc.Header.Formatting.AutoFormat = tw.Off
			})
			table.Header(headers)
			if err := table.Bulk(rows); err != nil {
				return err
			}
			if err := table.Render(); err != nil {
				return err
			}
			if res.FailedSamples > 0 {
				fmt.Fprintf(w, "Skipped %d degenerate samples\n", res.FailedSamples)
			}
			return nil
		})
	}
}

// PrintPreferences renders the combined relation matrix: N marks necessary
// preference (which implies possible), P marks merely possible preference.
func PrintPreferences(title string, names []string, res *schema.PreferenceResult, cfg *Config) error {
	headers := append([]string{""}, names...)
	rows := make([][]string, len(names))
	for i := range names {
		row := make([]string, 0, len(headers))
		row = append(row, names[i])
		for j := range names {
			switch {
			case res.Necessary[i][j]:
				row = append(row, "N")
			case res.Possible[i][j]:
				row = append(row, "P")
			default:
				row = append(row, "-")
			}
		}
		rows[i] = row
	}
	switch cfg.Output {
	case schema.JSONOut:
		return cfg.writeWithFile(func(w io.Writer) error {
			return writeJSON(w, map[string]any{"units": names, "necessary": res.Necessary, "possible": res.Possible})
		})
	case schema.CSVOut:
		return cfg.writeWithFile(func(w io.Writer) error { return writeCSV(w, headers, rows) })
	default:
		return cfg.writeWithFile(func(w io.Writer) error {
			fmt.Fprintln(w, headerColor.Sprint(title))
			table := tablewriter.NewWriter(w)
			table.Header(headers)
			if err := table.Bulk(rows); err != nil {
				return err
			}
			return table.Render()
		})
	}
}

// PrintPEOI renders the pairwise outranking index matrix.
func PrintPEOI(title string, names []string, res *schema.PEOIResult, cfg *Config) error {
	headers := append([]string{""}, names...)
	rows := make([][]string, len(names))
	for i := range names {
		row := make([]string, 0, len(headers))
		row = append(row, names[i])
		for j := range names {
			row = append(row, cfg.formatFloat(res.Matrix[i][j]))
		}
		rows[i] = row
	}
	switch cfg.Output {
	case schema.JSONOut:
		return cfg.writeWithFile(func(w io.Writer) error {
			return writeJSON(w, map[string]any{"units": names, "peoi": res.Matrix})
		})
	case schema.CSVOut:
		return cfg.writeWithFile(func(w io.Writer) error { return writeCSV(w, headers, rows) })
	default:
		return cfg.writeWithFile(func(w io.Writer) error {
			fmt.Fprintln(w, headerColor.Sprint(title))
			table := tablewriter.NewWriter(w)
			table.Header(headers)
			table.Configure(func(tc *tablewriter.Config) {
				tc.Row.Alignment.Global = tw.AlignRight
			})
			if err := table.Bulk(rows); err != nil {
				return err
			}
			return table.Render()
		})
	}
}

// ValueBinHeaders builds the interval labels of a value histogram: the
// first bin closed on both ends, the rest half-open.
func ValueBinHeaders(bins int) []string {
	out := make([]string, bins)
	for i := 0; i < bins; i++ {
		lo := float64(i) / float64(bins)
		hi := float64(i+1) / float64(bins)
		if i == 0 {
			out[i] = fmt.Sprintf("[%.2f-%.2f]", lo, hi)
		} else {
			out[i] = fmt.Sprintf("(%.2f-%.2f]", lo, hi)
		}
	}
	return out
}

// RankBinHeaders builds the rank labels 1..n.
func RankBinHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

// printFailed reports units whose results hit numerical trouble.
func printFailed(w io.Writer, failed []int, names []string) error {
	for _, idx := range failed {
		name := strconv.Itoa(idx + 1)
		if idx < len(names) {
			name = names[idx]
		}
		if _, err := fmt.Fprintf(w, "Numerical failure for unit %s; values reported as %v\n", name, math.NaN()); err != nil {
			return err
		}
	}
	return nil
}
