package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deatools/deascope/internal/parquet"
)

// runsCmd manages the historical run-tracking data.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage historical analysis run tracking",
	Long: `Manage historical analysis data used for trend tracking and reporting.

When a store backend is configured, deascope records the efficiency,
distance, ranks and smaa runs: run metadata (timestamp, model,
configuration) and per-unit indicator scores. Preferences and peoi runs
are not recorded. Supported backends: SQLite (default path under the user cache
directory), MySQL, PostgreSQL, or none.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// runsStatusCmd shows store statistics.
var runsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show run-tracking statistics",
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		st, err := runStore.GetStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Backend: %s\n", st.Backend)
		fmt.Printf("Runs:    %d\n", st.Runs)
		fmt.Printf("Scores:  %d\n", st.Scores)
		return nil
	},
}

// runsClearCmd removes all tracked data.
var runsClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove all tracked run data",
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := runStore.Clear(); err != nil {
			return err
		}
		fmt.Println("Run tracking data cleared.")
		return nil
	},
}

// runsExportCmd exports tracked data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export tracked runs and scores to Parquet",
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if !runStore.Enabled() {
			return fmt.Errorf("run tracking is disabled; configure --store-backend first")
		}
		runsFile := viper.GetString("runs-file")
		scoresFile := viper.GetString("scores-file")

		runs, err := runStore.ExportRuns()
		if err != nil {
			return err
		}
		if err := parquet.WriteRuns(runs, runsFile); err != nil {
			return err
		}
		scores, err := runStore.ExportUnitScores()
		if err != nil {
			return err
		}
		if err := parquet.WriteUnitScores(scores, scoresFile); err != nil {
			return err
		}
		fmt.Printf("Exported %d runs to %s and %d scores to %s\n", len(runs), runsFile, len(scores), scoresFile)
		return nil
	},
}

func init() {
	runsExportCmd.Flags().String("runs-file", "deascope_runs.parquet", "Output path for run metadata")
	runsExportCmd.Flags().String("scores-file", "deascope_scores.parquet", "Output path for unit scores")
	_ = viper.BindPFlag("runs-file", runsExportCmd.Flags().Lookup("runs-file"))
	_ = viper.BindPFlag("scores-file", runsExportCmd.Flags().Lookup("scores-file"))

	runsCmd.AddCommand(runsStatusCmd, runsClearCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}
