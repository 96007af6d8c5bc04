// Package cmd is the command-line surface of deascope: robustness analyses
// over problem files, SMAA sampling, run tracking and the MCP server.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deatools/deascope/core"
	"github.com/deatools/deascope/internal/iocache"
	"github.com/deatools/deascope/schema"
)

// All linker flags will be set by release infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg holds the validated configuration for the current invocation.
var cfg = &Config{}

// runStore is the global run-tracking store, possibly disabled.
var runStore *iocache.RunStore

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "deascope",
	Short:              "Robust efficiency analysis for DEA problems.",
	Long:               `Deascope computes ranges and distributions of DEA efficiency indicators over all weight vectors compatible with a problem's constraints.`,
	Version:            fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".deascope")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("DEASCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("precision", defaultPrecision)
	viper.SetDefault("workers", core.DefaultWorkers)
	viper.SetDefault("samples", core.DefaultSamples)
	viper.SetDefault("bins", core.DefaultBins)
	viper.SetDefault("epsilon", core.DefaultEpsilon)
	viper.SetDefault("node", "")
	viper.SetDefault("store-backend", schema.NoneBackend)
	viper.SetDefault("store-db-connect", "")
}

// sharedSetup resolves and validates the configuration, then initializes
// the run store.
func sharedSetup(_ *cobra.Command, _ []string) error {
	initConfig()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	if err := processAndValidate(cfg); err != nil {
		return err
	}
	store, err := iocache.NewRunStore(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}
	runStore = store
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (default .deascope.yaml)")
	flags.StringP("output", "o", string(schema.TextOut), "Output format: text, csv or json")
	flags.String("output-file", "", "Write results to a file instead of stdout")
	flags.IntP("precision", "p", defaultPrecision, "Decimal precision for numeric columns")
	flags.IntP("workers", "w", core.DefaultWorkers, "Number of concurrent workers")
	flags.Float64("epsilon", core.DefaultEpsilon, "Strict-inequality tolerance")
	flags.String("node", "", "Hierarchy node to analyze (hierarchical model only)")
	flags.Int("samples", core.DefaultSamples, "SMAA sample count")
	flags.Int("bins", core.DefaultBins, "SMAA histogram bin count")
	flags.Uint64("seed", 0, "SMAA random seed")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Int("width", 0, "Table width override")
	flags.String("store-backend", string(schema.NoneBackend), "Run-tracking backend: sqlite, mysql, postgresql or none")
	flags.String("store-db-connect", "", "Run-tracking connection string")
	_ = viper.BindPFlags(flags)
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if runStore != nil {
			_ = runStore.Close()
		}
	}()
	return rootCmd.Execute()
}
