package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/deatools/deascope/core"
	"github.com/deatools/deascope/internal/outwriter"
	"github.com/deatools/deascope/schema"
)

const (
	defaultPrecision = 3
	maxWorkers       = 128
)

// Config is the validated invocation configuration shared by all commands.
type Config struct {
	Output         schema.OutputMode
	OutputFile     string
	Precision      int
	Workers        int
	Epsilon        float64
	Node           string
	Samples        int
	Bins           int
	Seed           uint64
	Super          bool
	NoColor        bool
	Width          int
	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string
}

// processAndValidate populates cfg from the resolved viper values.
func processAndValidate(cfg *Config) error {
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output mode %q", cfg.Output)
	}
	cfg.OutputFile = viper.GetString("output-file")

	cfg.Precision = viper.GetInt("precision")
	if cfg.Precision < 1 || cfg.Precision > 6 {
		return fmt.Errorf("precision must be between 1 and 6, got %d", cfg.Precision)
	}

	cfg.Workers = viper.GetInt("workers")
	if cfg.Workers < 1 || cfg.Workers > maxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", maxWorkers, cfg.Workers)
	}

	cfg.Epsilon = viper.GetFloat64("epsilon")
	if cfg.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", cfg.Epsilon)
	}

	cfg.Samples = viper.GetInt("samples")
	if cfg.Samples < 1 {
		return fmt.Errorf("samples must be positive, got %d", cfg.Samples)
	}
	cfg.Bins = viper.GetInt("bins")
	if cfg.Bins < 1 {
		return fmt.Errorf("bins must be positive, got %d", cfg.Bins)
	}
	cfg.Seed = viper.GetUint64("seed")
	cfg.Node = viper.GetString("node")
	cfg.NoColor = viper.GetBool("no-color")
	cfg.Width = viper.GetInt("width")

	cfg.StoreBackend = schema.DatabaseBackend(viper.GetString("store-backend"))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend %q", cfg.StoreBackend)
	}
	cfg.StoreDBConnect = viper.GetString("store-db-connect")
	if (cfg.StoreBackend == schema.MySQLBackend || cfg.StoreBackend == schema.PostgreSQLBackend) && cfg.StoreDBConnect == "" {
		return fmt.Errorf("store backend %s needs a connection string", cfg.StoreBackend)
	}
	return nil
}

// driverOptions maps the configuration onto core driver options.
func (cfg *Config) driverOptions() *core.Options {
	return &core.Options{
		Epsilon:         cfg.Epsilon,
		SuperEfficiency: cfg.Super,
		Samples:         cfg.Samples,
		Bins:            cfg.Bins,
		Seed:            cfg.Seed,
		Workers:         cfg.Workers,
	}
}

// writerConfig maps the configuration onto the output writer.
func (cfg *Config) writerConfig() *outwriter.Config {
	return &outwriter.Config{
		Output:     cfg.Output,
		Precision:  cfg.Precision,
		OutputFile: cfg.OutputFile,
		Width:      cfg.Width,
		NoColor:    cfg.NoColor,
	}
}
