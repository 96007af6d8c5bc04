package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deatools/deascope/core"
	"github.com/deatools/deascope/internal/outwriter"
	"github.com/deatools/deascope/internal/problemfile"
	"github.com/deatools/deascope/schema"
)

// loadProblem reads the positional problem-file argument.
func loadProblem(args []string) (*problemfile.Problem, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("exactly one problem file is required")
	}
	return problemfile.Load(args[0])
}

// trackRun wraps one analysis with run-store bookkeeping.
func trackRun(p *problemfile.Problem, analysis string, body func(runID int64) error) error {
	var runID int64
	if runStore.Enabled() {
		id, err := runStore.BeginRun(time.Now(), p.Model, analysis, map[string]any{
			"problem": p.Name,
			"workers": cfg.Workers,
			"node":    cfg.Node,
		})
		if err != nil {
			fmt.Println("Warning: run tracking disabled for this run:", err)
		} else {
			runID = id
		}
	}
	if err := body(runID); err != nil {
		return err
	}
	if runStore.Enabled() && runID != 0 {
		if err := runStore.EndRun(runID, time.Now(), p.NumDMUs()); err != nil {
			fmt.Println("Warning: failed to finalize run tracking:", err)
		}
	}
	return nil
}

// efficiencyCmd computes extreme efficiencies.
var efficiencyCmd = &cobra.Command{
	Use:     "efficiency <problem.json>",
	Short:   "Compute extreme (and optionally super-) efficiencies",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		p, err := loadProblem(args)
		if err != nil {
			return err
		}
		cfg.Super = viper.GetBool("super")
		opts := cfg.driverOptions()
		var res *schema.ExtremesResult
		switch p.Model {
		case schema.CCRModel:
			res, err = core.CCRExtremeEfficiencies(rootCtx, p.CCR, opts)
		case schema.VDEAModel:
			res, err = core.VDEAExtremeEfficiencies(rootCtx, p.VDEA, opts)
		case schema.HierarchicalVDEAModel:
			res, err = core.HierarchicalVDEAExtremeEfficiencies(rootCtx, p.Hierarchical, cfg.Node, opts)
		case schema.ImpreciseVDEAModel:
			res, err = core.ImpreciseVDEAExtremeEfficiencies(rootCtx, p.ImpreciseVDEA, opts)
		case schema.ImpreciseCCRModel:
			res, err = core.ImpreciseCCRExtremeEfficiencies(rootCtx, p.ImpreciseCCR, opts)
		}
		if err != nil {
			return err
		}
		return trackRun(p, "efficiency", func(runID int64) error {
			if runID != 0 {
				if err := runStore.SaveUnitScores(runID, schema.EfficiencyIndicator, p.UnitNames(), res.Min, res.Max, nil); err != nil {
					fmt.Println("Warning: failed to record scores:", err)
				}
			}
			return outwriter.PrintExtremes("Extreme efficiencies:", p.UnitNames(), res, cfg.writerConfig())
		})
	},
}

// distanceCmd computes extreme distances to the best unit.
var distanceCmd = &cobra.Command{
	Use:     "distance <problem.json>",
	Short:   "Compute extreme distances to the best unit (value models)",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		p, err := loadProblem(args)
		if err != nil {
			return err
		}
		opts := cfg.driverOptions()
		var res *schema.ExtremesResult
		switch p.Model {
		case schema.VDEAModel:
			res, err = core.VDEAExtremeDistances(rootCtx, p.VDEA, opts)
		case schema.HierarchicalVDEAModel:
			res, err = core.HierarchicalVDEAExtremeDistances(rootCtx, p.Hierarchical, cfg.Node, opts)
		case schema.ImpreciseVDEAModel:
			res, err = core.ImpreciseVDEAExtremeDistances(rootCtx, p.ImpreciseVDEA, opts)
		default:
			return fmt.Errorf("distance analysis needs a value-based model, got %s", p.Model)
		}
		if err != nil {
			return err
		}
		return trackRun(p, "distance", func(runID int64) error {
			if runID != 0 {
				if err := runStore.SaveUnitScores(runID, schema.DistanceIndicator, p.UnitNames(), res.Min, res.Max, nil); err != nil {
					fmt.Println("Warning: failed to record scores:", err)
				}
			}
			return outwriter.PrintExtremes("Extreme distances to the best unit:", p.UnitNames(), res, cfg.writerConfig())
		})
	},
}

// ranksCmd computes extreme efficiency ranks.
var ranksCmd = &cobra.Command{
	Use:     "ranks <problem.json>",
	Short:   "Compute extreme efficiency ranks",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		p, err := loadProblem(args)
		if err != nil {
			return err
		}
		opts := cfg.driverOptions()
		var res *schema.RanksResult
		switch p.Model {
		case schema.CCRModel:
			res, err = core.CCRExtremeRanks(rootCtx, p.CCR, opts)
		case schema.VDEAModel:
			res, err = core.VDEAExtremeRanks(rootCtx, p.VDEA, opts)
		case schema.HierarchicalVDEAModel:
			res, err = core.HierarchicalVDEAExtremeRanks(rootCtx, p.Hierarchical, cfg.Node, opts)
		case schema.ImpreciseVDEAModel:
			res, err = core.ImpreciseVDEAExtremeRanks(rootCtx, p.ImpreciseVDEA, opts)
		case schema.ImpreciseCCRModel:
			res, err = core.ImpreciseCCRExtremeRanks(rootCtx, p.ImpreciseCCR, opts)
		}
		if err != nil {
			return err
		}
		return trackRun(p, "ranks", func(runID int64) error {
			if runID != 0 {
				minF := make([]float64, len(res.Min))
				maxF := make([]float64, len(res.Max))
				for i := range res.Min {
					minF[i] = float64(res.Min[i])
					maxF[i] = float64(res.Max[i])
				}
				if err := runStore.SaveUnitScores(runID, schema.RankIndicator, p.UnitNames(), minF, maxF, nil); err != nil {
					fmt.Println("Warning: failed to record scores:", err)
				}
			}
			return outwriter.PrintRanks("Extreme ranks:", p.UnitNames(), res, cfg.writerConfig())
		})
	},
}

// preferencesCmd checks necessary and possible preference relations.
var preferencesCmd = &cobra.Command{
	Use:     "preferences <problem.json>",
	Short:   "Check necessary and possible preference relations",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		p, err := loadProblem(args)
		if err != nil {
			return err
		}
		opts := cfg.driverOptions()
		var res *schema.PreferenceResult
		switch p.Model {
		case schema.CCRModel:
			res, err = core.CCRPreferenceRelations(rootCtx, p.CCR, opts)
		case schema.VDEAModel:
			res, err = core.VDEAPreferenceRelations(rootCtx, p.VDEA, opts)
		case schema.HierarchicalVDEAModel:
			res, err = core.HierarchicalVDEAPreferenceRelations(rootCtx, p.Hierarchical, cfg.Node, opts)
		case schema.ImpreciseVDEAModel:
			res, err = core.ImpreciseVDEAPreferenceRelations(rootCtx, p.ImpreciseVDEA, opts)
		case schema.ImpreciseCCRModel:
			res, err = core.ImpreciseCCRPreferenceRelations(rootCtx, p.ImpreciseCCR, opts)
		}
		if err != nil {
			return err
		}
		return outwriter.PrintPreferences("Pairwise efficiency preference relations:", p.UnitNames(), res, cfg.writerConfig())
	},
}

// smaaCmd estimates indicator distributions by uniform sampling.
var smaaCmd = &cobra.Command{
	Use:     "smaa <problem.json>",
	Short:   "Estimate indicator distributions by uniform sampling",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		p, err := loadProblem(args)
		if err != nil {
			return err
		}
		indicator := schema.Indicator(viper.GetString("indicator"))
		if _, ok := schema.ValidIndicators[indicator]; !ok {
			return fmt.Errorf("invalid indicator %q", indicator)
		}
		opts := cfg.driverOptions()
		res, err := runSmaa(p, indicator, opts)
		if err != nil {
			return err
		}
		bins := outwriter.ValueBinHeaders(opts.Bins)
		title := fmt.Sprintf("%s distribution:", indicator)
		if indicator == schema.RankIndicator {
			bins = outwriter.RankBinHeaders(p.NumDMUs())
		}
		return trackRun(p, "smaa-"+string(indicator), func(runID int64) error {
			if runID != 0 {
				if err := runStore.SaveUnitScores(runID, indicator, p.UnitNames(), nil, nil, res.Expected); err != nil {
					fmt.Println("Warning: failed to record scores:", err)
				}
			}
			return outwriter.PrintDistribution(title, p.UnitNames(), bins, res, cfg.writerConfig())
		})
	},
}

// runSmaa dispatches the sampled analysis over model and indicator.
func runSmaa(p *problemfile.Problem, indicator schema.Indicator, opts *core.Options) (*schema.DistributionResult, error) {
	switch p.Model {
	case schema.CCRModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.CCRSmaaEfficiency(rootCtx, p.CCR, opts)
		case schema.RankIndicator:
			return core.CCRSmaaRanks(rootCtx, p.CCR, opts)
		}
	case schema.VDEAModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.VDEASmaaEfficiency(rootCtx, p.VDEA, opts)
		case schema.DistanceIndicator:
			return core.VDEASmaaDistance(rootCtx, p.VDEA, opts)
		case schema.RankIndicator:
			return core.VDEASmaaRanks(rootCtx, p.VDEA, opts)
		}
	case schema.HierarchicalVDEAModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.HierarchicalVDEASmaaEfficiency(rootCtx, p.Hierarchical, cfg.Node, opts)
		case schema.DistanceIndicator:
			return core.HierarchicalVDEASmaaDistance(rootCtx, p.Hierarchical, cfg.Node, opts)
		case schema.RankIndicator:
			return core.HierarchicalVDEASmaaRanks(rootCtx, p.Hierarchical, cfg.Node, opts)
		}
	case schema.ImpreciseVDEAModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.ImpreciseVDEASmaaEfficiency(rootCtx, p.ImpreciseVDEA, opts)
		case schema.DistanceIndicator:
			return core.ImpreciseVDEASmaaDistance(rootCtx, p.ImpreciseVDEA, opts)
		case schema.RankIndicator:
			return core.ImpreciseVDEASmaaRanks(rootCtx, p.ImpreciseVDEA, opts)
		}
	case schema.ImpreciseCCRModel:
		switch indicator {
		case schema.EfficiencyIndicator:
			return core.ImpreciseCCRSmaaEfficiency(rootCtx, p.ImpreciseCCR, opts)
		case schema.RankIndicator:
			return core.ImpreciseCCRSmaaRanks(rootCtx, p.ImpreciseCCR, opts)
		}
	}
	return nil, fmt.Errorf("indicator %s is not supported for model %s", indicator, p.Model)
}

// peoiCmd estimates pairwise efficiency outranking indices.
var peoiCmd = &cobra.Command{
	Use:     "peoi <problem.json>",
	Short:   "Estimate pairwise efficiency outranking indices",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		p, err := loadProblem(args)
		if err != nil {
			return err
		}
		opts := cfg.driverOptions()
		var res *schema.PEOIResult
		switch p.Model {
		case schema.CCRModel:
			res, err = core.CCRSmaaPreferenceRelations(rootCtx, p.CCR, opts)
		case schema.VDEAModel:
			res, err = core.VDEASmaaPreferenceRelations(rootCtx, p.VDEA, opts)
		case schema.HierarchicalVDEAModel:
			res, err = core.HierarchicalVDEASmaaPreferenceRelations(rootCtx, p.Hierarchical, cfg.Node, opts)
		case schema.ImpreciseVDEAModel:
			res, err = core.ImpreciseVDEASmaaPreferenceRelations(rootCtx, p.ImpreciseVDEA, opts)
		case schema.ImpreciseCCRModel:
			res, err = core.ImpreciseCCRSmaaPreferenceRelations(rootCtx, p.ImpreciseCCR, opts)
		}
		if err != nil {
			return err
		}
		return outwriter.PrintPEOI("Pairwise efficiency outranking indices:", p.UnitNames(), res, cfg.writerConfig())
	},
}

func init() {
	efficiencyCmd.Flags().Bool("super", false, "Also compute super-efficiencies (ratio models)")
	smaaCmd.Flags().String("indicator", string(schema.EfficiencyIndicator), "Indicator: efficiency, distance or rank")
	_ = viper.BindPFlag("super", efficiencyCmd.Flags().Lookup("super"))
	_ = viper.BindPFlag("indicator", smaaCmd.Flags().Lookup("indicator"))

	rootCmd.AddCommand(efficiencyCmd, distanceCmd, ranksCmd, preferencesCmd, smaaCmd, peoiCmd)
}
