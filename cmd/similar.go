package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/report"
	"github.com/pable/go-hoop-metrics/internal/similarity"
)

var (
	similarKey        keyFlags
	similarK          int
	similarFeatures   string
	similarLeast      bool
	similarSameTeam   bool
	similarSameYear   bool
	similarFilterTeam string
	similarFilterYear int
)

// similarCmd ranks the profiles nearest to (or farthest from) a player.
var similarCmd = &cobra.Command{
	Use:   "similar <player>",
	Short: "Find players with the most (or least) similar shot profile",
	Long: `Standardize the selected features over every profile at the chosen
granularity and rank the others by Euclidean distance to the player.

Features: accuracy, avg_distance, avg_shot_x, top_quarter.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarKey.register(similarCmd)
	similarCmd.Flags().IntVarP(&similarK, "top", "k", 0, "number of results (default $HOOPMETRICS_TOP_K or 5)")
	similarCmd.Flags().StringVar(&similarFeatures, "features", "", "comma-separated features (default $HOOPMETRICS_FEATURES or all)")
	similarCmd.Flags().BoolVar(&similarLeast, "least", false, "rank the farthest profiles instead of the closest")
	similarCmd.Flags().BoolVar(&similarSameTeam, "same-team", false, "only candidates from the player's team")
	similarCmd.Flags().BoolVar(&similarSameYear, "same-year", false, "only candidates from the player's season")
	similarCmd.Flags().StringVar(&similarFilterTeam, "filter-team", "", "only candidates from this team")
	similarCmd.Flags().IntVar(&similarFilterYear, "filter-year", 0, "only candidates from this season year")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	key, g, err := similarKey.resolve(args[0])
	if err != nil {
		return err
	}
	features := cfg.Features
	if similarFeatures != "" {
		if features, err = model.ParseFeatures(similarFeatures); err != nil {
			return err
		}
	}
	k := similarK
	if k == 0 {
		k = cfg.TopK
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := similarity.NewEngine(logger)
	if _, err := engine.Refresh(db); err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	if engine.Table(g).Len() == 0 {
		fmt.Fprintln(os.Stderr, "No profiles stored yet. Run 'hoopmetrics build' first.")
		return nil
	}

	q := similarity.Query{
		Key:         key,
		K:           k,
		Granularity: g,
		Features:    features,
		Filter: similarity.Filter{
			SameTeam: similarSameTeam,
			SameYear: similarSameYear,
			Team:     similarFilterTeam,
			Year:     similarFilterYear,
		},
	}
	return printSimilar(engine, q, similarLeast)
}

// printSimilar runs q against engine and prints the ranked table. Shared with
// the shell so both render identically.
func printSimilar(engine *similarity.Engine, q similarity.Query, farthest bool) error {
	self, err := engine.Profile(q.Key, q.Granularity)
	if err != nil {
		return err
	}
	var results []similarity.Result
	if farthest {
		results, err = engine.BottomK(q)
	} else {
		results, err = engine.TopK(q)
	}
	if err != nil {
		return err
	}
	logger.Debug("similarity query",
		zap.String("key", q.Key.String()),
		zap.Stringer("granularity", q.Granularity),
		zap.Stringer("features", q.Features),
		zap.Int("results", len(results)),
	)
	report.PrintSimilarTable(os.Stdout, q.Granularity, self, q.Features, results, farthest)
	return nil
}
