package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/aggregator"
	"github.com/pable/go-hoop-metrics/internal/report"
)

var (
	trendFilter   shotFilterFlags
	trendShotType int
	trendWindow   int
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Daily FG% with a trailing moving average",
	Long: `Compute the FG% of every game day and a moving average over the trailing
--window observed days. Days whose rolling value is at or above the series
average are marked. Without --type both 2- and 3-point series are shown.`,
	Args: cobra.NoArgs,
	RunE: runTrend,
}

func init() {
	trendFilter.register(trendCmd)
	trendCmd.Flags().IntVar(&trendShotType, "type", 0, "shot type: 2 or 3 (default both)")
	trendCmd.Flags().IntVar(&trendWindow, "window", aggregator.DefaultWindow, "moving-average window in game days")
}

func runTrend(cmd *cobra.Command, args []string) error {
	types := []int{2, 3}
	switch trendShotType {
	case 0:
	case 2, 3:
		types = []int{trendShotType}
	default:
		return fmt.Errorf("invalid --type %d: must be 2 or 3", trendShotType)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	shots, err := db.QueryShots(trendFilter.filter())
	if err != nil {
		return fmt.Errorf("query shots: %w", err)
	}
	if len(shots) == 0 {
		fmt.Println("no shots found")
		return nil
	}

	for _, t := range types {
		fmt.Fprintf(os.Stdout, "\n--- %d-PT TREND: %s ---\n", t, trendFilter.label())
		report.PrintTrendTable(os.Stdout, aggregator.MovingAverage(shots, t, trendWindow))
	}
	return nil
}
