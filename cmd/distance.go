package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/aggregator"
	"github.com/pable/go-hoop-metrics/internal/report"
)

var distanceFilter shotFilterFlags

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "FG% by shot distance and shot type",
	Args:  cobra.NoArgs,
	RunE:  runDistance,
}

func init() {
	distanceFilter.register(distanceCmd)
}

func runDistance(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	shots, err := db.QueryShots(distanceFilter.filter())
	if err != nil {
		return fmt.Errorf("query shots: %w", err)
	}
	if len(shots) == 0 {
		fmt.Fprintln(os.Stdout, "no shots found")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n--- DISTANCE: %s (%d shots) ---\n", distanceFilter.label(), len(shots))
	report.PrintDistanceTable(os.Stdout, aggregator.DistanceAccuracy(shots))
	return nil
}
