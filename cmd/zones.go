package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/aggregator"
	"github.com/pable/go-hoop-metrics/internal/report"
)

var zonesFilter shotFilterFlags

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Attempts, makes and FG% per court zone",
	Args:  cobra.NoArgs,
	RunE:  runZones,
}

func init() {
	zonesFilter.register(zonesCmd)
}

func runZones(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	shots, err := db.QueryShots(zonesFilter.filter())
	if err != nil {
		return fmt.Errorf("query shots: %w", err)
	}
	if len(shots) == 0 {
		fmt.Fprintln(os.Stdout, "no shots found")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n--- ZONES: %s (%d shots) ---\n", zonesFilter.label(), len(shots))
	report.PrintZoneTable(os.Stdout, aggregator.ZoneBreakdown(shots))
	return nil
}
