package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/aggregator"
	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/report"
	"github.com/pable/go-hoop-metrics/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about the stored shots: total shot count,
date and season range, distinct players and teams, profile rows per
granularity and the league-wide zone breakdown.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	return printSummary(db)
}

func printSummary(db *storage.DB) error {
	ov, err := db.Overview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Shots == 0 {
		fmt.Fprintln(os.Stdout, "No shots stored yet. Run 'hoopmetrics ingest <dir>' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Shots stored  : %d\n", ov.Shots)
	fmt.Fprintf(os.Stdout, "  Date range    : %s → %s\n", ov.FirstDate, ov.LastDate)
	fmt.Fprintf(os.Stdout, "  Seasons       : %d → %d\n", ov.MinYear, ov.MaxYear)
	fmt.Fprintf(os.Stdout, "  Players seen  : %d\n", ov.Players)
	fmt.Fprintf(os.Stdout, "  Teams seen    : %d\n", ov.Teams)

	fmt.Fprintf(os.Stdout, "\n--- Profiles ---\n\n")
	if ov.Generation == "" {
		fmt.Fprintln(os.Stdout, "  not built yet, run 'hoopmetrics build'")
	} else {
		fmt.Fprintf(os.Stdout, "  Generation    : %s\n", ov.Generation)
		fmt.Fprintf(os.Stdout, "  Built at      : %s\n\n", ov.BuiltAt)
		pt := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
		}))
		pt.Header("GRANULARITY", "PROFILES")
		for _, g := range model.Granularities {
			pt.Append(g.String(), fmt.Sprintf("%d", ov.Profiles[g]))
		}
		pt.Render()
	}

	shots, err := db.QueryShots(storage.ShotFilter{})
	if err != nil {
		return fmt.Errorf("query shots: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Zones ---\n")
	report.PrintZoneTable(os.Stdout, aggregator.ZoneBreakdown(shots))
	return nil
}
