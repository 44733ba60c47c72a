package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-hoop-metrics/internal/aggregator"
	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/storage"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the four player profile tables from the stored shots",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.CountShots(storage.ShotFilter{})
	if err != nil {
		return fmt.Errorf("count shots: %w", err)
	}
	if n == 0 {
		fmt.Fprintln(os.Stdout, "No shots stored yet. Run 'hoopmetrics ingest <dir>' first.")
		return nil
	}
	return buildAndReport(cmd.Context(), db)
}

// rebuildProfiles aggregates the stored shots and swaps the result into
// storage. Profiles are always built from what storage holds, so ingest and
// build agree on the rounded coordinates.
func rebuildProfiles(ctx context.Context, db *storage.DB, workers int) (model.ProfileSet, error) {
	shots, err := db.QueryShots(storage.ShotFilter{})
	if err != nil {
		return model.ProfileSet{}, fmt.Errorf("load shots: %w", err)
	}
	set, err := aggregator.BuildAll(ctx, shots, workers)
	if err != nil {
		return model.ProfileSet{}, err
	}
	if set.Generation, err = db.ReplaceProfiles(set); err != nil {
		return model.ProfileSet{}, fmt.Errorf("store profiles: %w", err)
	}
	return set, nil
}

func buildAndReport(ctx context.Context, db *storage.DB) error {
	start := time.Now()
	set, err := rebuildProfiles(ctx, db, cfg.Workers)
	if err != nil {
		return err
	}
	logger.Info("profiles rebuilt", zap.String("generation", set.Generation), zap.Duration("elapsed", time.Since(start)))

	fmt.Fprintf(os.Stdout, "\nProfiles rebuilt (generation %s)\n", set.Generation)
	for _, g := range model.Granularities {
		fmt.Fprintf(os.Stdout, "  %-18s %6d\n", g, set.Table(g).Len())
	}
	return nil
}
