package cmd

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/storage"
)

func openMemStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRebuildProfilesUsesStoredCoordinates(t *testing.T) {
	db := openMemStore(t)
	shot := model.CanonicalShot{
		Date:         time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Year:         2023,
		MatchID:      "20230115BOS",
		GameLocation: "BOS",
		ShotX:        9.96,
		ShotY:        20.04,
		Quarter:      1,
		Player:       "Jayson Tatum",
		Team:         "BOS",
		Made:         true,
		Distance:     12,
		ShotType:     2,
		Zone:         9,
	}
	if err := db.ReplaceShots([]model.CanonicalShot{shot}); err != nil {
		t.Fatalf("ReplaceShots: %v", err)
	}

	// Ingest and build both rebuild through the store.
	first, err := rebuildProfiles(context.Background(), db, 2)
	if err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	second, err := rebuildProfiles(context.Background(), db, 2)
	if err != nil {
		t.Fatalf("second rebuild: %v", err)
	}

	for _, g := range model.Granularities {
		a, b := first.Table(g), second.Table(g)
		if a.Len() != 1 || b.Len() != 1 {
			t.Fatalf("%s: lens %d and %d, want 1", g, a.Len(), b.Len())
		}
		if a.Profiles[0] != b.Profiles[0] {
			t.Errorf("%s: rebuilds differ: %+v vs %+v", g, a.Profiles[0], b.Profiles[0])
		}
		if math.Abs(a.Profiles[0].AvgShotX-10.0) > 1e-9 {
			t.Errorf("%s: avg_shot_x = %v, want the stored 10.0", g, a.Profiles[0].AvgShotX)
		}
	}

	stored, err := db.LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if stored.Generation != second.Generation {
		t.Errorf("stored generation %q, want %q", stored.Generation, second.Generation)
	}
	if stored.Generation == first.Generation {
		t.Error("each rebuild should stamp a new generation")
	}
}
