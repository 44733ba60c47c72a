package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pable/go-hoop-metrics/internal/aggregator"
	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/similarity"
)

func TestPrintProfileTableColumns(t *testing.T) {
	var buf bytes.Buffer
	profiles := []model.PlayerProfile{
		{Key: model.ProfileKey{Player: "Curry", Team: "GSW", Year: 2016}, Shots: 10, Makes: 5, Accuracy: 0.5, TopQuarter: 1},
	}
	focus := model.ProfileKey{Player: "Curry", Team: "GSW", Year: 2016}
	PrintProfileTable(&buf, model.ByTeamAndYear, profiles, &focus)
	out := buf.String()
	for _, want := range []string{"PLAYER", "TEAM", "YEAR", "Curry", "GSW", "2016", "50.0%", ">"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintProfileTable(&buf, model.Overall, profiles, nil)
	if strings.Contains(buf.String(), "TEAM") {
		t.Errorf("overall table should not have a team column:\n%s", buf.String())
	}
}

func TestPrintSimilarTable(t *testing.T) {
	var buf bytes.Buffer
	q := model.PlayerProfile{Key: model.ProfileKey{Player: "A"}}
	results := []similarity.Result{
		{Key: model.ProfileKey{Player: "B"}, Distance: 0.25, Profile: model.PlayerProfile{Accuracy: 0.4, TopQuarter: 2}},
	}
	fs := model.NewFeatureSet(model.FeatureTopQuarter, model.FeatureAccuracy)
	PrintSimilarTable(&buf, model.Overall, q, fs, results, false)
	out := buf.String()
	for _, want := range []string{"Most similar to A", "accuracy,top_quarter", "0.250", "40.0%", "Q2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTrendTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintTrendTable(&buf, aggregator.MovingAverageSeries{ShotType: 3, Window: 3})
	if !strings.Contains(buf.String(), "(no shots)") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	PrintTrendTable(&buf, aggregator.MovingAverageSeries{ShotType: 2, Window: 3, Average: 50, Points: []aggregator.TrendPoint{
		{Date: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), Attempts: 2, Makes: 1, FGPct: 50},
	}})
	if !strings.Contains(buf.String(), "2023-01-15") {
		t.Errorf("missing date:\n%s", buf.String())
	}
}

func TestWilsonCI(t *testing.T) {
	lo, hi := wilsonCI(0, 0)
	if lo != 0 || hi != 1 {
		t.Errorf("empty sample: %v..%v", lo, hi)
	}
	lo, hi = wilsonCI(50, 100)
	if math.Abs(lo-0.4038) > 1e-3 || math.Abs(hi-0.5962) > 1e-3 {
		t.Errorf("50/100: %v..%v", lo, hi)
	}
}

func TestSampleFlag(t *testing.T) {
	if sampleFlag(50) != "OK" || sampleFlag(20) != "LOW" || sampleFlag(3) != "VERY_LOW" {
		t.Error("unexpected sample flags")
	}
}

func TestPrintRawTable(t *testing.T) {
	var buf bytes.Buffer
	PrintRawTable(&buf, []string{"zone", "n"}, [][]string{{"1", "12"}, {"15", "40"}})
	out := buf.String()
	for _, want := range []string{"ZONE", "12", "15", "40"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
