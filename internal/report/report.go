package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-hoop-metrics/internal/aggregator"
	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/parser"
	"github.com/pable/go-hoop-metrics/internal/similarity"
	"github.com/pable/go-hoop-metrics/internal/zone"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintRawTable prints untyped query results, one header per column.
func PrintRawTable(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
}

// keyHeader returns the key columns shown for granularity g.
func keyHeader(g model.Granularity) []any {
	h := []any{"PLAYER"}
	if g.HasTeam() {
		h = append(h, "TEAM")
	}
	if g.HasYear() {
		h = append(h, "YEAR")
	}
	return h
}

func keyCells(g model.Granularity, k model.ProfileKey) []any {
	c := []any{k.Player}
	if g.HasTeam() {
		c = append(c, k.Team)
	}
	if g.HasYear() {
		c = append(c, strconv.Itoa(k.Year))
	}
	return c
}

// PrintProfileTable prints one row per profile.
// If focus is non-nil, that profile's row is marked with ">".
func PrintProfileTable(w io.Writer, g model.Granularity, profiles []model.PlayerProfile, focus *model.ProfileKey) {
	table := newTable(w)

	header := append([]any{" "}, keyHeader(g)...)
	header = append(header, "SHOTS", "MAKES", "FG%", "AVG_DIST", "AVG_X", "Q1", "Q2", "Q3", "Q4", "TOP_Q")
	table.Header(header...)

	for _, p := range profiles {
		marker := " "
		if focus != nil && focus.Project(g) == p.Key {
			marker = ">"
		}
		row := append([]any{marker}, keyCells(g, p.Key)...)
		row = append(row,
			strconv.Itoa(p.Shots),
			strconv.Itoa(p.Makes),
			fmt.Sprintf("%.1f%%", p.Accuracy*100),
			fmt.Sprintf("%.1f", p.AvgDistance),
			fmt.Sprintf("%.1f", p.AvgShotX),
			strconv.Itoa(p.QuarterMakes[0]),
			strconv.Itoa(p.QuarterMakes[1]),
			strconv.Itoa(p.QuarterMakes[2]),
			strconv.Itoa(p.QuarterMakes[3]),
			strconv.Itoa(p.TopQuarter),
		)
		table.Append(row...)
	}
	table.Render()
}

// PrintProfileCard prints the four similarity features of one profile.
func PrintProfileCard(w io.Writer, g model.Granularity, p model.PlayerProfile) {
	fmt.Fprintf(w, "\n%s  (%s)\n", p.Key, g)
	fmt.Fprintf(w, "  Shots:        %d (%d made)\n", p.Shots, p.Makes)
	fmt.Fprintf(w, "  Accuracy:     %.1f%%\n", p.Accuracy*100)
	fmt.Fprintf(w, "  Avg distance: %.1f ft\n", p.AvgDistance)
	fmt.Fprintf(w, "  Avg shot x:   %.1f\n", p.AvgShotX)
	fmt.Fprintf(w, "  Top quarter:  Q%d  (makes by quarter: %d / %d / %d / %d)\n\n",
		p.TopQuarter, p.QuarterMakes[0], p.QuarterMakes[1], p.QuarterMakes[2], p.QuarterMakes[3])
}

// PrintSimilarTable prints ranked neighbours of query. The feature columns
// show raw (unstandardized) profile values.
func PrintSimilarTable(w io.Writer, g model.Granularity, query model.PlayerProfile, features model.FeatureSet, results []similarity.Result, farthest bool) {
	direction := "Most similar to"
	if farthest {
		direction = "Least similar to"
	}
	fmt.Fprintf(w, "\n%s %s  (%s; features: %s)\n\n", direction, query.Key, g, features)

	table := newTable(w)
	fs := features.Features()
	header := append([]any{"#"}, keyHeader(g)...)
	header = append(header, "DISTANCE")
	for _, f := range fs {
		header = append(header, f.String())
	}
	table.Header(header...)

	for i, r := range results {
		row := append([]any{strconv.Itoa(i + 1)}, keyCells(g, r.Key)...)
		row = append(row, fmt.Sprintf("%.3f", r.Distance))
		for _, f := range fs {
			row = append(row, formatFeature(f, r.Profile))
		}
		table.Append(row...)
	}
	table.Render()
}

func formatFeature(f model.Feature, p model.PlayerProfile) string {
	switch f {
	case model.FeatureAccuracy:
		return fmt.Sprintf("%.1f%%", p.Accuracy*100)
	case model.FeatureTopQuarter:
		return "Q" + strconv.Itoa(p.TopQuarter)
	default:
		return fmt.Sprintf("%.1f", f.Value(p))
	}
}

// PrintZoneTable prints attempts and FG% per court zone with a 95% Wilson
// interval and a sample-size flag.
func PrintZoneTable(w io.Writer, stats []aggregator.ZoneStat) {
	table := newTable(w)
	table.Header("ZONE", "NAME", "ATT", "MADE", "FG%", "95% CI", "SAMPLE")
	for _, s := range stats {
		lo, hi := wilsonCI(s.Makes, s.Attempts)
		table.Append(
			strconv.Itoa(s.Zone),
			zone.Name(s.Zone),
			strconv.Itoa(s.Attempts),
			strconv.Itoa(s.Makes),
			fmt.Sprintf("%.1f%%", s.FGPct),
			fmt.Sprintf("%.0f-%.0f%%", lo*100, hi*100),
			sampleFlag(s.Attempts),
		)
	}
	table.Render()
}

// PrintDistanceTable prints FG% per (distance, shot type).
func PrintDistanceTable(w io.Writer, buckets []aggregator.DistanceBucket) {
	table := newTable(w)
	table.Header("DIST", "TYPE", "ATT", "MADE", "FG%", "SAMPLE")
	for _, b := range buckets {
		table.Append(
			strconv.FormatFloat(b.Distance, 'f', -1, 64),
			strconv.Itoa(b.ShotType)+"PT",
			strconv.Itoa(b.Attempts),
			strconv.Itoa(b.Makes),
			fmt.Sprintf("%.1f%%", b.FGPct),
			sampleFlag(b.Attempts),
		)
	}
	table.Render()
}

// PrintTrendTable prints the daily FG% and rolling mean of one shot type.
func PrintTrendTable(w io.Writer, s aggregator.MovingAverageSeries) {
	fmt.Fprintf(w, "\n%d-point FG%%  (%d-day rolling mean, season average %.1f%%)\n\n",
		s.ShotType, s.Window, s.Average)
	if len(s.Points) == 0 {
		fmt.Fprintln(w, "  (no shots)")
		return
	}
	table := newTable(w)
	table.Header("DATE", "ATT", "MADE", "FG%", "ROLLING", "VS AVG")
	for _, p := range s.Points {
		rolling, vs := "—", ""
		if p.HasValue {
			rolling = fmt.Sprintf("%.1f%%", p.Rolling)
			vs = "below"
			if p.Above {
				vs = "above"
			}
		}
		table.Append(
			p.Date.Format(model.DateLayout),
			strconv.Itoa(p.Attempts),
			strconv.Itoa(p.Makes),
			fmt.Sprintf("%.1f%%", p.FGPct),
			rolling,
			vs,
		)
	}
	table.Render()
}

// PrintNormalizeStats prints the per-zone counts of an ingested batch.
func PrintNormalizeStats(w io.Writer, st parser.NormalizeStats) {
	fmt.Fprintf(w, "Rows: %d  |  Kept: %d  |  Skipped (header artifacts): %d\n", st.Rows, st.Kept, st.Skipped)
	table := newTable(w)
	table.Header("ZONE", "NAME", "SHOTS", "SHARE")
	for id, n := range st.ByZone {
		if n == 0 {
			continue
		}
		share := 0.0
		if st.Kept > 0 {
			share = float64(n) / float64(st.Kept) * 100
		}
		table.Append(strconv.Itoa(id), zone.Name(id), strconv.Itoa(n), fmt.Sprintf("%.1f%%", share))
	}
	table.Render()
}

func sampleFlag(n int) string {
	switch {
	case n >= 50:
		return "OK"
	case n >= 20:
		return "LOW"
	default:
		return "VERY_LOW"
	}
}

// wilsonCI computes the 95% Wilson score confidence interval for a proportion.
// Returns (lo, hi) as fractions in [0, 1].
func wilsonCI(hits, n int) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	z := 1.96
	p := float64(hits) / float64(n)
	nf := float64(n)
	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom
	return math.Max(0, center-half), math.Min(1, center+half)
}
