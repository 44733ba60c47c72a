package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"

	"github.com/pable/go-hoop-metrics/internal/model"
)

// profileAccum collects running totals for one grouping key.
type profileAccum struct {
	shots, makes  int
	distSum, xSum float64
	quarterMakes  [4]int
}

// Build computes the profile table for granularity g from a canonical shot set.
func Build(shots []model.CanonicalShot, g model.Granularity) model.ProfileTable {
	// ---- Pass 1: accumulate per grouping key. ----
	accums := make(map[model.ProfileKey]*profileAccum)
	for i := range shots {
		s := &shots[i]
		k := model.KeyFor(g, *s)
		acc := accums[k]
		if acc == nil {
			acc = &profileAccum{}
			accums[k] = acc
		}
		acc.shots++
		acc.distSum += s.Distance
		acc.xSum += s.ShotX
		if !s.Made {
			continue
		}
		acc.makes++
		// Overtime periods count toward accuracy but never toward a quarter bucket.
		if s.Quarter >= 1 && s.Quarter <= 4 {
			acc.quarterMakes[s.Quarter-1]++
		}
	}

	// ---- Pass 2: roll up into profiles. ----
	profiles := make([]model.PlayerProfile, 0, len(accums))
	for k, acc := range accums {
		n := float64(acc.shots)
		profiles = append(profiles, model.PlayerProfile{
			Key:          k,
			Shots:        acc.shots,
			Makes:        acc.makes,
			AvgDistance:  acc.distSum / n,
			AvgShotX:     acc.xSum / n,
			Accuracy:     float64(acc.makes) / n,
			QuarterMakes: acc.quarterMakes,
			TopQuarter:   TopQuarter(acc.quarterMakes),
		})
	}
	return model.NewProfileTable(g, profiles)
}

// TopQuarter returns the 1-indexed quarter with the most makes. The lowest
// quarter wins ties, so all-zero input yields 1.
func TopQuarter(makes [4]int) int {
	best := 0
	for q := 1; q < len(makes); q++ {
		if makes[q] > makes[best] {
			best = q
		}
	}
	return best + 1
}

// BuildAll computes all four profile tables concurrently. Each table is
// derived independently from the same shot set. The returned set carries a
// fresh generation id.
func BuildAll(ctx context.Context, shots []model.CanonicalShot, workers int) (model.ProfileSet, error) {
	if workers <= 0 {
		workers = len(model.Granularities)
	}
	pool := pond.NewPool(workers, pond.WithQueueSize(len(model.Granularities)))
	defer pool.StopAndWait()

	tables := make([]model.ProfileTable, len(model.Granularities))
	group := pool.NewGroupContext(ctx)
	for i, g := range model.Granularities {
		i, g := i, g
		group.Submit(func() {
			tables[i] = Build(shots, g)
		})
	}
	if err := group.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, pond.ErrGroupStopped) {
			return model.ProfileSet{}, fmt.Errorf("build profiles: %w", ctx.Err())
		}
		return model.ProfileSet{}, fmt.Errorf("build profiles: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return model.ProfileSet{}, fmt.Errorf("build profiles: %w", err)
	}

	set := model.ProfileSet{
		Generation: uuid.NewString(),
		Tables:     make(map[model.Granularity]model.ProfileTable, len(tables)),
	}
	for i, g := range model.Granularities {
		set.Tables[g] = tables[i]
	}
	return set, nil
}

// PlayerTotals is one player's totals summed out of a finer table.
type PlayerTotals struct {
	Shots        int
	Makes        int
	QuarterMakes [4]int
}

// Collapse sums a table down to per-player totals. Any two tables built from
// the same shot set collapse to the same result.
func Collapse(t model.ProfileTable) map[string]PlayerTotals {
	out := make(map[string]PlayerTotals)
	for _, p := range t.Profiles {
		tot := out[p.Key.Player]
		tot.Shots += p.Shots
		tot.Makes += p.Makes
		for q := range tot.QuarterMakes {
			tot.QuarterMakes[q] += p.QuarterMakes[q]
		}
		out[p.Key.Player] = tot
	}
	return out
}

// ---- Shot analytics ----

// ZoneStat is the attempt/make count for one court zone.
type ZoneStat struct {
	Zone     int
	Attempts int
	Makes    int
	FGPct    float64 // 0-100
}

// ZoneBreakdown counts attempts and makes per zone id. Only zones with at
// least one attempt are returned, in ascending zone order.
func ZoneBreakdown(shots []model.CanonicalShot) []ZoneStat {
	byZone := make(map[int]*ZoneStat)
	for _, s := range shots {
		zs := byZone[s.Zone]
		if zs == nil {
			zs = &ZoneStat{Zone: s.Zone}
			byZone[s.Zone] = zs
		}
		zs.Attempts++
		if s.Made {
			zs.Makes++
		}
	}
	out := make([]ZoneStat, 0, len(byZone))
	for _, zs := range byZone {
		zs.FGPct = pct(zs.Makes, zs.Attempts)
		out = append(out, *zs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Zone < out[j].Zone })
	return out
}

// DistanceBucket is the FG% for one (distance, shot type) pair.
type DistanceBucket struct {
	Distance float64
	ShotType int
	Attempts int
	Makes    int
	FGPct    float64 // 0-100
}

// DistanceAccuracy groups shots by exact distance and shot type, sorted by
// ascending distance then shot type.
func DistanceAccuracy(shots []model.CanonicalShot) []DistanceBucket {
	type bucketKey struct {
		dist     float64
		shotType int
	}
	buckets := make(map[bucketKey]*DistanceBucket)
	for _, s := range shots {
		k := bucketKey{s.Distance, s.ShotType}
		b := buckets[k]
		if b == nil {
			b = &DistanceBucket{Distance: s.Distance, ShotType: s.ShotType}
			buckets[k] = b
		}
		b.Attempts++
		if s.Made {
			b.Makes++
		}
	}
	out := make([]DistanceBucket, 0, len(buckets))
	for _, b := range buckets {
		b.FGPct = pct(b.Makes, b.Attempts)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ShotType < out[j].ShotType
	})
	return out
}

// DefaultWindow is the trailing window, in observed days, of MovingAverage.
const DefaultWindow = 3

// TrendPoint is one game day in a moving-average series.
type TrendPoint struct {
	Date     time.Time
	Attempts int
	Makes    int
	FGPct    float64 // daily FG%, 0-100
	Rolling  float64 // trailing mean of FGPct; valid only when HasValue
	HasValue bool
	Above    bool // Rolling > series average
}

// MovingAverageSeries is the daily FG% trend for one shot type.
type MovingAverageSeries struct {
	ShotType int
	Window   int
	Average  float64 // FG% over every shot in the series
	Points   []TrendPoint
}

// MovingAverage computes daily FG% for shotType and a trailing rolling mean
// over window observed days. The first window-1 points have no rolling value.
func MovingAverage(shots []model.CanonicalShot, shotType, window int) MovingAverageSeries {
	if window <= 0 {
		window = DefaultWindow
	}
	series := MovingAverageSeries{ShotType: shotType, Window: window}

	byDay := make(map[time.Time]*TrendPoint)
	for _, s := range shots {
		if s.ShotType != shotType {
			continue
		}
		day := s.Date.Truncate(24 * time.Hour)
		p := byDay[day]
		if p == nil {
			p = &TrendPoint{Date: day}
			byDay[day] = p
		}
		p.Attempts++
		if s.Made {
			p.Makes++
		}
	}
	if len(byDay) == 0 {
		return series
	}

	points := make([]TrendPoint, 0, len(byDay))
	for _, p := range byDay {
		p.FGPct = pct(p.Makes, p.Attempts)
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	var attempts, makes int
	var windowSum float64
	for i := range points {
		attempts += points[i].Attempts
		makes += points[i].Makes
		windowSum += points[i].FGPct
		if i >= window {
			windowSum -= points[i-window].FGPct
		}
		if i >= window-1 {
			points[i].Rolling = windowSum / float64(window)
			points[i].HasValue = true
		}
	}
	series.Average = pct(makes, attempts)
	for i := range points {
		points[i].Above = points[i].HasValue && points[i].Rolling > series.Average
	}
	series.Points = points
	return series
}

func pct(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}
