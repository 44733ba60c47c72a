package similarity

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pable/go-hoop-metrics/internal/model"
)

func profile(player, team string, year int, acc, dist, x float64, top int) model.PlayerProfile {
	return model.PlayerProfile{
		Key:         model.ProfileKey{Player: player, Team: team, Year: year},
		Shots:       10,
		Accuracy:    acc,
		AvgDistance: dist,
		AvgShotX:    x,
		TopQuarter:  top,
	}
}

func overallTable() model.ProfileTable {
	return model.NewProfileTable(model.Overall, []model.PlayerProfile{
		profile("D", "", 0, 0.40, 18, 30, 2),
		profile("A", "", 0, 0.50, 10, 25, 1),
		profile("B", "", 0, 0.52, 11, 26, 1),
		profile("C", "", 0, 0.30, 24, 10, 4),
		profile("E", "", 0, 0.50, 10, 25, 1), // same features as A
	})
}

func teamYearTable() model.ProfileTable {
	return model.NewProfileTable(model.ByTeamAndYear, []model.PlayerProfile{
		profile("A", "BOS", 2022, 0.50, 10, 25, 1),
		profile("B", "BOS", 2022, 0.52, 11, 26, 1),
		profile("C", "NYK", 2022, 0.51, 10, 25, 1),
		profile("D", "BOS", 2023, 0.30, 24, 10, 4),
		profile("E", "NYK", 2023, 0.49, 10, 24, 1),
	})
}

func testSet() model.ProfileSet {
	return model.ProfileSet{
		Generation: "gen-1",
		Tables: map[model.Granularity]model.ProfileTable{
			model.Overall:       overallTable(),
			model.ByTeamAndYear: teamYearTable(),
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	e := NewEngine(zaptest.NewLogger(t))
	e.Load(testSet())
	return e
}

// ---- Standardization ----

func TestStandardizeZeroVariance(t *testing.T) {
	rows := [][]float64{{0.1, 1}, {0.1, 2}, {0.1, 3}}
	z := Standardize(rows)
	for i := range z {
		require.Equal(t, 0.0, z[i][0], "row %d", i)
	}
	require.InDelta(t, -math.Sqrt(1.5), z[0][1], 1e-12)
	require.InDelta(t, 0, z[1][1], 1e-12)
	require.InDelta(t, math.Sqrt(1.5), z[2][1], 1e-12)
}

func TestStandardizeEmpty(t *testing.T) {
	require.Empty(t, Standardize(nil))
}

// ---- Matrix ----

func TestComputeSymmetricZeroDiagonal(t *testing.T) {
	m, err := Compute(overallTable(), model.AllFeatures)
	require.NoError(t, err)
	require.Equal(t, 5, m.Len())
	for i := 0; i < m.Len(); i++ {
		require.Equal(t, 0.0, m.At(i, i))
		for j := 0; j < m.Len(); j++ {
			require.Equal(t, m.At(i, j), m.At(j, i))
			require.GreaterOrEqual(t, m.At(i, j), 0.0)
		}
	}
	d, err := m.Distance(model.ProfileKey{Player: "A"}, model.ProfileKey{Player: "E"})
	require.NoError(t, err)
	require.Equal(t, 0.0, d)
}

func TestComputeEmptyFeatures(t *testing.T) {
	_, err := Compute(overallTable(), 0)
	var iq *model.InvalidQueryError
	require.True(t, errors.As(err, &iq))
}

func TestMatrixDistanceUnknownKey(t *testing.T) {
	m, err := Compute(overallTable(), model.AllFeatures)
	require.NoError(t, err)
	_, err = m.Distance(model.ProfileKey{Player: "A"}, model.ProfileKey{Player: "Z"})
	var nf *model.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "Z", nf.Key.Player)
}

func TestMatrixKeysInTableOrder(t *testing.T) {
	m, err := Compute(overallTable(), model.NewFeatureSet(model.FeatureAccuracy))
	require.NoError(t, err)
	keys := m.Keys()
	require.Len(t, keys, 5)
	require.Equal(t, "A", keys[0].Player)
	require.Equal(t, "E", keys[4].Player)
}

// ---- Cache ----

func TestMatrixCachedAcrossSubsetOrder(t *testing.T) {
	e := newTestEngine(t)
	first, err := e.Matrix(model.Overall, model.NewFeatureSet(model.FeatureAvgShotX, model.FeatureAccuracy))
	require.NoError(t, err)
	require.EqualValues(t, 1, e.Computations())

	second, err := e.Matrix(model.Overall, model.NewFeatureSet(model.FeatureAccuracy, model.FeatureAvgShotX))
	require.NoError(t, err)
	require.EqualValues(t, 1, e.Computations())
	require.Same(t, first, second)
	require.Equal(t, 1, e.CacheSize())

	_, err = e.Matrix(model.ByTeamAndYear, model.NewFeatureSet(model.FeatureAccuracy, model.FeatureAvgShotX))
	require.NoError(t, err)
	require.EqualValues(t, 2, e.Computations())
}

func TestMatrixConcurrentFirstBuildCollapses(t *testing.T) {
	e := newTestEngine(t)
	var wg sync.WaitGroup
	results := make([]*Matrix, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := e.Matrix(model.Overall, model.AllFeatures)
			if err == nil {
				results[i] = m
			}
		}(i)
	}
	wg.Wait()
	require.EqualValues(t, 1, e.Computations())
	for _, m := range results {
		require.Same(t, results[0], m)
	}
}

func TestInvalidateRecomputes(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Matrix(model.Overall, model.AllFeatures)
	require.NoError(t, err)
	e.Invalidate()
	require.Equal(t, 0, e.CacheSize())
	require.Equal(t, "gen-1", e.Generation())
	_, err = e.Matrix(model.Overall, model.AllFeatures)
	require.NoError(t, err)
	require.EqualValues(t, 2, e.Computations())
}

type fakeSource struct {
	gen   string
	loads int
}

func (f *fakeSource) ProfileGeneration() (string, error) { return f.gen, nil }

func (f *fakeSource) LoadProfiles() (model.ProfileSet, error) {
	f.loads++
	set := testSet()
	set.Generation = f.gen
	return set, nil
}

func TestRefreshOnlyOnGenerationChange(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Matrix(model.Overall, model.AllFeatures)
	require.NoError(t, err)

	src := &fakeSource{gen: "gen-1"}
	reloaded, err := e.Refresh(src)
	require.NoError(t, err)
	require.False(t, reloaded)
	require.Equal(t, 0, src.loads)
	require.Equal(t, 1, e.CacheSize())

	src.gen = "gen-2"
	reloaded, err = e.Refresh(src)
	require.NoError(t, err)
	require.True(t, reloaded)
	require.Equal(t, "gen-2", e.Generation())
	require.Equal(t, 0, e.CacheSize())
}

// ---- Queries ----

func TestTopKExcludesSelf(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.TopK(Query{Key: model.ProfileKey{Player: "A"}, K: 10, Granularity: model.Overall, Features: model.AllFeatures})
	require.NoError(t, err)
	require.Len(t, res, 4)
	for _, r := range res {
		require.NotEqual(t, "A", r.Key.Player)
	}
	// E is identical to A, then B is the nearest distinct profile.
	require.Equal(t, "E", res[0].Key.Player)
	require.Equal(t, 0.0, res[0].Distance)
	require.Equal(t, "B", res[1].Key.Player)
	require.Equal(t, "C", res[3].Key.Player)
}

func TestBottomKFarthest(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.BottomK(Query{Key: model.ProfileKey{Player: "A"}, K: 1, Granularity: model.Overall, Features: model.AllFeatures})
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, "C", res[0].Key.Player)
}

func TestTopKTiesKeepTableOrder(t *testing.T) {
	e := newTestEngine(t)
	// On top_quarter alone B and E tie with distance 0 from A.
	res, err := e.TopK(Query{Key: model.ProfileKey{Player: "A"}, K: 2, Granularity: model.Overall,
		Features: model.NewFeatureSet(model.FeatureTopQuarter)})
	require.NoError(t, err)
	require.Equal(t, "B", res[0].Key.Player)
	require.Equal(t, "E", res[1].Key.Player)
}

func TestFiltersDoNotChangeDistances(t *testing.T) {
	e := newTestEngine(t)
	key := model.ProfileKey{Player: "A", Team: "BOS", Year: 2022}
	all, err := e.TopK(Query{Key: key, K: 10, Granularity: model.ByTeamAndYear, Features: model.AllFeatures})
	require.NoError(t, err)
	byKey := make(map[model.ProfileKey]float64)
	for _, r := range all {
		byKey[r.Key] = r.Distance
	}

	same, err := e.TopK(Query{Key: key, K: 10, Granularity: model.ByTeamAndYear, Features: model.AllFeatures,
		Filter: Filter{SameTeam: true}})
	require.NoError(t, err)
	require.Len(t, same, 2) // B and D play for BOS
	for _, r := range same {
		require.Equal(t, "BOS", r.Key.Team)
		require.Equal(t, byKey[r.Key], r.Distance)
	}

	year, err := e.TopK(Query{Key: key, K: 10, Granularity: model.ByTeamAndYear, Features: model.AllFeatures,
		Filter: Filter{Year: 2023}})
	require.NoError(t, err)
	require.Len(t, year, 2)
	for _, r := range year {
		require.Equal(t, 2023, r.Key.Year)
		require.Equal(t, byKey[r.Key], r.Distance)
	}
}

func TestQueryErrors(t *testing.T) {
	e := newTestEngine(t)
	var iq *model.InvalidQueryError
	var nf *model.NotFoundError

	_, err := e.TopK(Query{Key: model.ProfileKey{Player: "A"}, K: 3, Granularity: model.Overall})
	require.True(t, errors.As(err, &iq), "empty features")

	_, err = e.TopK(Query{Key: model.ProfileKey{Player: "A"}, K: 0, Granularity: model.Overall, Features: model.AllFeatures})
	require.True(t, errors.As(err, &iq), "zero k")

	_, err = e.TopK(Query{Key: model.ProfileKey{Player: "A"}, K: 3, Granularity: model.Overall, Features: model.AllFeatures,
		Filter: Filter{SameTeam: true}})
	require.True(t, errors.As(err, &iq), "team filter on overall")

	_, err = e.TopK(Query{Key: model.ProfileKey{Player: "Z"}, K: 3, Granularity: model.Overall, Features: model.AllFeatures})
	require.True(t, errors.As(err, &nf), "unknown key")

	_, err = e.Profile(model.ProfileKey{Player: "A", Team: "NYK", Year: 2022}, model.ByTeamAndYear)
	require.True(t, errors.As(err, &nf), "unknown team-year key")
	require.EqualValues(t, 0, e.Computations())
}

func TestProfileProjectsKey(t *testing.T) {
	e := newTestEngine(t)
	p, err := e.Profile(model.ProfileKey{Player: "B", Team: "ignored", Year: 1999}, model.Overall)
	require.NoError(t, err)
	require.Equal(t, 0.52, p.Accuracy)
}
