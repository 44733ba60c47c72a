package similarity

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pable/go-hoop-metrics/internal/model"
)

// ProfileSource is the store the engine reloads profile tables from.
type ProfileSource interface {
	ProfileGeneration() (string, error)
	LoadProfiles() (model.ProfileSet, error)
}

type cacheKey struct {
	g        model.Granularity
	features model.FeatureSet
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%d/%d", k.g, k.features)
}

// snapshot is one immutable generation of profile tables together with the
// matrices computed from it.
type snapshot struct {
	generation string
	tables     map[model.Granularity]model.ProfileTable
	matrices   *xsync.Map[cacheKey, *Matrix]
	flight     singleflight.Group
}

func newSnapshot(generation string, tables map[model.Granularity]model.ProfileTable) *snapshot {
	return &snapshot{
		generation: generation,
		tables:     tables,
		matrices:   xsync.NewMap[cacheKey, *Matrix](),
	}
}

func (s *snapshot) table(g model.Granularity) model.ProfileTable {
	if t, ok := s.tables[g]; ok {
		return t
	}
	return model.NewProfileTable(g, nil)
}

// Engine serves similarity queries over the current profile snapshot.
// Queries read the snapshot without locking; Load, Refresh and Invalidate
// swap in a new one.
type Engine struct {
	logger  *zap.Logger
	current atomic.Pointer[snapshot]
	swapMu  sync.Mutex

	computations atomic.Int64
}

// NewEngine returns an engine with an empty snapshot.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{logger: logger}
	e.current.Store(newSnapshot("", nil))
	return e
}

// Load replaces the served profile tables with set. Matrices cached for the
// previous tables are dropped with them.
func (e *Engine) Load(set model.ProfileSet) {
	e.swapMu.Lock()
	defer e.swapMu.Unlock()
	tables := make(map[model.Granularity]model.ProfileTable, len(set.Tables))
	for g, t := range set.Tables {
		tables[g] = t
	}
	e.current.Store(newSnapshot(set.Generation, tables))
	e.logger.Info("profiles loaded",
		zap.String("generation", set.Generation),
		zap.Int("overall", len(set.Table(model.Overall).Profiles)),
	)
}

// Refresh reloads from src when its generation differs from the one being
// served. It reports whether a reload happened.
func (e *Engine) Refresh(src ProfileSource) (bool, error) {
	gen, err := src.ProfileGeneration()
	if err != nil {
		return false, fmt.Errorf("read profile generation: %w", err)
	}
	if gen == e.Generation() {
		return false, nil
	}
	set, err := src.LoadProfiles()
	if err != nil {
		return false, fmt.Errorf("load profiles: %w", err)
	}
	if set.Generation == "" {
		set.Generation = gen
	}
	e.Load(set)
	return true, nil
}

// Invalidate drops every cached matrix while keeping the current tables.
func (e *Engine) Invalidate() {
	e.swapMu.Lock()
	defer e.swapMu.Unlock()
	old := e.current.Load()
	e.current.Store(newSnapshot(old.generation, old.tables))
	e.logger.Debug("similarity cache invalidated", zap.String("generation", old.generation))
}

// Generation returns the generation id of the served tables.
func (e *Engine) Generation() string { return e.current.Load().generation }

// Computations counts matrix computations since the engine was created.
func (e *Engine) Computations() int64 { return e.computations.Load() }

// CacheSize returns the number of matrices cached for the current snapshot.
func (e *Engine) CacheSize() int { return e.current.Load().matrices.Size() }

// Table returns the served profile table for g.
func (e *Engine) Table(g model.Granularity) model.ProfileTable {
	return e.current.Load().table(g)
}

// Profile looks up one profile.
func (e *Engine) Profile(key model.ProfileKey, g model.Granularity) (model.PlayerProfile, error) {
	t := e.current.Load().table(g)
	return t.Get(key)
}

// Matrix returns the distance matrix for (g, features), computing it at most
// once per snapshot. Concurrent first requests for the same key share one
// computation.
func (e *Engine) Matrix(g model.Granularity, features model.FeatureSet) (*Matrix, error) {
	return e.matrix(e.current.Load(), g, features)
}

func (e *Engine) matrix(s *snapshot, g model.Granularity, features model.FeatureSet) (*Matrix, error) {
	if features.Empty() {
		return nil, &model.InvalidQueryError{Reason: "at least one feature is required"}
	}
	key := cacheKey{g: g, features: features & model.AllFeatures}
	if m, ok := s.matrices.Load(key); ok {
		return m, nil
	}
	v, err, _ := s.flight.Do(key.String(), func() (interface{}, error) {
		if m, ok := s.matrices.Load(key); ok {
			return m, nil
		}
		start := time.Now()
		m, err := Compute(s.table(g), key.features)
		if err != nil {
			return nil, err
		}
		e.computations.Add(1)
		s.matrices.Store(key, m)
		e.logger.Debug("similarity matrix computed",
			zap.Stringer("granularity", g),
			zap.Stringer("features", key.features),
			zap.Int("profiles", m.Len()),
			zap.Duration("elapsed", time.Since(start)),
		)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Matrix), nil
}

// Filter restricts which candidates a query may return. SameTeam and SameYear
// are relative to the query key; Team and Year are explicit values.
type Filter struct {
	SameTeam bool
	SameYear bool
	Team     string
	Year     int
}

func (f Filter) usesTeam() bool { return f.SameTeam || f.Team != "" }
func (f Filter) usesYear() bool { return f.SameYear || f.Year != 0 }

func (f Filter) allows(query, cand model.ProfileKey) bool {
	if f.SameTeam && cand.Team != query.Team {
		return false
	}
	if f.SameYear && cand.Year != query.Year {
		return false
	}
	if f.Team != "" && cand.Team != f.Team {
		return false
	}
	if f.Year != 0 && cand.Year != f.Year {
		return false
	}
	return true
}

// Query is a nearest- or farthest-profile request.
type Query struct {
	Key         model.ProfileKey
	K           int
	Granularity model.Granularity
	Features    model.FeatureSet
	Filter      Filter
}

// Result is one ranked neighbour.
type Result struct {
	Key      model.ProfileKey
	Distance float64
	Profile  model.PlayerProfile
}

// TopK returns the K profiles closest to q.Key, excluding q.Key itself. Ties
// keep table order.
func (e *Engine) TopK(q Query) ([]Result, error) {
	return e.rank(q, false)
}

// BottomK returns the K profiles farthest from q.Key.
func (e *Engine) BottomK(q Query) ([]Result, error) {
	return e.rank(q, true)
}

func (e *Engine) rank(q Query, farthest bool) ([]Result, error) {
	if err := validate(q); err != nil {
		return nil, err
	}
	s := e.current.Load()
	table := s.table(q.Granularity)
	self, ok := table.Lookup(q.Key)
	if !ok {
		return nil, &model.NotFoundError{Granularity: q.Granularity, Key: q.Key.Project(q.Granularity)}
	}
	m, err := e.matrix(s, q.Granularity, q.Features)
	if err != nil {
		return nil, err
	}

	queryKey := table.Profiles[self].Key
	results := make([]Result, 0, m.Len())
	for j, p := range table.Profiles {
		if j == self || !q.Filter.allows(queryKey, p.Key) {
			continue
		}
		results = append(results, Result{Key: p.Key, Distance: m.At(self, j), Profile: p})
	}
	sort.SliceStable(results, func(a, b int) bool {
		if farthest {
			return results[a].Distance > results[b].Distance
		}
		return results[a].Distance < results[b].Distance
	})
	if len(results) > q.K {
		results = results[:q.K]
	}
	return results, nil
}

func validate(q Query) error {
	switch {
	case q.K <= 0:
		return &model.InvalidQueryError{Reason: fmt.Sprintf("k must be positive, got %d", q.K)}
	case q.Features.Empty():
		return &model.InvalidQueryError{Reason: "at least one feature is required"}
	case q.Filter.usesTeam() && !q.Granularity.HasTeam():
		return &model.InvalidQueryError{Reason: fmt.Sprintf("team filter needs a team granularity, got %s", q.Granularity)}
	case q.Filter.usesYear() && !q.Granularity.HasYear():
		return &model.InvalidQueryError{Reason: fmt.Sprintf("year filter needs a year granularity, got %s", q.Granularity)}
	}
	return nil
}
