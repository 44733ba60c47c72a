// Package similarity answers nearest-profile queries over standardized
// profile features.
package similarity

import (
	"math"

	"github.com/pable/go-hoop-metrics/internal/model"
)

// Standardize rescales each column of rows to zero mean and unit population
// variance. A column whose values are all equal comes back as zeros.
func Standardize(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	if len(rows) == 0 {
		return out
	}
	cols := len(rows[0])
	for i := range out {
		out[i] = make([]float64, cols)
	}
	n := float64(len(rows))
	for c := 0; c < cols; c++ {
		lo, hi := rows[0][c], rows[0][c]
		var sum float64
		for _, r := range rows {
			v := r[c]
			sum += v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if lo == hi {
			continue
		}
		mean := sum / n
		var ss float64
		for _, r := range rows {
			d := r[c] - mean
			ss += d * d
		}
		std := math.Sqrt(ss / n)
		for i, r := range rows {
			out[i][c] = (r[c] - mean) / std
		}
	}
	return out
}

// Matrix is the full pairwise distance matrix for one profile table and
// feature set.
type Matrix struct {
	Granularity model.Granularity
	Features    model.FeatureSet

	keys  []model.ProfileKey
	index map[model.ProfileKey]int
	dist  []float64 // row-major, len(keys)^2
}

// Compute standardizes the requested features over the whole table and fills
// the Euclidean distance matrix. Only the upper triangle is computed; the
// lower triangle is mirrored so the result is exactly symmetric.
func Compute(table model.ProfileTable, features model.FeatureSet) (*Matrix, error) {
	if features.Empty() {
		return nil, &model.InvalidQueryError{Reason: "at least one feature is required"}
	}
	fs := features.Features()
	n := len(table.Profiles)

	m := &Matrix{
		Granularity: table.Granularity,
		Features:    features,
		keys:        make([]model.ProfileKey, n),
		index:       make(map[model.ProfileKey]int, n),
		dist:        make([]float64, n*n),
	}
	rows := make([][]float64, n)
	for i, p := range table.Profiles {
		m.keys[i] = p.Key
		m.index[p.Key] = i
		row := make([]float64, len(fs))
		for c, f := range fs {
			row[c] = f.Value(p)
		}
		rows[i] = row
	}
	z := Standardize(rows)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var ss float64
			for c := range fs {
				d := z[i][c] - z[j][c]
				ss += d * d
			}
			d := math.Sqrt(ss)
			m.dist[i*n+j] = d
			m.dist[j*n+i] = d
		}
	}
	return m, nil
}

// Len returns the number of profiles in the matrix.
func (m *Matrix) Len() int { return len(m.keys) }

// Keys returns the profile keys in table order.
func (m *Matrix) Keys() []model.ProfileKey {
	return append([]model.ProfileKey(nil), m.keys...)
}

// Index returns the row of key, projected onto the matrix granularity.
func (m *Matrix) Index(key model.ProfileKey) (int, bool) {
	i, ok := m.index[key.Project(m.Granularity)]
	return i, ok
}

// At returns the distance between rows i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.dist[i*len(m.keys)+j]
}

// Distance returns the distance between two keys.
func (m *Matrix) Distance(a, b model.ProfileKey) (float64, error) {
	i, ok := m.Index(a)
	if !ok {
		return 0, &model.NotFoundError{Granularity: m.Granularity, Key: a.Project(m.Granularity)}
	}
	j, ok := m.Index(b)
	if !ok {
		return 0, &model.NotFoundError{Granularity: m.Granularity, Key: b.Project(m.Granularity)}
	}
	return m.At(i, j), nil
}
