package storage

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pable/go-hoop-metrics/internal/model"
)

// Overview summarizes what the store currently holds.
type Overview struct {
	Shots      int
	Players    int
	Teams      int
	FirstDate  string // "YYYY-MM-DD", empty when no shots
	LastDate   string
	MinYear    int
	MaxYear    int
	Profiles   map[model.Granularity]int
	Generation string
	BuiltAt    string
}

// Overview counts shots, distinct players/teams, the date range and the
// profile rows per granularity.
func (db *DB) Overview() (Overview, error) {
	var o Overview
	var first, last sql.NullString
	var minYear, maxYear sql.NullInt64
	err := db.conn.QueryRow(`
		SELECT COUNT(1), COUNT(DISTINCT player), COUNT(DISTINCT team),
		       MIN(date), MAX(date), MIN(year), MAX(year)
		FROM shots`).
		Scan(&o.Shots, &o.Players, &o.Teams, &first, &last, &minYear, &maxYear)
	if err != nil {
		return o, fmt.Errorf("shot overview: %w", err)
	}
	o.FirstDate, o.LastDate = first.String, last.String
	o.MinYear, o.MaxYear = int(minYear.Int64), int(maxYear.Int64)

	o.Profiles = make(map[model.Granularity]int, len(model.Granularities))
	for _, g := range model.Granularities {
		var n int
		if err := db.conn.QueryRow("SELECT COUNT(1) FROM " + g.Table()).Scan(&n); err != nil {
			return o, fmt.Errorf("count %s: %w", g.Table(), err)
		}
		o.Profiles[g] = n
	}
	if o.Generation, err = db.meta(metaGeneration); err != nil {
		return o, err
	}
	if o.BuiltAt, err = db.meta(metaBuiltAt); err != nil {
		return o, err
	}
	return o, nil
}

var distinctColumns = map[string]bool{"player": true, "team": true, "year": true}

// DistinctValues lists the distinct values of player, team or year among the
// shots matching f, sorted ascending. These feed selector lists.
func (db *DB) DistinctValues(column string, f ShotFilter) ([]string, error) {
	if !distinctColumns[column] {
		return nil, &model.InvalidQueryError{Reason: fmt.Sprintf("cannot list distinct %q", column)}
	}
	where, args := f.where()
	rows, err := db.conn.Query(
		fmt.Sprintf("SELECT DISTINCT %s FROM shots%s ORDER BY %s", column, where, column), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v interface{}
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, formatValue(v))
	}
	return out, rows.Err()
}

// ProfilesFor returns the stored profiles of granularity g for the given
// players, or every profile when players is empty.
func (db *DB) ProfilesFor(g model.Granularity, players []string) ([]model.PlayerProfile, error) {
	if len(players) == 0 {
		return db.profiles(g, "", nil)
	}
	args := make([]interface{}, len(players))
	for i, p := range players {
		args[i] = p
	}
	return db.profiles(g, fmt.Sprintf(" WHERE player IN (%s)", placeholders(len(players))), args)
}

// QueryRaw runs an arbitrary query and returns column names and rows as text.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = formatValue(v)
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
