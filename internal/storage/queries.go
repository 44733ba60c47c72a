package storage

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-hoop-metrics/internal/model"
)

const (
	metaGeneration = "profile_generation"
	metaBuiltAt    = "profiles_built_at"
)

// ShotFilter restricts shot queries. Empty/zero fields match everything.
type ShotFilter struct {
	Player string
	Team   string
	Year   int
}

func (f ShotFilter) where() (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.Player != "" {
		conds = append(conds, "player = ?")
		args = append(args, f.Player)
	}
	if f.Team != "" {
		conds = append(conds, "team = ?")
		args = append(args, f.Team)
	}
	if f.Year != 0 {
		conds = append(conds, "year = ?")
		args = append(args, f.Year)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ReplaceShots drops every stored shot and inserts shots in one transaction.
// Coordinates are rounded to one decimal.
func (db *DB) ReplaceShots(shots []model.CanonicalShot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM shots"); err != nil {
		return fmt.Errorf("clear shots: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO shots(
			date, year, match_id, game_location, shot_x, shot_y,
			quarter, player, team, made, distance, shot_type, zone
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range shots {
		_, err = stmt.Exec(
			s.DateString(), s.Year, s.MatchID, s.GameLocation,
			round1(s.ShotX), round1(s.ShotY),
			s.Quarter, s.Player, s.Team, boolInt(s.Made),
			s.Distance, s.ShotType, s.Zone,
		)
		if err != nil {
			return fmt.Errorf("insert shot %s/%s: %w", s.MatchID, s.Player, err)
		}
	}
	return tx.Commit()
}

// CountShots returns the number of stored shots matching f.
func (db *DB) CountShots(f ShotFilter) (int, error) {
	where, args := f.where()
	var n int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM shots"+where, args...).Scan(&n)
	return n, err
}

// QueryShots returns the shots matching f in insertion order.
func (db *DB) QueryShots(f ShotFilter) ([]model.CanonicalShot, error) {
	where, args := f.where()
	rows, err := db.conn.Query(`
		SELECT date, year, match_id, game_location, shot_x, shot_y,
		       quarter, player, team, made, distance, shot_type, zone
		FROM shots`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CanonicalShot
	for rows.Next() {
		var s model.CanonicalShot
		var date string
		var made int
		if err := rows.Scan(&date, &s.Year, &s.MatchID, &s.GameLocation, &s.ShotX, &s.ShotY,
			&s.Quarter, &s.Player, &s.Team, &made, &s.Distance, &s.ShotType, &s.Zone); err != nil {
			return nil, err
		}
		s.Date, err = time.Parse(model.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		s.Made = made != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReplaceProfiles drops and rewrites all four profile tables and records a
// new generation id, in one transaction. The set's Generation is used when
// present; otherwise a fresh one is assigned.
func (db *DB) ReplaceProfiles(set model.ProfileSet) (string, error) {
	gen := set.Generation
	if gen == "" {
		gen = uuid.NewString()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	for _, g := range model.Granularities {
		table := g.Table()
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return "", fmt.Errorf("clear %s: %w", table, err)
		}
		stmt, err := tx.Prepare(`
			INSERT INTO ` + table + `(
				player, team, year, shots, makes, avg_distance, avg_shot_x, accuracy,
				q1_makes, q2_makes, q3_makes, q4_makes, top_quarter
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
		if err != nil {
			return "", err
		}
		for _, p := range set.Table(g).Profiles {
			_, err = stmt.Exec(
				p.Key.Player, p.Key.Team, p.Key.Year, p.Shots, p.Makes,
				p.AvgDistance, p.AvgShotX, p.Accuracy,
				p.QuarterMakes[0], p.QuarterMakes[1], p.QuarterMakes[2], p.QuarterMakes[3],
				p.TopQuarter,
			)
			if err != nil {
				stmt.Close()
				return "", fmt.Errorf("insert %s for %s: %w", table, p.Key, err)
			}
		}
		stmt.Close()
	}

	if err := setMeta(tx, metaGeneration, gen); err != nil {
		return "", err
	}
	if err := setMeta(tx, metaBuiltAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return gen, nil
}

func setMeta(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO meta(key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

func (db *DB) meta(key string) (string, error) {
	return readMeta(db.conn, key)
}

func readMeta(q querier, key string) (string, error) {
	var v string
	err := q.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// ProfileGeneration returns the id written by the last ReplaceProfiles, or
// "" if profiles were never built.
func (db *DB) ProfileGeneration() (string, error) {
	return db.meta(metaGeneration)
}

// LoadProfiles reads the generation and all four profile tables inside one
// read transaction, so a concurrent ReplaceProfiles is seen entirely or not
// at all.
func (db *DB) LoadProfiles() (model.ProfileSet, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return model.ProfileSet{}, fmt.Errorf("begin read: %w", err)
	}
	defer tx.Rollback()
	return loadProfiles(tx)
}

func loadProfiles(q querier) (model.ProfileSet, error) {
	gen, err := readMeta(q, metaGeneration)
	if err != nil {
		return model.ProfileSet{}, fmt.Errorf("read generation: %w", err)
	}
	set := model.ProfileSet{
		Generation: gen,
		Tables:     make(map[model.Granularity]model.ProfileTable, len(model.Granularities)),
	}
	for _, g := range model.Granularities {
		profiles, err := queryProfiles(q, g, "", nil)
		if err != nil {
			return model.ProfileSet{}, fmt.Errorf("load %s: %w", g.Table(), err)
		}
		set.Tables[g] = model.NewProfileTable(g, profiles)
	}
	return set, nil
}

// GetProfile returns one stored profile or a NotFoundError.
func (db *DB) GetProfile(g model.Granularity, key model.ProfileKey) (model.PlayerProfile, error) {
	k := key.Project(g)
	profiles, err := db.profiles(g, " WHERE player = ? AND team = ? AND year = ?",
		[]interface{}{k.Player, k.Team, k.Year})
	if err != nil {
		return model.PlayerProfile{}, err
	}
	if len(profiles) == 0 {
		return model.PlayerProfile{}, &model.NotFoundError{Granularity: g, Key: k}
	}
	return profiles[0], nil
}

func (db *DB) profiles(g model.Granularity, where string, args []interface{}) ([]model.PlayerProfile, error) {
	return queryProfiles(db.conn, g, where, args)
}

func queryProfiles(q querier, g model.Granularity, where string, args []interface{}) ([]model.PlayerProfile, error) {
	rows, err := q.Query(`
		SELECT player, team, year, shots, makes, avg_distance, avg_shot_x, accuracy,
		       q1_makes, q2_makes, q3_makes, q4_makes, top_quarter
		FROM `+g.Table()+where+`
		ORDER BY player, team, year`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerProfile
	for rows.Next() {
		var p model.PlayerProfile
		if err := rows.Scan(&p.Key.Player, &p.Key.Team, &p.Key.Year, &p.Shots, &p.Makes,
			&p.AvgDistance, &p.AvgShotX, &p.Accuracy,
			&p.QuarterMakes[0], &p.QuarterMakes[1], &p.QuarterMakes[2], &p.QuarterMakes[3],
			&p.TopQuarter); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
