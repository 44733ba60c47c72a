package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ---- Raw rows emitted by the CSV reader ----

// RawShotRecord is one untyped shot row as it appears in a source CSV.
type RawShotRecord struct {
	Source string // file name the row came from
	Line   int    // 1-based line in Source, header is line 1

	MatchID  string
	ShotX    string
	ShotY    string
	Quarter  string // "1st quarter", "3rd quarter", ...
	Player   string
	Team     string
	Made     string
	Distance string
	ShotType string // "2-pointer" / "3-pointer"
}

// ---- Canonical shots ----

// CanonicalShot is a normalized, validated shot event ready for aggregation.
type CanonicalShot struct {
	Date         time.Time
	Year         int
	MatchID      string
	GameLocation string
	ShotX        float64
	ShotY        float64
	Quarter      int
	Player       string
	Team         string
	Made         bool
	Distance     float64
	ShotType     int // 2 or 3
	Zone         int // 0 = unclassified
}

// DateString returns the shot date as YYYY-MM-DD.
func (s CanonicalShot) DateString() string {
	return s.Date.Format(DateLayout)
}

// DateLayout is the storage and display format for shot dates.
const DateLayout = "2006-01-02"

// ---- Granularity ----

// Granularity is one of the four grouping levels profiles are computed at.
type Granularity int

const (
	Overall Granularity = iota
	ByTeam
	ByYear
	ByTeamAndYear
)

// Granularities lists every granularity in canonical order.
var Granularities = []Granularity{Overall, ByTeam, ByYear, ByTeamAndYear}

// GranularityFor returns the granularity that groups by the given key fields.
func GranularityFor(byTeam, byYear bool) Granularity {
	switch {
	case byTeam && byYear:
		return ByTeamAndYear
	case byTeam:
		return ByTeam
	case byYear:
		return ByYear
	default:
		return Overall
	}
}

// ParseGranularity accepts the String form of a granularity.
func ParseGranularity(s string) (Granularity, error) {
	for _, g := range Granularities {
		if strings.EqualFold(strings.TrimSpace(s), g.String()) {
			return g, nil
		}
	}
	return Overall, &InvalidQueryError{Reason: fmt.Sprintf("unknown granularity %q", s)}
}

func (g Granularity) HasTeam() bool { return g == ByTeam || g == ByTeamAndYear }
func (g Granularity) HasYear() bool { return g == ByYear || g == ByTeamAndYear }

func (g Granularity) String() string {
	switch g {
	case Overall:
		return "overall"
	case ByTeam:
		return "by-team"
	case ByYear:
		return "by-year"
	case ByTeamAndYear:
		return "by-team-and-year"
	default:
		return "?"
	}
}

// Table returns the profile table name backing this granularity.
func (g Granularity) Table() string {
	switch g {
	case ByTeam:
		return "player_profiles_by_team"
	case ByYear:
		return "player_profiles_by_year"
	case ByTeamAndYear:
		return "player_profiles_by_team_and_year"
	default:
		return "player_profiles"
	}
}

// ---- Profile keys ----

// ProfileKey identifies a profile row. Fields outside the granularity are zero.
type ProfileKey struct {
	Player string
	Team   string
	Year   int
}

// KeyFor projects a shot onto the key of granularity g.
func KeyFor(g Granularity, s CanonicalShot) ProfileKey {
	k := ProfileKey{Player: s.Player}
	if g.HasTeam() {
		k.Team = s.Team
	}
	if g.HasYear() {
		k.Year = s.Year
	}
	return k
}

// Project drops the key fields g does not group by.
func (k ProfileKey) Project(g Granularity) ProfileKey {
	out := ProfileKey{Player: k.Player}
	if g.HasTeam() {
		out.Team = k.Team
	}
	if g.HasYear() {
		out.Year = k.Year
	}
	return out
}

func (k ProfileKey) String() string {
	parts := []string{k.Player}
	if k.Team != "" {
		parts = append(parts, k.Team)
	}
	if k.Year != 0 {
		parts = append(parts, fmt.Sprintf("%d", k.Year))
	}
	return strings.Join(parts, " / ")
}

// Less orders keys by player, then team, then year.
func (k ProfileKey) Less(o ProfileKey) bool {
	if k.Player != o.Player {
		return k.Player < o.Player
	}
	if k.Team != o.Team {
		return k.Team < o.Team
	}
	return k.Year < o.Year
}

// ---- Profiles ----

// PlayerProfile holds aggregated shooting statistics for one grouping key.
type PlayerProfile struct {
	Key ProfileKey

	Shots int
	Makes int

	AvgDistance float64
	AvgShotX    float64
	Accuracy    float64

	QuarterMakes [4]int // makes in quarters 1..4; overtime is not bucketed
	TopQuarter   int    // 1..4
}

// ProfileTable is the set of profiles for one granularity in key order.
type ProfileTable struct {
	Granularity Granularity
	Profiles    []PlayerProfile

	index map[ProfileKey]int
}

// NewProfileTable sorts profiles into key order and indexes them.
func NewProfileTable(g Granularity, profiles []PlayerProfile) ProfileTable {
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Key.Less(profiles[j].Key)
	})
	t := ProfileTable{Granularity: g, Profiles: profiles}
	t.reindex()
	return t
}

func (t *ProfileTable) reindex() {
	t.index = make(map[ProfileKey]int, len(t.Profiles))
	for i, p := range t.Profiles {
		t.index[p.Key] = i
	}
}

// Lookup returns the position of key in the table. Tables not built with
// NewProfileTable fall back to a linear scan.
func (t ProfileTable) Lookup(key ProfileKey) (int, bool) {
	key = key.Project(t.Granularity)
	if t.index != nil {
		i, ok := t.index[key]
		return i, ok
	}
	for i, p := range t.Profiles {
		if p.Key == key {
			return i, true
		}
	}
	return 0, false
}

// Get returns the profile for key or a NotFoundError.
func (t ProfileTable) Get(key ProfileKey) (PlayerProfile, error) {
	i, ok := t.Lookup(key)
	if !ok {
		return PlayerProfile{}, &NotFoundError{Granularity: t.Granularity, Key: key.Project(t.Granularity)}
	}
	return t.Profiles[i], nil
}

// Len returns the number of profiles.
func (t ProfileTable) Len() int { return len(t.Profiles) }

// ProfileSet holds all four profile tables from one build.
type ProfileSet struct {
	Generation string
	Tables     map[Granularity]ProfileTable
}

// Table returns the table for g (empty if absent).
func (s ProfileSet) Table(g Granularity) ProfileTable {
	if t, ok := s.Tables[g]; ok {
		return t
	}
	return NewProfileTable(g, nil)
}

// ---- Similarity features ----

// Feature is a profile statistic usable in similarity search.
type Feature uint8

// Features are declared in alphabetical order; that order is the fixed
// column order used for standardization.
const (
	FeatureAccuracy Feature = 1 << iota
	FeatureAvgDistance
	FeatureAvgShotX
	FeatureTopQuarter
)

var allFeatures = []Feature{FeatureAccuracy, FeatureAvgDistance, FeatureAvgShotX, FeatureTopQuarter}

func (f Feature) String() string {
	switch f {
	case FeatureAccuracy:
		return "accuracy"
	case FeatureAvgDistance:
		return "avg_distance"
	case FeatureAvgShotX:
		return "avg_shot_x"
	case FeatureTopQuarter:
		return "top_quarter"
	default:
		return "?"
	}
}

// Value extracts the feature from a profile.
func (f Feature) Value(p PlayerProfile) float64 {
	switch f {
	case FeatureAccuracy:
		return p.Accuracy
	case FeatureAvgDistance:
		return p.AvgDistance
	case FeatureAvgShotX:
		return p.AvgShotX
	case FeatureTopQuarter:
		return float64(p.TopQuarter)
	default:
		return 0
	}
}

// FeatureSet is an unordered set of features.
type FeatureSet uint8

// AllFeatures contains every feature.
const AllFeatures = FeatureSet(FeatureAccuracy | FeatureAvgDistance | FeatureAvgShotX | FeatureTopQuarter)

// NewFeatureSet builds a set from features in any order.
func NewFeatureSet(fs ...Feature) FeatureSet {
	var s FeatureSet
	for _, f := range fs {
		s |= FeatureSet(f)
	}
	return s
}

// ParseFeatures parses a comma-separated feature list.
func ParseFeatures(s string) (FeatureSet, error) {
	var set FeatureSet
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		found := false
		for _, f := range allFeatures {
			if f.String() == name {
				set |= FeatureSet(f)
				found = true
				break
			}
		}
		if !found {
			return 0, &InvalidQueryError{Reason: fmt.Sprintf("unknown feature %q", name)}
		}
	}
	return set, nil
}

// Has reports whether f is in the set.
func (s FeatureSet) Has(f Feature) bool { return s&FeatureSet(f) != 0 }

// Empty reports whether the set has no features.
func (s FeatureSet) Empty() bool { return s&AllFeatures == 0 }

// Features returns the members in fixed alphabetical order.
func (s FeatureSet) Features() []Feature {
	var out []Feature
	for _, f := range allFeatures {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s FeatureSet) String() string {
	fs := s.Features()
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}
