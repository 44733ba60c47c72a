package parser

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/zone"
)

// RequiredColumns are the header names every shot source must carry.
var RequiredColumns = []string{
	"match_id", "shotX", "shotY", "quarter", "player", "team", "made", "distance", "shot_type",
}

// sentinel player/team values left behind by header and footer rows.
var sentinels = map[string]bool{"made": true, "missed": true}

// NormalizeStats counts what happened to a batch during normalization.
type NormalizeStats struct {
	Rows    int
	Kept    int
	Skipped int // sentinel rows
	ByZone  [zone.Count]int
}

// AssertColumns fails with a SchemaError naming every required column absent
// from header. Names are matched case-insensitively after trimming.
func AssertColumns(header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[normalizeHeader(h)] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !have[normalizeHeader(c)] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &model.SchemaError{Missing: missing}
	}
	return nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// ExtractDate parses the leading YYYYMMDD of a match id.
func ExtractDate(matchID string) (time.Time, error) {
	if len(matchID) < 8 || !allDigits(matchID[:8]) {
		return time.Time{}, &model.FormatError{Field: "match_id", Value: matchID,
			Err: errors.New("want an 8-digit YYYYMMDD prefix")}
	}
	d, err := time.Parse("20060102", matchID[:8])
	if err != nil {
		return time.Time{}, &model.FormatError{Field: "match_id", Value: matchID, Err: err}
	}
	return d, nil
}

// Year returns the first four characters of a match id as an integer.
func Year(matchID string) (int, error) {
	if len(matchID) < 4 {
		return 0, &model.FormatError{Field: "match_id", Value: matchID, Err: errors.New("too short for a year")}
	}
	y, err := strconv.Atoi(matchID[:4])
	if err != nil {
		return 0, &model.FormatError{Field: "match_id", Value: matchID, Err: err}
	}
	return y, nil
}

// Location returns the alphabetic residue of a match id.
func Location(matchID string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, matchID)
}

// DigitsInt strips every non-digit from label and parses the rest,
// so "3rd quarter" is 3 and "2-pointer" is 2.
func DigitsInt(field, label string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, label)
	if digits == "" {
		return 0, &model.FormatError{Field: field, Value: label, Err: errors.New("no digits")}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, &model.FormatError{Field: field, Value: label, Err: err}
	}
	return n, nil
}

// IsSentinel reports whether a player or team value is a leaked header token.
func IsSentinel(s string) bool {
	return sentinels[strings.TrimSpace(s)]
}

// Normalize converts raw rows into canonical shots. Rows whose player or
// team is a sentinel token are skipped and counted. The first malformed
// field aborts the whole batch.
func Normalize(records []model.RawShotRecord) ([]model.CanonicalShot, NormalizeStats, error) {
	stats := NormalizeStats{Rows: len(records)}
	out := make([]model.CanonicalShot, 0, len(records))

	for _, r := range records {
		if IsSentinel(r.Player) || IsSentinel(r.Team) {
			stats.Skipped++
			continue
		}
		shot, err := normalizeOne(r)
		if err != nil {
			var fe *model.FormatError
			if errors.As(err, &fe) {
				fe.Source, fe.Line = r.Source, r.Line
			}
			return nil, stats, err
		}
		stats.ByZone[shot.Zone]++
		out = append(out, shot)
	}
	stats.Kept = len(out)
	return out, stats, nil
}

func normalizeOne(r model.RawShotRecord) (model.CanonicalShot, error) {
	matchID := strings.TrimSpace(r.MatchID)
	date, err := ExtractDate(matchID)
	if err != nil {
		return model.CanonicalShot{}, err
	}
	year, err := Year(matchID)
	if err != nil {
		return model.CanonicalShot{}, err
	}
	x, err := parseFloat("shotX", r.ShotX)
	if err != nil {
		return model.CanonicalShot{}, err
	}
	y, err := parseFloat("shotY", r.ShotY)
	if err != nil {
		return model.CanonicalShot{}, err
	}
	quarter, err := DigitsInt("quarter", r.Quarter)
	if err != nil {
		return model.CanonicalShot{}, err
	}
	if quarter < 1 {
		return model.CanonicalShot{}, &model.FormatError{Field: "quarter", Value: r.Quarter,
			Err: errors.New("quarter must be positive")}
	}
	shotType, err := DigitsInt("shot_type", r.ShotType)
	if err != nil {
		return model.CanonicalShot{}, err
	}
	if shotType != 2 && shotType != 3 {
		return model.CanonicalShot{}, &model.FormatError{Field: "shot_type", Value: r.ShotType,
			Err: fmt.Errorf("want 2 or 3, got %d", shotType)}
	}
	made, err := parseMade(r.Made)
	if err != nil {
		return model.CanonicalShot{}, err
	}
	dist, err := parseFloat("distance", strings.TrimSuffix(strings.TrimSpace(r.Distance), "ft"))
	if err != nil {
		return model.CanonicalShot{}, err
	}

	return model.CanonicalShot{
		Date:         date,
		Year:         year,
		MatchID:      matchID,
		GameLocation: Location(matchID),
		ShotX:        x,
		ShotY:        y,
		Quarter:      quarter,
		Player:       strings.TrimSpace(r.Player),
		Team:         strings.TrimSpace(r.Team),
		Made:         made,
		Distance:     dist,
		ShotType:     shotType,
		Zone:         zone.Classify(x, y),
	}, nil
}

func parseFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &model.FormatError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

func parseMade(raw string) (bool, error) {
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return false, &model.FormatError{Field: "made", Value: raw, Err: err}
	}
	return b, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
