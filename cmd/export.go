package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/similarity"
	"github.com/pable/go-hoop-metrics/internal/storage"
)

var (
	exportBy        string
	exportTeam      string
	exportPlayers   string
	exportRoster    string
	exportNeighbors int
	exportOut       string
)

// rosterFile is the schema for --roster JSON files.
type rosterFile struct {
	Team    string   `json:"team"`
	Players []string `json:"players"`
}

// profileExport is the top-level JSON document written by export.
type profileExport struct {
	Team        string          `json:"team,omitempty"`
	Granularity string          `json:"granularity"`
	Generation  string          `json:"generation"`
	GeneratedAt string          `json:"generated_at"`
	Features    []string        `json:"features"`
	Profiles    []profileRecord `json:"profiles"`
}

type profileRecord struct {
	Player       string           `json:"player"`
	Team         string           `json:"team,omitempty"`
	Year         int              `json:"year,omitempty"`
	Shots        int              `json:"shots"`
	Makes        int              `json:"makes"`
	Accuracy     float64          `json:"accuracy"`
	AvgDistance  float64          `json:"avg_distance"`
	AvgShotX     float64          `json:"avg_shot_x"`
	QuarterMakes [4]int           `json:"quarter_makes"`
	TopQuarter   int              `json:"top_quarter"`
	Similar      []neighborRecord `json:"similar,omitempty"`
}

type neighborRecord struct {
	Player   string  `json:"player"`
	Team     string  `json:"team,omitempty"`
	Year     int     `json:"year,omitempty"`
	Distance float64 `json:"distance"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export player profiles as JSON",
	Long: `Write the stored profiles of a roster of players as a JSON document.

Specify the roster via --players (comma-separated names) or --roster (path to
a JSON file). If both are provided, --players takes precedence. With
--neighbors N every profile also lists its N most similar profiles.

Example:
  hoopmetrics export --by by-year --players "Stephen Curry,Klay Thompson" --out splash.json
  hoopmetrics export --roster warriors.json --neighbors 3`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportBy, "by", "overall", "granularity: overall, by-team, by-year, by-team-and-year")
	exportCmd.Flags().StringVar(&exportTeam, "team", "", "team name for the output JSON")
	exportCmd.Flags().StringVar(&exportPlayers, "players", "", "comma-separated player names")
	exportCmd.Flags().StringVar(&exportRoster, "roster", "", `roster JSON file: {"team":"...","players":["...",...]}`)
	exportCmd.Flags().IntVar(&exportNeighbors, "neighbors", 0, "include the N most similar profiles of each player")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(_ *cobra.Command, _ []string) error {
	teamName, players, err := resolveRoster()
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return fmt.Errorf("no players specified: use --players or --roster")
	}
	g, err := model.ParseGranularity(exportBy)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	profiles, err := db.ProfilesFor(g, players)
	if err != nil {
		return fmt.Errorf("query profiles: %w", err)
	}
	if len(profiles) == 0 {
		fmt.Fprintf(os.Stderr, "hint: none of the %d players have %s profiles; run 'hoopmetrics build' first\n",
			len(players), g)
	}

	out, err := buildExport(db, g, teamName, profiles)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	if exportOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(exportOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d profiles)\n", exportOut, len(out.Profiles))
	return nil
}

func buildExport(db *storage.DB, g model.Granularity, team string, profiles []model.PlayerProfile) (profileExport, error) {
	out := profileExport{
		Team:        team,
		Granularity: g.String(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Profiles:    make([]profileRecord, 0, len(profiles)),
	}
	for _, f := range cfg.Features.Features() {
		out.Features = append(out.Features, f.String())
	}

	var engine *similarity.Engine
	if exportNeighbors > 0 {
		engine = similarity.NewEngine(logger)
		if _, err := engine.Refresh(db); err != nil {
			return out, fmt.Errorf("load profiles: %w", err)
		}
	}
	gen, err := db.ProfileGeneration()
	if err != nil {
		return out, err
	}
	out.Generation = gen

	for _, p := range profiles {
		rec := profileRecord{
			Player:       p.Key.Player,
			Team:         p.Key.Team,
			Year:         p.Key.Year,
			Shots:        p.Shots,
			Makes:        p.Makes,
			Accuracy:     p.Accuracy,
			AvgDistance:  p.AvgDistance,
			AvgShotX:     p.AvgShotX,
			QuarterMakes: p.QuarterMakes,
			TopQuarter:   p.TopQuarter,
		}
		if engine != nil {
			results, err := engine.TopK(similarity.Query{
				Key:         p.Key,
				K:           exportNeighbors,
				Granularity: g,
				Features:    cfg.Features,
			})
			if err != nil {
				return out, fmt.Errorf("similar to %s: %w", p.Key, err)
			}
			for _, r := range results {
				rec.Similar = append(rec.Similar, neighborRecord{
					Player:   r.Key.Player,
					Team:     r.Key.Team,
					Year:     r.Key.Year,
					Distance: r.Distance,
				})
			}
		}
		out.Profiles = append(out.Profiles, rec)
	}
	return out, nil
}

func resolveRoster() (teamName string, players []string, err error) {
	if exportPlayers != "" {
		for _, raw := range strings.Split(exportPlayers, ",") {
			if name := strings.TrimSpace(raw); name != "" {
				players = append(players, name)
			}
		}
		return exportTeam, players, nil
	}
	if exportRoster != "" {
		data, readErr := os.ReadFile(exportRoster)
		if readErr != nil {
			return "", nil, fmt.Errorf("read roster file: %w", readErr)
		}
		var rf rosterFile
		if jsonErr := json.Unmarshal(data, &rf); jsonErr != nil {
			return "", nil, fmt.Errorf("parse roster file: %w", jsonErr)
		}
		name := rf.Team
		if exportTeam != "" {
			name = exportTeam
		}
		return name, rf.Players, nil
	}
	return exportTeam, nil, nil
}
