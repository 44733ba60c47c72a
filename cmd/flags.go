package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/storage"
)

// keyFlags selects one profile: the player comes from the argument, team and
// year from flags. The granularity follows from which flags are set unless
// --by overrides it.
type keyFlags struct {
	team string
	year int
	by   string
}

func (k *keyFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&k.team, "team", "", "team of the profile (selects a by-team granularity)")
	c.Flags().IntVar(&k.year, "year", 0, "season year of the profile (selects a by-year granularity)")
	c.Flags().StringVar(&k.by, "by", "", "granularity: overall, by-team, by-year, by-team-and-year")
}

func (k *keyFlags) resolve(player string) (model.ProfileKey, model.Granularity, error) {
	key := model.ProfileKey{Player: player, Team: k.team, Year: k.year}
	g := model.GranularityFor(k.team != "", k.year != 0)
	if k.by != "" {
		var err error
		if g, err = model.ParseGranularity(k.by); err != nil {
			return key, g, err
		}
	}
	if k.team != "" && !g.HasTeam() {
		return key, g, &model.InvalidQueryError{Reason: fmt.Sprintf("--team given but granularity is %s", g)}
	}
	if k.year != 0 && !g.HasYear() {
		return key, g, &model.InvalidQueryError{Reason: fmt.Sprintf("--year given but granularity is %s", g)}
	}
	if g.HasTeam() && k.team == "" {
		return key, g, &model.InvalidQueryError{Reason: fmt.Sprintf("%s needs --team", g)}
	}
	if g.HasYear() && k.year == 0 {
		return key, g, &model.InvalidQueryError{Reason: fmt.Sprintf("%s needs --year", g)}
	}
	return key, g, nil
}

// shotFilterFlags narrows shot-level analytics.
type shotFilterFlags struct {
	player string
	team   string
	year   int
}

func (f *shotFilterFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.player, "player", "", "only shots by this player")
	c.Flags().StringVar(&f.team, "team", "", "only shots by this team")
	c.Flags().IntVar(&f.year, "year", 0, "only shots from this season year")
}

func (f *shotFilterFlags) filter() storage.ShotFilter {
	return storage.ShotFilter{Player: f.player, Team: f.team, Year: f.year}
}

func (f *shotFilterFlags) label() string {
	s := "all shots"
	if f.player != "" {
		s = f.player
	}
	if f.team != "" {
		s += " / " + f.team
	}
	if f.year != 0 {
		s += fmt.Sprintf(" / %d", f.year)
	}
	return s
}
