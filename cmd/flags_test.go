package cmd

import (
	"errors"
	"testing"

	"github.com/pable/go-hoop-metrics/internal/model"
)

func TestKeyFlagsResolve(t *testing.T) {
	cases := []struct {
		name    string
		flags   keyFlags
		wantG   model.Granularity
		wantErr bool
	}{
		{"overall", keyFlags{}, model.Overall, false},
		{"team implies by-team", keyFlags{team: "GSW"}, model.ByTeam, false},
		{"year implies by-year", keyFlags{year: 2016}, model.ByYear, false},
		{"both", keyFlags{team: "GSW", year: 2016}, model.ByTeamAndYear, false},
		{"explicit by matches", keyFlags{team: "GSW", by: "by-team"}, model.ByTeam, false},
		{"team with overall", keyFlags{team: "GSW", by: "overall"}, model.Overall, true},
		{"by-year without year", keyFlags{by: "by-year"}, model.ByYear, true},
		{"unknown by", keyFlags{by: "weekly"}, model.Overall, true},
	}
	for _, c := range cases {
		key, g, err := c.flags.resolve("Stephen Curry")
		if c.wantErr {
			var iq *model.InvalidQueryError
			if !errors.As(err, &iq) {
				t.Errorf("%s: err = %v, want InvalidQueryError", c.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if g != c.wantG {
			t.Errorf("%s: granularity = %s, want %s", c.name, g, c.wantG)
		}
		if key.Player != "Stephen Curry" || key.Team != c.flags.team || key.Year != c.flags.year {
			t.Errorf("%s: key = %+v", c.name, key)
		}
	}
}

func TestParseShellArgs(t *testing.T) {
	sa := parseShellArgs([]string{"Stephen", "Curry", "--year", "2016", "-k", "3", "--least"})
	if sa.name != "Stephen Curry" {
		t.Errorf("name = %q, want %q", sa.name, "Stephen Curry")
	}
	if sa.opts["year"] != "2016" || sa.opts["k"] != "3" || sa.opts["least"] != "true" {
		t.Errorf("opts = %v", sa.opts)
	}
	k, err := sa.intOpt("k")
	if err != nil || k != 3 {
		t.Errorf("intOpt(k) = %d, %v", k, err)
	}
	if n, err := sa.intOpt("missing"); err != nil || n != 0 {
		t.Errorf("intOpt(missing) = %d, %v", n, err)
	}

	key, g, err := sa.key()
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if g != model.ByYear || key.Year != 2016 {
		t.Errorf("key = %+v %s", key, g)
	}

	bad := parseShellArgs([]string{"x", "--year", "twenty"})
	if _, _, err := bad.key(); err == nil {
		t.Error("expected error for non-numeric year")
	}
}

func TestShotFilterLabel(t *testing.T) {
	f := shotFilterFlags{}
	if got := f.label(); got != "all shots" {
		t.Errorf("label = %q", got)
	}
	f = shotFilterFlags{player: "Kevin Durant", team: "GSW", year: 2017}
	if got := f.label(); got != "Kevin Durant / GSW / 2017" {
		t.Errorf("label = %q", got)
	}
	if sf := f.filter(); sf.Player != "Kevin Durant" || sf.Team != "GSW" || sf.Year != 2017 {
		t.Errorf("filter = %+v", sf)
	}
}

func TestShellSimilarityFilter(t *testing.T) {
	sa := parseShellArgs([]string{"--same-team", "Draymond", "Green", "--team", "GSW", "--year", "2016", "--filter-year", "2016"})
	if sa.name != "Draymond Green" {
		t.Fatalf("switch should not consume the player name, got %q", sa.name)
	}
	f, err := sa.filter()
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !f.SameTeam || f.SameYear || f.Team != "" || f.Year != 2016 {
		t.Errorf("filter = %+v", f)
	}

	sa = parseShellArgs([]string{"Draymond", "Green", "--same-year", "--filter-team", "GSW"})
	if f, _ = sa.filter(); f.SameTeam || !f.SameYear || f.Team != "GSW" || f.Year != 0 {
		t.Errorf("filter = %+v", f)
	}

	sa = parseShellArgs([]string{"x", "--filter-year", "soon"})
	if _, err := sa.filter(); err == nil {
		t.Error("expected error for non-numeric --filter-year")
	}
}
