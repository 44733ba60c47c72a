package model

import (
	"errors"
	"testing"
)

func TestGranularityFor(t *testing.T) {
	cases := []struct {
		team, year bool
		want       Granularity
	}{
		{false, false, Overall},
		{true, false, ByTeam},
		{false, true, ByYear},
		{true, true, ByTeamAndYear},
	}
	for _, c := range cases {
		g := GranularityFor(c.team, c.year)
		if g != c.want {
			t.Errorf("GranularityFor(%v, %v) = %s, want %s", c.team, c.year, g, c.want)
		}
		if g.HasTeam() != c.team || g.HasYear() != c.year {
			t.Errorf("%s: HasTeam/HasYear mismatch", g)
		}
		parsed, err := ParseGranularity(g.String())
		if err != nil || parsed != g {
			t.Errorf("ParseGranularity(%q) = %s, %v", g.String(), parsed, err)
		}
	}

	_, err := ParseGranularity("weekly")
	var iq *InvalidQueryError
	if !errors.As(err, &iq) {
		t.Errorf("expected InvalidQueryError, got %v", err)
	}
}

func TestFeatureSetOrderIndependent(t *testing.T) {
	a := NewFeatureSet(FeatureTopQuarter, FeatureAccuracy)
	b := NewFeatureSet(FeatureAccuracy, FeatureTopQuarter)
	if a != b {
		t.Fatalf("feature sets differ: %v vs %v", a, b)
	}
	if got := a.String(); got != "accuracy,top_quarter" {
		t.Errorf("String() = %q", got)
	}

	parsed, err := ParseFeatures("top_quarter, accuracy")
	if err != nil {
		t.Fatalf("ParseFeatures: %v", err)
	}
	if parsed != a {
		t.Errorf("ParseFeatures = %v, want %v", parsed, a)
	}

	if _, err := ParseFeatures("accuracy,wingspan"); err == nil {
		t.Error("expected error for unknown feature")
	}
	empty, err := ParseFeatures("")
	if err != nil || !empty.Empty() {
		t.Errorf("empty list: %v, %v", empty, err)
	}
}

func TestProfileTableLookupProjectsKey(t *testing.T) {
	table := NewProfileTable(ByYear, []PlayerProfile{
		{Key: ProfileKey{Player: "B", Year: 2021}},
		{Key: ProfileKey{Player: "A", Year: 2022}},
		{Key: ProfileKey{Player: "A", Year: 2021}},
	})
	if table.Profiles[0].Key != (ProfileKey{Player: "A", Year: 2021}) {
		t.Errorf("table not sorted: %+v", table.Profiles[0].Key)
	}
	// Team is outside the by-year key and must be ignored.
	p, err := table.Get(ProfileKey{Player: "A", Team: "LAL", Year: 2022})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Key.Year != 2022 {
		t.Errorf("wrong profile %+v", p.Key)
	}

	_, err = table.Get(ProfileKey{Player: "C", Year: 2021})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestFormatErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &FormatError{Source: "a.csv", Line: 3, Field: "quarter", Value: "x", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("FormatError should unwrap to its cause")
	}
	if got := err.Error(); got != `a.csv:3: bad quarter "x": boom` {
		t.Errorf("Error() = %q", got)
	}
}
