package zone

import (
	"math"
	"testing"
)

func TestClassifyFixtures(t *testing.T) {
	cases := []struct {
		x, y float64
		want int
	}{
		{5, 5, 1},
		{45, 5, 2},
		{25, 35, 3},
		{25, 5, 15},
		{25, 25, 8},
		{5, 20, 4},     // x < 10 hits the side-three rule before mid-range 9
		{15, 38, 5},    // deep straight-on
		{15, 15, 6},    // left wing
		{35, 15, 7},    // right wing
		{17, 5, 14},    // paint, outside the rim band
		{25, 15, 11},   // 10 < y <= 20 in the paint
		{20, 10.5, 11}, // x == 20 misses the open left-wing interval
		{15, 27, 12},
		{12, 28, 13},
		{10, 5, 1},
		{40, 10, 2},
		{10, 10, 1},
	}
	for _, c := range cases {
		if got := Classify(c.x, c.y); got != c.want {
			t.Errorf("Classify(%v, %v) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}

// TestClassifyTotal sweeps a dense grid well outside the court.
func TestClassifyTotal(t *testing.T) {
	for x := -50.0; x <= 100; x += 0.5 {
		for y := -50.0; y <= 100; y += 0.5 {
			z := Classify(x, y)
			if z < 0 || z >= Count {
				t.Fatalf("Classify(%v, %v) = %d out of range", x, y, z)
			}
			if again := Classify(x, y); again != z {
				t.Fatalf("Classify(%v, %v) not deterministic: %d then %d", x, y, z, again)
			}
		}
	}
}

func TestDunkZoneShadowed(t *testing.T) {
	for x := 23.0; x <= 27; x += 0.25 {
		for y := 3.0; y <= 7; y += 0.25 {
			if got := Classify(x, y); got == 16 {
				t.Fatalf("Classify(%v, %v) = 16, dunk zone should be unreachable", x, y)
			}
		}
	}
}

func TestClassifyNaN(t *testing.T) {
	if got := Classify(math.NaN(), 5); got != Unclassified {
		t.Errorf("Classify(NaN, 5) = %d", got)
	}
	if got := Classify(math.Inf(1), math.Inf(-1)); got != 2 {
		// +Inf x is >= 40 and -Inf y is <= 10.
		t.Errorf("Classify(+Inf, -Inf) = %d", got)
	}
}

func TestName(t *testing.T) {
	if Name(1) != "left corner 3" || Name(99) != "unclassified" {
		t.Errorf("unexpected names %q %q", Name(1), Name(99))
	}
	if !IsThree(5) || IsThree(6) {
		t.Error("IsThree mismatch")
	}
}
