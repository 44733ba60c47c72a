// Package zone maps raw court coordinates to integer court regions.
//
// Coordinates use the source's native system: x across the court in [0,50],
// y away from the baseline in [0,47]. Classification is an ordered cascade
// in three stages (three-point, mid-range, paint); the first matching
// predicate wins and a later stage is only consulted when every predicate of
// the earlier stages failed.
package zone

import "math"

// Unclassified is returned when no predicate matches.
const Unclassified = 0

// Count is the number of zone ids including Unclassified.
const Count = 17

var names = [Count]string{
	"unclassified",
	"left corner 3",
	"right corner 3",
	"top of arc 3",
	"deep side 3",
	"deep straight 3",
	"left wing mid",
	"right wing mid",
	"top of key mid",
	"left baseline mid",
	"right baseline mid",
	"lower paint",
	"upper paint",
	"paint edge",
	"restricted area",
	"at the rim",
	"dunk",
}

// Classify returns the zone id for a shot at (x, y). It never fails; NaN
// coordinates fail every comparison and come back Unclassified.
func Classify(x, y float64) int {
	if z := threePoint(x, y); z != Unclassified {
		return z
	}
	if z := midRange(x, y); z != Unclassified {
		return z
	}
	return paint(x, y)
}

func threePoint(x, y float64) int {
	switch {
	case x <= 10 && y <= 10:
		return 1
	case x >= 40 && y <= 10:
		return 2
	case 20 <= x && x <= 30 && y >= 30:
		return 3
	case x < 10 || x > 40:
		return 4
	case y >= 35:
		return 5
	}
	return Unclassified
}

func midRange(x, y float64) int {
	switch {
	case 10 < x && x < 20 && 10 < y && y < 25:
		return 6
	case 30 < x && x < 40 && 10 < y && y < 25:
		return 7
	case 20 <= x && x <= 30 && 20 <= y && y < 30:
		return 8
	case x < 10 && 10 <= y && y < 30:
		return 9
	case x > 40 && 10 <= y && y < 30:
		return 10
	}
	return Unclassified
}

func paint(x, y float64) int {
	switch {
	case 15 <= x && x <= 35 && 0 <= y && y <= 10:
		if 20 <= x && x <= 30 {
			return 15
		}
		return 14
	case 15 <= x && x <= 35 && 10 < y && y <= 20:
		return 11
	case 15 <= x && x <= 35 && 20 < y && y <= 30:
		return 12
	case (10 < x && x < 20) || (30 < x && x < 40):
		return 13
	}
	// Unreachable: the rim case above covers this box.
	if math.Abs(x-25) <= 2 && math.Abs(y-5) <= 2 {
		return 16
	}
	return Unclassified
}

// Name returns a short label for a zone id.
func Name(id int) string {
	if id < 0 || id >= Count {
		return names[Unclassified]
	}
	return names[id]
}

// IsThree reports whether id is one of the three-point zones.
func IsThree(id int) bool {
	return id >= 1 && id <= 5
}
