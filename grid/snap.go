package grid

import (
	"math"
	"sort"
)

// Snap returns the line position nearest to t. lines must be sorted by
// position. With snapping disabled or no lines, t is returned as is. When t
// is exactly halfway between two lines, the earlier one wins.
func Snap(lines []Line, t float64, enabled bool) float64 {
	if !enabled || len(lines) == 0 {
		return t
	}
	i := sort.Search(len(lines), func(i int) bool { return lines[i].Position >= t })
	return nearest(t, i, len(lines), func(i int) float64 { return lines[i].Position })
}

// SnapPositions is Snap over a sorted slice of plain positions.
func SnapPositions(positions []float64, t float64) float64 {
	if len(positions) == 0 {
		return t
	}
	i := sort.SearchFloat64s(positions, t)
	return nearest(t, i, len(positions), func(i int) float64 { return positions[i] })
}

func nearest(t float64, i, n int, at func(int) float64) float64 {
	if i == 0 {
		return at(0)
	}
	if i == n {
		return at(n - 1)
	}
	before, after := at(i-1), at(i)
	if after-t < t-before {
		return after
	}
	return before
}

// Unit is a musical unit for SnapToUnit.
type Unit int

const (
	MeasureUnit Unit = iota
	BeatUnit
	SixteenthUnit
)

// SnapToUnit rounds t to the nearest multiple of a unit at a constant tempo,
// ignoring the tempo map. It serves places that need a quick snap without
// a grid, like nudging a marker with the keyboard.
func SnapToUnit(t, bpm float64, unit Unit, beatsPerMeasure int) float64 {
	if !(bpm > 0) {
		return t
	}
	size := 60 / bpm
	switch unit {
	case MeasureUnit:
		size *= float64(max(beatsPerMeasure, 1))
	case SixteenthUnit:
		size /= 4
	}
	return math.Round(t/size) * size
}
