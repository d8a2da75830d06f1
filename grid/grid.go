// Package grid generates the measure, beat and subdivision lines of the
// timeline and snaps times to them.
package grid

import (
	"math"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/meter"
	"github.com/goodmultitracks/multitrack/tempo"
)

type (
	// Line is one grid line. Measure is the 1-based measure number for
	// measure lines and 0 for the others.
	Line struct {
		Position float64 // seconds
		Opacity  float64
		Type     LineType
		Accent   int
		Measure  int `json:",omitempty"`
	}

	LineType int

	// Options are the inputs of Lines. Zoom is in pixels per second and
	// decides which levels of the hierarchy are dense enough to draw. A zero
	// VisibleEnd means the window extends to the end of the song.
	Options struct {
		Duration         float64
		Tempo            float64
		TimeSignature    string
		TempoChanges     []multitrack.TempoChange
		ShowBeats        bool
		ShowSubdivisions bool
		Zoom             float64
		VisibleStart     float64
		VisibleEnd       float64
	}
)

const (
	MeasureLine LineType = iota
	BeatLine
	SubdivisionLine
)

// Minimum distances between neighbouring lines, in pixels, before a level of
// the hierarchy is drawn.
const (
	MinBeatSpacing        = 8
	MinPulseSpacing       = 24
	MinSubdivisionSpacing = 12
)

const (
	measureOpacity     = 1.0
	beatOpacity        = 0.6
	pulseOpacity       = 0.3
	subdivisionOpacity = 0.2
)

func (t LineType) String() string {
	switch t {
	case MeasureLine:
		return "measure"
	case BeatLine:
		return "beat"
	default:
		return "subdivision"
	}
}

// Lines returns the grid lines in the visible window, ordered by position.
//
// The tempo map is always walked from the first measure, even when the window
// starts later, and the walk stops one measure after the window ends. Measure
// lines sit exactly where tempo.MeasureToSeconds puts integer measures; beats
// and pulses are spread evenly in measure space, so they too follow tempo
// changes that fall inside a measure.
func Lines(o Options) []Line {
	if !(o.Duration > 0) || math.IsInf(o.Duration, 0) {
		return nil
	}
	start, end := o.VisibleStart, o.VisibleEnd
	if !(end > 0) || end > o.Duration {
		end = o.Duration
	}
	if start < 0 {
		start = 0
	}
	var lines []Line
	visible := func(t float64) bool {
		return t >= start-tempo.Epsilon && t <= end+tempo.Epsilon && t < o.Duration
	}
	w := newWalker(tempo.NewMap(o.TempoChanges, o.Tempo, o.TimeSignature))
	for measure := 1; ; measure++ {
		t := w.secondsAt(float64(measure))
		if t >= o.Duration {
			break
		}
		seg := w.segment()
		info := w.info()
		next := w.secondsAt(float64(measure + 1))
		measureDuration := next - t
		if next >= start-tempo.Epsilon && t <= end+tempo.Epsilon {
			if visible(t) {
				lines = append(lines, Line{Position: t, Opacity: measureOpacity, Type: MeasureLine, Accent: meter.Downbeat, Measure: measure})
			}
			if o.ShowBeats {
				lines = appendPulses(lines, o, w, measure, info, seg, visible)
			}
		}
		if t > end+measureDuration {
			break
		}
	}
	return lines
}

func appendPulses(lines []Line, o Options, w *walker, measure int, info meter.Info, seg tempo.Segment, visible func(float64) bool) []Line {
	pulseSpacing := seg.PulseDuration() * o.Zoom
	macroSpacing := pulseSpacing * float64(minGroup(info.Grouping))
	showMacro := macroSpacing >= MinBeatSpacing
	showPulses := pulseSpacing >= MinPulseSpacing
	showSixteenths := o.ShowSubdivisions && pulseSpacing/4 >= MinSubdivisionSpacing
	if !showMacro {
		return lines
	}
	pulses := float64(info.Pulses)
	for p := 0; p < info.Pulses; p++ {
		if p > 0 {
			t := w.secondsAt(float64(measure) + float64(p)/pulses)
			accent := info.Accents[p]
			switch {
			case info.IsMacroBeat(p):
				if visible(t) {
					opacity := beatOpacity
					if accent == meter.Downbeat {
						opacity = measureOpacity
					}
					lines = append(lines, Line{Position: t, Opacity: opacity, Type: BeatLine, Accent: accent})
				}
			case showPulses:
				if visible(t) {
					lines = append(lines, Line{Position: t, Opacity: pulseOpacity, Type: SubdivisionLine, Accent: accent})
				}
			}
		}
		if showSixteenths {
			for i := 1; i < 4; i++ {
				t := w.secondsAt(float64(measure) + (float64(p)+float64(i)/4)/pulses)
				if visible(t) {
					lines = append(lines, Line{Position: t, Opacity: subdivisionOpacity, Type: SubdivisionLine, Accent: meter.WeakAccent})
				}
			}
		}
	}
	return lines
}

// Positions returns the positions of the lines.
func Positions(lines []Line) []float64 {
	ret := make([]float64, len(lines))
	for i, l := range lines {
		ret[i] = l.Position
	}
	return ret
}

func minGroup(grouping []int) int {
	ret := 0
	for i, g := range grouping {
		if i == 0 || g < ret {
			ret = g
		}
	}
	return max(ret, 1)
}
