package tempo

import (
	"math"
	"sort"

	"github.com/goodmultitracks/multitrack"
)

type (
	// Map is a tempo map prepared for conversions: the tempo changes are
	// normalized and integrated into a table of segments, each segment
	// knowing both its start time and the (fractional) measure number at that
	// time. A Map is immutable after construction and safe for concurrent use.
	Map struct {
		segments []Segment
		changes  []multitrack.TempoChange
		base     Segment
	}

	// Segment is a stretch of the song with constant tempo and signature.
	Segment struct {
		Start       float64 // seconds
		Measure     float64 // 1-based measure number at Start
		Tempo       float64
		Signature   multitrack.TimeSignature
		Subdivision []int // nil if derived from the signature
		Curve       *multitrack.Curve
	}
)

// Epsilon is the tolerance used when comparing two positions in seconds.
const Epsilon = 1e-6

// FallbackTempo replaces any non-positive or non-finite tempo.
const FallbackTempo = 120

// NewMap builds a Map from a tempo change list; baseTempo and signature
// apply before the first change. The changes need not be sorted and are not
// modified.
func NewMap(changes []multitrack.TempoChange, baseTempo float64, signature string) *Map {
	base := Segment{
		Start:     0,
		Measure:   1,
		Tempo:     sanitizeTempo(baseTempo, FallbackTempo),
		Signature: multitrack.SignatureOrDefault(signature),
	}
	m := &Map{base: base, changes: Normalize(changes)}
	cur := base
	for _, c := range m.changes {
		if c.Time > cur.Start+Epsilon {
			next := cur.MeasureAt(c.Time)
			m.segments = append(m.segments, cur)
			cur = Segment{Start: c.Time, Measure: next, Tempo: cur.Tempo, Signature: cur.Signature, Subdivision: cur.Subdivision}
		}
		// a change at the current position applies immediately
		cur.apply(c)
	}
	m.segments = append(m.segments, cur)
	return m
}

// ForSong is a shorthand for NewMap with the tempo map of the song.
func ForSong(song *multitrack.Song) *Map {
	return NewMap(song.TempoChanges, song.Tempo, song.TimeSignature)
}

// Normalize returns a sorted copy of changes with at most one entry per
// distinct time. Entries closer than Epsilon collapse into one, the one
// appearing last in the input wins. Negative times are moved to zero and
// entries with a non-finite time are dropped.
func Normalize(changes []multitrack.TempoChange) []multitrack.TempoChange {
	ret := make([]multitrack.TempoChange, 0, len(changes))
	for _, c := range changes {
		if math.IsNaN(c.Time) || math.IsInf(c.Time, 0) {
			continue
		}
		c = c.Copy()
		if c.Time < 0 {
			c.Time = 0
		}
		ret = append(ret, c)
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Time < ret[j].Time })
	out := ret[:0]
	for _, c := range ret {
		if len(out) > 0 && c.Time-out[len(out)-1].Time < Epsilon {
			out[len(out)-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *Segment) apply(c multitrack.TempoChange) {
	s.Tempo = sanitizeTempo(c.Tempo, s.Tempo)
	if c.TimeSignature != "" {
		if sig, err := multitrack.ParseTimeSignature(c.TimeSignature); err == nil {
			s.Signature = sig
			s.Subdivision = nil
		}
	}
	if c.Subdivision != "" {
		if g, err := multitrack.ParseSubdivision(c.Subdivision); err == nil && sum(g) == s.Signature.Beats {
			s.Subdivision = g
		}
	}
	s.Curve = c.Curve
}

// MeasureDuration returns the length of one measure in the segment, seconds.
func (s Segment) MeasureDuration() float64 {
	return s.Signature.MeasureDuration(s.Tempo)
}

// PulseDuration returns the length of one beat unit, in seconds.
func (s Segment) PulseDuration() float64 {
	return 60 / s.Tempo
}

// MeasureAt extrapolates the segment to time t.
func (s Segment) MeasureAt(t float64) float64 {
	return s.Measure + (t-s.Start)/s.MeasureDuration()
}

// SecondsAt extrapolates the segment to the given measure.
func (s Segment) SecondsAt(measure float64) float64 {
	return s.Start + (measure-s.Measure)*s.MeasureDuration()
}

// Segments returns the segments of the map in order. The first segment
// always starts at time 0, measure 1.
func (m *Map) Segments() []Segment {
	return m.segments
}

// Changes returns the normalized tempo changes the map was built from.
func (m *Map) Changes() []multitrack.TempoChange {
	return m.changes
}

// Base returns the state before any tempo change is applied.
func (m *Map) Base() Segment {
	return m.base
}

// SegmentAt returns the segment active at time t. Times before zero belong to
// the first segment.
func (m *Map) SegmentAt(t float64) Segment {
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].Start > t }) - 1
	return m.segments[max(i, 0)]
}

// SegmentAtMeasure returns the segment containing the given measure.
func (m *Map) SegmentAtMeasure(measure float64) Segment {
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].Measure > measure }) - 1
	return m.segments[max(i, 0)]
}

// SecondsAt converts a 1-based measure number to seconds. Measures at or
// before 1 map to the start of the song.
func (m *Map) SecondsAt(measure float64) float64 {
	if !(measure > 1) {
		return 0
	}
	return m.SegmentAtMeasure(measure).SecondsAt(measure)
}

// MeasureAt converts seconds to a fractional 1-based measure number. Times
// at or before 0 map to measure 1.
func (m *Map) MeasureAt(t float64) float64 {
	if !(t > 0) {
		return 1
	}
	return m.SegmentAt(t).MeasureAt(t)
}

// SignatureAt returns the time signature active at time t.
func (m *Map) SignatureAt(t float64) multitrack.TimeSignature {
	return m.SegmentAt(t).Signature
}

// ChangeBefore returns the index of the last change strictly before t, or -1.
func (m *Map) ChangeBefore(t float64) int {
	return sort.Search(len(m.changes), func(i int) bool { return m.changes[i].Time > t-Epsilon }) - 1
}

// ChangeAt returns the index of the change at t (within Epsilon), or -1.
func (m *Map) ChangeAt(t float64) int {
	i := sort.Search(len(m.changes), func(i int) bool { return m.changes[i].Time > t-Epsilon })
	if i < len(m.changes) && m.changes[i].Time < t+Epsilon {
		return i
	}
	return -1
}

func sanitizeTempo(t, fallback float64) float64 {
	if !(t > 0) || math.IsInf(t, 0) {
		return fallback
	}
	return t
}

func sum(g []int) int {
	ret := 0
	for _, v := range g {
		ret += v
	}
	return ret
}
