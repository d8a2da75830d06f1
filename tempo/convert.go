package tempo

import (
	"math"

	"github.com/goodmultitracks/multitrack"
)

// MeasureToSeconds converts a 1-based, possibly fractional measure number to
// an absolute time in seconds under the given tempo map. baseTempo and
// signature apply before the first change; an empty signature means 4/4.
func MeasureToSeconds(measure float64, changes []multitrack.TempoChange, baseTempo float64, signature string) float64 {
	if len(changes) == 0 {
		sig := multitrack.SignatureOrDefault(signature)
		if !(measure > 1) {
			return 0
		}
		return (measure - 1) * sig.MeasureDuration(sanitizeTempo(baseTempo, FallbackTempo))
	}
	return NewMap(changes, baseTempo, signature).SecondsAt(measure)
}

// SecondsToMeasure is the inverse of MeasureToSeconds.
func SecondsToMeasure(seconds float64, changes []multitrack.TempoChange, baseTempo float64, signature string) float64 {
	if len(changes) == 0 {
		sig := multitrack.SignatureOrDefault(signature)
		if !(seconds > 0) {
			return 1
		}
		return 1 + seconds/sig.MeasureDuration(sanitizeTempo(baseTempo, FallbackTempo))
	}
	return NewMap(changes, baseTempo, signature).MeasureAt(seconds)
}

// WarpBPM returns the tempo at which deltaMeasures measures of beatsPerMeasure
// beats last exactly deltaSeconds. The result is clamped to
// [multitrack.MinTempo, multitrack.MaxTempo]; degenerate input yields
// FallbackTempo instead of an infinite or NaN tempo.
func WarpBPM(deltaMeasures, deltaSeconds float64, beatsPerMeasure int) float64 {
	if !(deltaSeconds > 0) || !(deltaMeasures > 0) || beatsPerMeasure <= 0 {
		return FallbackTempo
	}
	bpm := deltaMeasures * float64(beatsPerMeasure) * 60 / deltaSeconds
	if math.IsNaN(bpm) {
		return FallbackTempo
	}
	return min(max(bpm, multitrack.MinTempo), multitrack.MaxTempo)
}

// TempoAt returns the instantaneous tempo at t, following tempo curves. The
// conversions above treat every segment as constant tempo; this is meant for
// readouts only.
func (m *Map) TempoAt(t float64) float64 {
	s := m.SegmentAt(t)
	c := s.Curve
	if c == nil || !(c.TargetTempo > 0) || !(c.TargetTime > s.Start) {
		return s.Tempo
	}
	if t >= c.TargetTime {
		return c.TargetTempo
	}
	frac := (t - s.Start) / (c.TargetTime - s.Start)
	if frac <= 0 {
		return s.Tempo
	}
	switch c.Type {
	case multitrack.ExponentialCurve:
		return s.Tempo * math.Pow(c.TargetTempo/s.Tempo, frac)
	default:
		return s.Tempo + (c.TargetTempo-s.Tempo)*frac
	}
}

// GridToAudio maps a time on the unwarped grid, where the whole song runs at
// the base tempo and signature, to the time in the audio.
func (m *Map) GridToAudio(grid float64) float64 {
	return m.SecondsAt(1 + grid/m.base.MeasureDuration())
}

// AudioToGrid is the inverse of GridToAudio.
func (m *Map) AudioToGrid(audio float64) float64 {
	return (m.MeasureAt(audio) - 1) * m.base.MeasureDuration()
}
