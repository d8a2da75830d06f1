package multitrack

import (
	"errors"
	"fmt"
	"math"
)

type (
	// Song is the aggregate the timeline engine works on: the length of the
	// song in seconds, the base tempo and time signature that apply before the
	// first tempo change, the tempo map itself and the marker collections.
	// All the Time fields in a Song are absolute positions in seconds.
	Song struct {
		Title         string          `yaml:",omitempty"`
		Duration      float64         // length of the song, in seconds
		Tempo         float64         // base tempo, in beats per minute
		TimeSignature string          `yaml:",omitempty"` // base time signature, "4/4" if empty
		TempoChanges  []TempoChange   `yaml:",omitempty"`
		Sections      []SectionMarker `yaml:",omitempty"`
		Chords        []ChordMarker   `yaml:",omitempty"`
		Tracks        []Track         `yaml:",omitempty"`
	}

	// TempoChange is a point in the tempo map where the tempo and/or time
	// signature changes. Tempo counts beats of the time signature's beat unit,
	// so a measure after the change lasts N*60/Tempo seconds.
	TempoChange struct {
		Time          float64 // seconds
		Tempo         float64
		TimeSignature string `yaml:",omitempty"`
		// Subdivision is an explicit additive grouping of the pulses of a
		// measure, e.g. "2+2+3" for 7/8. Empty means the grouping is derived
		// from the time signature.
		Subdivision string `yaml:",omitempty"`
		// Hidden changes still affect timing, they are just not displayed.
		Hidden bool   `yaml:",omitempty"`
		Curve  *Curve `yaml:",omitempty"`
	}

	// Curve describes a gradual tempo ramp starting at the TempoChange it is
	// attached to and reaching TargetTempo at TargetTime (seconds).
	Curve struct {
		Type        CurveType
		TargetTempo float64
		TargetTime  float64
	}

	CurveType string

	// Track is an audio stem of the song. The engine only needs the ID to key
	// the waveform peaks of the track.
	Track struct {
		ID     string
		Name   string  `yaml:",omitempty"`
		File   string  `yaml:",omitempty"`
		Volume float64 `yaml:",omitempty"`
		Muted  bool    `yaml:",omitempty"`
		Solo   bool    `yaml:",omitempty"`
	}
)

const (
	LinearCurve      CurveType = "linear"
	ExponentialCurve CurveType = "exponential"
)

// Copy makes a deep copy of a Song.
func (s Song) Copy() Song {
	ret := s
	if s.TempoChanges != nil {
		ret.TempoChanges = make([]TempoChange, len(s.TempoChanges))
		for i, c := range s.TempoChanges {
			ret.TempoChanges[i] = c.Copy()
		}
	}
	if s.Sections != nil {
		ret.Sections = append([]SectionMarker{}, s.Sections...)
	}
	if s.Chords != nil {
		ret.Chords = append([]ChordMarker{}, s.Chords...)
	}
	if s.Tracks != nil {
		ret.Tracks = append([]Track{}, s.Tracks...)
	}
	return ret
}

// Copy makes a deep copy of a TempoChange; the Curve is not shared.
func (c TempoChange) Copy() TempoChange {
	if c.Curve != nil {
		curve := *c.Curve
		c.Curve = &curve
	}
	return c
}

// Signature returns the parsed base time signature of the song, falling back
// to 4/4 if it is missing or malformed.
func (s *Song) Signature() TimeSignature {
	return SignatureOrDefault(s.TimeSignature)
}

// WithTempoChanges returns a copy of the song with the tempo map replaced by
// changes. The receiver is left untouched.
func (s Song) WithTempoChanges(changes []TempoChange) Song {
	ret := s.Copy()
	ret.TempoChanges = changes
	return ret
}

// Validate checks that the song is something the timeline can work with.
// All problems found are reported, joined together.
func (s *Song) Validate() error {
	var errs []error
	if !(s.Duration > 0) || math.IsInf(s.Duration, 0) {
		errs = append(errs, errors.New("song duration should be positive"))
	}
	if !validTempo(s.Tempo) {
		errs = append(errs, fmt.Errorf("song tempo should be between %v and %v BPM", MinTempo, MaxTempo))
	}
	if s.TimeSignature != "" {
		if _, err := ParseTimeSignature(s.TimeSignature); err != nil {
			errs = append(errs, err)
		}
	}
	for i, c := range s.TempoChanges {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tempo change %d: %w", i, err))
		}
	}
	ids := map[string]bool{}
	for _, t := range s.Tracks {
		if t.ID == "" {
			errs = append(errs, errors.New("track without an ID"))
			continue
		}
		if ids[t.ID] {
			errs = append(errs, fmt.Errorf("duplicate track ID %q", t.ID))
		}
		ids[t.ID] = true
	}
	return errors.Join(errs...)
}

func (c *TempoChange) Validate() error {
	if !(c.Time >= 0) || math.IsInf(c.Time, 0) {
		return fmt.Errorf("invalid time %v", c.Time)
	}
	if !validTempo(c.Tempo) {
		return fmt.Errorf("invalid tempo %v", c.Tempo)
	}
	sig := DefaultTimeSignature
	if c.TimeSignature != "" {
		var err error
		if sig, err = ParseTimeSignature(c.TimeSignature); err != nil {
			return err
		}
	}
	if c.Subdivision != "" {
		grouping, err := ParseSubdivision(c.Subdivision)
		if err != nil {
			return err
		}
		sum := 0
		for _, g := range grouping {
			sum += g
		}
		if sum != sig.Beats {
			return fmt.Errorf("subdivision %q does not add up to %d", c.Subdivision, sig.Beats)
		}
	}
	if c.Curve != nil {
		switch c.Curve.Type {
		case LinearCurve, ExponentialCurve:
		default:
			return fmt.Errorf("unknown curve type %q", c.Curve.Type)
		}
		if !validTempo(c.Curve.TargetTempo) {
			return fmt.Errorf("invalid curve target tempo %v", c.Curve.TargetTempo)
		}
		if !(c.Curve.TargetTime > c.Time) {
			return errors.New("curve should end after it starts")
		}
	}
	return nil
}

// MinTempo and MaxTempo bound every tempo the engine produces.
const (
	MinTempo = 10
	MaxTempo = 999
)

func validTempo(t float64) bool {
	return t >= MinTempo && t <= MaxTempo
}
