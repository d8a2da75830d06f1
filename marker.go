package multitrack

import "sort"

type (
	// Marker is one of TempoMarker, SectionMarker or ChordMarker. The set of
	// implementations is closed; consumers switch on the concrete type.
	Marker interface {
		MarkerTime() float64
		isMarker()
	}

	// TempoMarker is a TempoChange viewed as a marker on the timeline. Index
	// is the position of the change in Song.TempoChanges.
	TempoMarker struct {
		Index int
		TempoChange
	}

	// SectionMarker labels a part of the song, e.g. "Chorus".
	SectionMarker struct {
		ID    string
		Time  float64
		Label string
		Type  SectionType `yaml:",omitempty"`
	}

	SectionType string

	ChordMarker struct {
		Time   float64
		Chord  string
		Hidden bool `yaml:",omitempty"`
	}
)

const (
	IntroSection  SectionType = "intro"
	VerseSection  SectionType = "verse"
	ChorusSection SectionType = "chorus"
	BridgeSection SectionType = "bridge"
	OutroSection  SectionType = "outro"
	CustomSection SectionType = "custom"
)

func (m TempoMarker) MarkerTime() float64   { return m.Time }
func (m SectionMarker) MarkerTime() float64 { return m.Time }
func (m ChordMarker) MarkerTime() float64   { return m.Time }

func (TempoMarker) isMarker()   {}
func (SectionMarker) isMarker() {}
func (ChordMarker) isMarker()   {}

// Markers returns all the markers of the song ordered by time. Markers at
// the same time keep the order tempo, section, chord. Hidden tempo changes and
// chords are left out unless includeHidden is true.
func (s *Song) Markers(includeHidden bool) []Marker {
	ret := make([]Marker, 0, len(s.TempoChanges)+len(s.Sections)+len(s.Chords))
	for i, c := range s.TempoChanges {
		if c.Hidden && !includeHidden {
			continue
		}
		ret = append(ret, TempoMarker{Index: i, TempoChange: c.Copy()})
	}
	for _, m := range s.Sections {
		ret = append(ret, m)
	}
	for _, m := range s.Chords {
		if m.Hidden && !includeHidden {
			continue
		}
		ret = append(ret, m)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].MarkerTime() < ret[j].MarkerTime()
	})
	return ret
}

// SectionAt returns the last section starting at or before t.
func (s *Song) SectionAt(t float64) (SectionMarker, bool) {
	var ret SectionMarker
	found := false
	for _, m := range s.Sections {
		if m.Time <= t && (!found || m.Time >= ret.Time) {
			ret, found = m, true
		}
	}
	return ret, found
}
