// Package metronome computes the click events of a song from its tempo map and
// meter, and schedules them slightly ahead of a playback clock. Producing
// sound is left to the caller.
package metronome

import (
	"math"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/meter"
	"github.com/goodmultitracks/multitrack/tempo"
)

type (
	Mode int

	// Click is one metronome click. Pulse is the 0-based pulse in the measure.
	Click struct {
		Time    float64
		Measure int
		Pulse   int
		Accent  int
		Volume  float64
	}
)

const (
	// MacroMode clicks only the macro beats, e.g. twice per measure in 6/8.
	MacroMode Mode = iota
	// AllMode clicks every pulse, accenting only the downbeat.
	AllMode
	// AccentedMode clicks every pulse with the accent pattern of the meter.
	AccentedMode
)

func (m Mode) String() string {
	switch m {
	case AllMode:
		return "all"
	case AccentedMode:
		return "accented"
	default:
		return "macro"
	}
}

// ParseMode is the inverse of Mode.String. Unknown names give MacroMode and
// false.
func ParseMode(s string) (Mode, bool) {
	for _, m := range []Mode{MacroMode, AllMode, AccentedMode} {
		if m.String() == s {
			return m, true
		}
	}
	return MacroMode, false
}

// Volume maps an accent level to a click volume.
func Volume(accent int) float64 {
	switch accent {
	case meter.Downbeat:
		return 1.0
	case meter.StrongAccent:
		return 0.7
	default:
		return 0.4
	}
}

// cursor walks the pulses of a song. The position of each pulse is derived
// from the tempo map, never accumulated, so clicks stay on the grid lines
// however long the song plays.
type cursor struct {
	m       *tempo.Map
	mode    Mode
	measure int
	pulse   int
	info    meter.Info
	seg     int
}

func newCursor(m *tempo.Map, mode Mode, from float64) *cursor {
	c := &cursor{m: m, mode: mode, measure: max(int(math.Floor(m.MeasureAt(from))), 1)}
	c.analyze()
	for c.time() < from-tempo.Epsilon {
		c.advance()
	}
	return c
}

func (c *cursor) analyze() {
	seg := c.m.SegmentAtMeasure(float64(c.measure))
	c.info = meter.Analyze(seg.Signature, seg.Subdivision)
}

func (c *cursor) time() float64 {
	return c.m.SecondsAt(float64(c.measure) + float64(c.pulse)/float64(c.info.Pulses))
}

// advance moves to the next pulse that clicks in the current mode.
func (c *cursor) advance() {
	for {
		c.pulse++
		if c.pulse >= c.info.Pulses {
			c.pulse = 0
			c.measure++
			c.analyze()
		}
		if c.clicks() {
			return
		}
	}
}

func (c *cursor) clicks() bool {
	return c.mode != MacroMode || c.pulse == 0 || c.info.IsMacroBeat(c.pulse)
}

func (c *cursor) click() Click {
	accent := c.info.Accents[c.pulse]
	switch c.mode {
	case MacroMode:
		accent = meter.StrongAccent
		if c.pulse == 0 {
			accent = meter.Downbeat
		}
	case AllMode:
		accent = meter.WeakAccent
		if c.pulse == 0 {
			accent = meter.Downbeat
		}
	}
	return Click{Time: c.time(), Measure: c.measure, Pulse: c.pulse, Accent: accent, Volume: Volume(accent)}
}

// Clicks returns the clicks in [from, to) of the song, limited to its
// duration when it has one.
func Clicks(song *multitrack.Song, mode Mode, from, to float64) []Click {
	if song.Duration > 0 {
		to = min(to, song.Duration)
	}
	from = max(from, 0)
	var ret []Click
	for c := newCursor(tempo.ForSong(song), mode, from); c.time() < to-tempo.Epsilon; c.advance() {
		ret = append(ret, c.click())
	}
	return ret
}
