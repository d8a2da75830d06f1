package timeline

import (
	"time"
)

// Cursor is the playback position as a function of the wall clock. It holds
// no moving state: the position is recomputed from the start of playback at
// every frame, so pausing the frame loop loses nothing.
type Cursor struct {
	WallStart time.Time
	SongStart float64
	Playing   bool
}

// At returns the song time at wall clock time now.
func (c Cursor) At(now time.Time) float64 {
	if !c.Playing {
		return c.SongStart
	}
	return c.SongStart + now.Sub(c.WallStart).Seconds()
}

// Cursor returns the playback cursor.
func (m *Model) Cursor() Cursor { return m.cursor }

// PlayPosition returns the song time of the cursor now, clamped to the song.
// Playback stops at the end of the song.
func (m *Model) PlayPosition(now time.Time) float64 {
	t := m.cursor.At(now)
	if d := m.d.Song.Duration; t >= d {
		if m.cursor.Playing {
			m.cursor = Cursor{SongStart: d}
			m.sendPlaying()
		}
		return d
	}
	return max(t, 0)
}

// Seek moves the cursor to t, clamped to [0, duration]. Playback continues
// from the new position if it was on.
func (m *Model) Seek(t float64, now time.Time) {
	t = max(min(t, m.d.Song.Duration), 0)
	m.cursor = Cursor{WallStart: now, SongStart: t, Playing: m.cursor.Playing && t < m.d.Song.Duration}
	m.sendPlaying()
}

// SeekPointer seeks to the time under a content x coordinate, snapped when
// snapping is on.
func (m *Model) SeekPointer(x float64, now time.Time) {
	m.Seek(m.PointerTime(x), now)
}

func (m *Model) setPlaying(playing bool, now time.Time) {
	pos := m.PlayPosition(now)
	if playing && pos >= m.d.Song.Duration {
		pos = 0
	}
	m.cursor = Cursor{WallStart: now, SongStart: pos, Playing: playing}
	m.sendPlaying()
}

func (m *Model) sendPlaying() {
	if m.broker != nil {
		TrySend(m.broker.ToPlayer, any(m.cursor))
	}
}
