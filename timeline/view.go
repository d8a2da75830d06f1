package timeline

import (
	"github.com/goodmultitracks/multitrack/grid"
	"github.com/goodmultitracks/multitrack/tempo"
)

type (
	gridKey struct {
		songVersion      int
		pixelsPerSecond  float64
		start, end       float64
		showBeats        bool
		showSubdivisions bool
	}

	gridCache struct {
		key    gridKey
		valid  bool
		lines  []grid.Line
		misses int
	}
)

// Viewport returns the geometry of the timeline. At 100 % zoom the whole
// song fits the container.
func (m *Model) Viewport() grid.Viewport {
	return grid.Viewport{
		Duration:       m.d.Song.Duration,
		Width:          m.d.ContainerWidth * float64(m.d.Zoom) / 100,
		ScrollLeft:     m.d.ScrollLeft,
		ContainerWidth: m.d.ContainerWidth,
	}
}

// TempoMap returns the tempo map of the song.
func (m *Model) TempoMap() *tempo.Map {
	return tempo.ForSong(&m.d.Song)
}

// GridLines returns the grid lines of the visible window. The lines are
// recomputed only when the song, the zoom, the window or the shown levels
// change; the returned slice must not be modified.
func (m *Model) GridLines() []grid.Line {
	v := m.Viewport()
	start, end := v.Visible()
	key := gridKey{
		songVersion:      m.songVersion,
		pixelsPerSecond:  v.PixelsPerSecond(),
		start:            start,
		end:              end,
		showBeats:        m.d.ShowBeats,
		showSubdivisions: m.d.ShowSubdivisions,
	}
	if m.grid.valid && m.grid.key == key {
		return m.grid.lines
	}
	m.grid.misses++
	m.grid.key, m.grid.valid = key, true
	m.grid.lines = grid.Lines(grid.Options{
		Duration:         m.d.Song.Duration,
		Tempo:            m.d.Song.Tempo,
		TimeSignature:    m.d.Song.TimeSignature,
		TempoChanges:     m.d.Song.TempoChanges,
		ShowBeats:        m.d.ShowBeats,
		ShowSubdivisions: m.d.ShowSubdivisions,
		Zoom:             key.pixelsPerSecond,
		VisibleStart:     start,
		VisibleEnd:       end,
	})
	return m.grid.lines
}

// GridComputations returns how many times the grid lines were computed.
func (m *Model) GridComputations() int { return m.grid.misses }

// MeasureBars returns the measure lines of the visible window with their
// musical context.
func (m *Model) MeasureBars() []grid.MeasureBar {
	return grid.MeasureBars(m.GridLines(), m.TempoMap())
}

// TimeMarkers returns the time ruler labels of the visible window.
func (m *Model) TimeMarkers() []grid.TimeMarker {
	v := m.Viewport()
	start, end := v.Visible()
	return grid.TimeMarkers(start, end, v.PixelsPerSecond())
}

// PointerTime converts a content x coordinate to song time, snapped to the
// grid when snapping is on.
func (m *Model) PointerTime(x float64) float64 {
	t := m.Viewport().TimeAt(x)
	return grid.Snap(m.GridLines(), t, m.d.Snap)
}
