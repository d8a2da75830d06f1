package timeline

import (
	"errors"
	"fmt"

	"github.com/goodmultitracks/multitrack/tempo"
	"github.com/goodmultitracks/multitrack/warp"
)

var ErrWarpModeOff = errors.New("warp mode is off")

// WarpDown starts a warp gesture on the measure under x, a content
// coordinate. It fails outside warp mode, while another gesture is going on
// and on measures that have no anchor before them.
func (m *Model) WarpDown(x float64) error {
	if !m.d.WarpMode {
		return ErrWarpModeOff
	}
	return m.gesture.Down(m.TempoMap(), m.Viewport(), x)
}

// WarpMove moves the ghost of the dragged measure. ok is false when there is
// no gesture or x is not after the anchor.
func (m *Model) WarpMove(x float64) (ghost float64, ok bool) {
	return m.gesture.Move(x)
}

// WarpUp ends the gesture and commits the warp. The song is replaced in one
// undoable step and OnSongUpdate is called once; a release before the anchor
// or a commit that would move the dragged measure past the next anchor leaves
// the song untouched.
func (m *Model) WarpUp(x float64) bool {
	r, ok := m.gesture.Up(x)
	if !ok {
		return false
	}
	song, ok := warp.Commit(m.d.Song, r.AnchorMeasure, r.DragMeasure, r.NewBPM)
	if !ok {
		m.Alerts().AddNamed("Warp", fmt.Sprintf("Measure %d cannot be moved past the next tempo change", r.DragMeasure), Warning)
		return false
	}
	defer m.change("Warp", TempoMapChange, MajorChange)()
	m.d.Song = song
	m.Alerts().AddNamed("Warp", fmt.Sprintf("Measure %d warped to %s BPM", r.DragMeasure, tempo.FormatBPM(r.NewBPM)), Info)
	return true
}

func (m *Model) WarpCancel() { m.gesture.Cancel() }

func (m *Model) WarpGhost() (float64, bool) { return m.gesture.Ghost() }

func (m *Model) WarpState() warp.State { return m.gesture.State() }

func (m *Model) WarpDrag() (warp.Drag, bool) { return m.gesture.Drag() }
