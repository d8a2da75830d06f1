package timeline

import (
	"slices"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/tempo"
)

type (
	// Action describes a user action that can be performed on the model by
	// calling Do. It is usually started by a button press, a menu item or a
	// key. Action advertises whether it is enabled, so the editor can gray out
	// buttons when the action is not allowed. The underlying Doer can
	// implement Enabler to decide that; without it the action is always
	// allowed.
	Action struct {
		doer Doer
	}

	Doer interface {
		Do()
	}

	Enabler interface {
		Enabled() bool
	}
)

func MakeAction(doer Doer) Action {
	return Action{doer: doer}
}

func (a Action) Do() {
	if !a.Enabled() {
		return
	}
	a.doer.Do()
}

func (a Action) Enabled() bool {
	if a.doer == nil {
		return false
	}
	e, ok := a.doer.(Enabler)
	if !ok {
		return true
	}
	return e.Enabled()
}

// addTempoChange
type addTempoChange struct {
	Time float64
	*Model
}

// AddTempoChange returns an Action adding a tempo change at t. The new
// change copies the tempo and meter in effect at t, so the grid does not
// move until the change is edited.
func (m *Model) AddTempoChange(t float64) Action {
	return MakeAction(addTempoChange{Time: t, Model: m})
}
func (a addTempoChange) Enabled() bool {
	return a.Time >= 0 && a.Time < a.d.Song.Duration && a.TempoMap().ChangeAt(a.Time) < 0
}
func (a addTempoChange) Do() {
	m := a.Model
	defer m.change("AddTempoChange", TempoMapChange, MajorChange)()
	seg := m.TempoMap().SegmentAt(a.Time)
	c := multitrack.TempoChange{Time: a.Time, Tempo: seg.Tempo}
	if len(m.d.Song.TempoChanges) == 0 && a.Time > tempo.Epsilon {
		// keep the song start explicit, like a warp does
		m.d.Song.TempoChanges = append(m.d.Song.TempoChanges, multitrack.TempoChange{Time: 0, Tempo: m.d.Song.Tempo})
	}
	m.d.Song.TempoChanges = tempo.Normalize(append(slices.Clone(m.d.Song.TempoChanges), c))
}

// removeTempoChange
type removeTempoChange struct {
	Index int
	*Model
}

func (m *Model) RemoveTempoChange(index int) Action {
	return MakeAction(removeTempoChange{Index: index, Model: m})
}
func (a removeTempoChange) Enabled() bool {
	return a.Index >= 0 && a.Index < len(a.d.Song.TempoChanges)
}
func (a removeTempoChange) Do() {
	m := a.Model
	defer m.change("RemoveTempoChange", TempoMapChange, MajorChange)()
	m.d.Song.TempoChanges = slices.Delete(slices.Clone(m.d.Song.TempoChanges), a.Index, a.Index+1)
}

// setTempoChange
type setTempoChange struct {
	Index  int
	Change multitrack.TempoChange
	*Model
}

// SetTempoChange returns an Action replacing the tempo change at index. It
// is disabled for changes that do not validate.
func (m *Model) SetTempoChange(index int, c multitrack.TempoChange) Action {
	return MakeAction(setTempoChange{Index: index, Change: c, Model: m})
}
func (a setTempoChange) Enabled() bool {
	return a.Index >= 0 && a.Index < len(a.d.Song.TempoChanges) && a.Change.Validate() == nil && a.Change.Time < a.d.Song.Duration
}
func (a setTempoChange) Do() {
	m := a.Model
	defer m.change("SetTempoChange", TempoMapChange, MinorChange)()
	changes := slices.Clone(m.d.Song.TempoChanges)
	changes[a.Index] = a.Change.Copy()
	m.d.Song.TempoChanges = tempo.Normalize(changes)
}

// zoomToFit
type zoomToFit Model

func (m *Model) ZoomToFit() Action { return MakeAction((*zoomToFit)(m)) }
func (m *zoomToFit) Enabled() bool {
	return m.d.Zoom != 100 || m.d.ScrollLeft != 0
}
func (m *zoomToFit) Do() {
	defer (*Model)(m).change("ZoomToFit", ViewChange, MinorChange)()
	m.d.Zoom = 100
	m.d.ScrollLeft = 0
}

// newSong
type newSong Model

func (m *Model) NewSong() Action { return MakeAction((*newSong)(m)) }
func (m *newSong) Do()           { (*Model)(m).ResetSong() }

// Undo returns an Action to undo the last change of the song.
func (m *Model) Undo() Action { return m.History().Undo() }

// Redo returns an Action to redo the last undone change.
func (m *Model) Redo() Action { return m.History().Redo() }
