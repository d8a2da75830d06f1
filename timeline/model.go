package timeline

import (
	"encoding/json"
	"os"
	"time"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/warp"
	"github.com/goodmultitracks/multitrack/waveform"
)

type (
	// modelData is the part of the model that gets saved to the recovery
	// file and is restored by undo and redo.
	modelData struct {
		Song                 multitrack.Song
		Zoom                 int // percent; 100 fits the song to the container
		ScrollLeft           float64
		ContainerWidth       float64
		Snap                 bool
		ShowBeats            bool
		ShowSubdivisions     bool
		WarpMode             bool
		EditMode             bool
		FilePath             string
		ChangedSinceSave     bool
		RecoveryFilePath     string
		ChangedSinceRecovery bool
	}

	// Model is the state of the timeline editor. It is owned by one
	// goroutine; other goroutines talk to it only through the Broker.
	Model struct {
		d modelData

		undoStack    []modelData
		redoStack    []modelData
		prevUndoKind string

		changeLevel  int
		changeCancel bool
		changeType   ChangeType
		changeData   modelData

		// songVersion is bumped on every change of the song; it keys the
		// cached grid lines.
		songVersion int
		grid        gridCache

		gesture warp.Gesture
		cursor  Cursor
		clock   func() time.Time
		alerts  []Alert

		broker    *Broker
		waveforms *waveform.Store

		// OnSongUpdate, when not nil, is called with a copy of the song each
		// time the song changes: once per committed warp, edit, undo or redo.
		OnSongUpdate func(multitrack.Song)
	}

	ChangeType     int
	ChangeSeverity int
)

const (
	NoChange   ChangeType = 0
	SongChange ChangeType = 1 << iota
	TempoMapChange
	ViewChange
)

const (
	// MinorChange merges into the previous undo step when it is of the same
	// kind, so that e.g. scrolling a number field records one step.
	MinorChange ChangeSeverity = iota
	MajorChange
)

const maxUndo = 64
const RecoveryFile = ".gmt_recovery"

var defaultSong = multitrack.Song{
	Title:         "Untitled",
	Duration:      120,
	Tempo:         120,
	TimeSignature: "4/4",
}

// NewModel returns a model with the default song, or the contents of the
// recovery file when one exists at recoveryFilePath.
func NewModel(broker *Broker, recoveryFilePath string) *Model {
	m := &Model{broker: broker, waveforms: waveform.NewStore()}
	m.d.Song = defaultSong.Copy()
	m.d.Zoom = 100
	m.d.ContainerWidth = 1000
	m.d.Snap = true
	m.d.ShowBeats = true
	m.d.RecoveryFilePath = recoveryFilePath
	if recoveryFilePath != "" {
		if b, err := os.ReadFile(recoveryFilePath); err == nil {
			var data modelData
			if json.Unmarshal(b, &data) == nil {
				m.d = data
				m.d.RecoveryFilePath = recoveryFilePath
			}
		}
	}
	m.d.ChangedSinceRecovery = false
	m.songVersion++
	return m
}

func (d *modelData) Copy() modelData {
	ret := *d
	ret.Song = d.Song.Copy()
	return ret
}

// change starts a change of the model and returns the function that
// completes it, to be deferred. Changes nest: only the outermost one records
// undo history and notifies. Setting changeCancel before the returned
// function runs reverts the whole change.
func (m *Model) change(kind string, t ChangeType, severity ChangeSeverity) func() {
	if m.changeLevel == 0 {
		m.changeType = NoChange
		m.changeCancel = false
		m.changeData = m.d.Copy()
	}
	m.changeLevel++
	return func() {
		m.changeType |= t
		m.changeLevel--
		if m.changeLevel > 0 {
			return
		}
		if m.changeCancel {
			m.d = m.changeData
			m.changeCancel = false
			return
		}
		if m.changeType&(SongChange|TempoMapChange) == 0 {
			return
		}
		if severity == MajorChange || kind != m.prevUndoKind {
			m.pushUndo(m.changeData)
			m.redoStack = m.redoStack[:0]
		}
		m.prevUndoKind = kind
		if severity == MajorChange {
			m.prevUndoKind = ""
		}
		m.d.ChangedSinceSave = true
		m.d.ChangedSinceRecovery = true
		m.songChanged()
	}
}

func (m *Model) pushUndo(d modelData) {
	m.undoStack = append(m.undoStack, d)
	if len(m.undoStack) > maxUndo {
		copy(m.undoStack, m.undoStack[len(m.undoStack)-maxUndo:])
		m.undoStack = m.undoStack[:maxUndo]
	}
}

// songChanged invalidates everything derived from the song and tells the
// collaborators about the new song.
func (m *Model) songChanged() {
	m.songVersion++
	if m.gesture.Active() {
		m.gesture.Cancel()
	}
	m.d.Song.Duration = max(m.d.Song.Duration, 0)
	if m.OnSongUpdate != nil {
		m.OnSongUpdate(m.d.Song.Copy())
	}
	if m.broker != nil {
		TrySend(m.broker.ToPlayer, any(m.d.Song.Copy()))
	}
}

// Song returns a copy of the song being edited.
func (m *Model) Song() multitrack.Song { return m.d.Song.Copy() }

// SetSong replaces the song, recording undo. Songs that do not validate are
// refused with an alert.
func (m *Model) SetSong(song multitrack.Song) bool {
	if err := song.Validate(); err != nil {
		m.Alerts().AddNamed("InvalidSong", err.Error(), Error)
		return false
	}
	defer m.change("SetSong", SongChange, MajorChange)()
	m.d.Song = song.Copy()
	return true
}

func (m *Model) ResetSong() {
	m.SetSong(defaultSong.Copy())
	m.d.FilePath = ""
	m.d.ChangedSinceSave = false
}

func (m *Model) FilePath() string           { return m.d.FilePath }
func (m *Model) SetFilePath(value string)   { m.d.FilePath = value }
func (m *Model) ChangedSinceSave() bool     { return m.d.ChangedSinceSave }
func (m *Model) SetChangedSinceSave(v bool) { m.d.ChangedSinceSave = v }
func (m *Model) Waveforms() *waveform.Store { return m.waveforms }
func (m *Model) Broker() *Broker            { return m.broker }
func (m *Model) SongVersion() int           { return m.songVersion }
func (m *Model) ContainerWidth() float64    { return m.d.ContainerWidth }
func (m *Model) ScrollLeft() float64        { return m.d.ScrollLeft }

// SetContainerWidth is called by the view when the timeline is resized.
func (m *Model) SetContainerWidth(width float64) {
	if width > 0 {
		m.d.ContainerWidth = width
	}
}

// SetScrollLeft scrolls the timeline, clamped to the scrollable range.
func (m *Model) SetScrollLeft(px float64) {
	v := m.Viewport()
	m.d.ScrollLeft = max(min(px, v.Width-v.ContainerWidth), 0)
}

// SetClock replaces the wall clock used by the Playing view.
func (m *Model) SetClock(clock func() time.Time) { m.clock = clock }

func (m *Model) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock()
}

// ProcessMsg handles a message sent to the model through the broker.
func (m *Model) ProcessMsg(msg MsgToModel) {
	if msg.HasPlayPosition {
		m.cursor = Cursor{WallStart: msg.WallClock, SongStart: msg.PlayPosition, Playing: msg.Playing}
	}
	switch e := msg.Data.(type) {
	case nil:
	case Alert:
		m.Alerts().AddAlert(e)
	case waveform.Update:
		switch {
		case e.Cleared:
			m.Alerts().AddNamed("Waveforms", "Waveforms cleared", Info)
		case e.Mipmap == nil:
		default:
			m.Alerts().ClearNamed("Waveform." + e.TrackID)
		}
	case multitrack.Song:
		m.SetSong(e)
	case func():
		e()
	}
}
