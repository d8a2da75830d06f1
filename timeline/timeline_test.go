package timeline_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/timeline"
	"github.com/goodmultitracks/multitrack/warp"
	"github.com/goodmultitracks/multitrack/waveform"
)

const tolerance = 1e-6

// newModel returns a model with a 100 s song on a 1000 px wide timeline, so
// that at 100 % zoom one pixel is 0.1 s.
func newModel(t *testing.T, changes ...multitrack.TempoChange) (*timeline.Model, *[]multitrack.Song) {
	t.Helper()
	m := timeline.NewModel(timeline.NewBroker(), "")
	ok := m.SetSong(multitrack.Song{Title: "Test", Duration: 100, Tempo: 120, TimeSignature: "4/4", TempoChanges: changes})
	if !ok {
		t.Fatalf("SetSong refused the test song")
	}
	var updates []multitrack.Song
	m.OnSongUpdate = func(s multitrack.Song) { updates = append(updates, s) }
	return m, &updates
}

func TestWarpCommitUpdatesSongOnce(t *testing.T) {
	m, updates := newModel(t)
	m.WarpMode().Bool().Set(true)
	if err := m.WarpDown(81); err != nil {
		t.Fatalf("WarpDown: %v", err)
	}
	if ghost, ok := m.WarpMove(101); !ok || math.Abs(ghost-10) > tolerance {
		t.Errorf("WarpMove: %v %v", ghost, ok)
	}
	if len(*updates) != 0 {
		t.Fatalf("song updated during the drag")
	}
	if !m.WarpUp(101) {
		t.Fatalf("WarpUp did not commit")
	}
	if len(*updates) != 1 {
		t.Fatalf("OnSongUpdate called %d times, want 1", len(*updates))
	}
	want := []multitrack.TempoChange{
		{Time: 0, Tempo: 96, TimeSignature: "4/4"},
		{Time: 10, Tempo: 96, TimeSignature: "4/4"},
	}
	if got := (*updates)[0].TempoChanges; !reflect.DeepEqual(got, want) {
		t.Errorf("committed changes %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(m.Song().TempoChanges, want) {
		t.Errorf("model song %+v", m.Song().TempoChanges)
	}
	if m.WarpState() != warp.Committed {
		t.Errorf("state %v after commit", m.WarpState())
	}
	m.Undo().Do()
	if len(m.Song().TempoChanges) != 0 {
		t.Errorf("undo left %+v", m.Song().TempoChanges)
	}
	if len(*updates) != 2 {
		t.Errorf("undo did not update the song")
	}
	m.Redo().Do()
	if !reflect.DeepEqual(m.Song().TempoChanges, want) {
		t.Errorf("redo gave %+v", m.Song().TempoChanges)
	}
}

func TestWarpRejectedLeavesSongAlone(t *testing.T) {
	m, updates := newModel(t, multitrack.TempoChange{Time: 0, Tempo: 120}, multitrack.TempoChange{Time: 20, Tempo: 100})
	before := m.Song()
	version := m.SongVersion()
	m.WarpMode().Bool().Set(true)
	if err := m.WarpDown(81); err != nil {
		t.Fatalf("WarpDown: %v", err)
	}
	// dropping measure 5 at 29.9 s would push it past the change at 20 s
	if m.WarpUp(300) {
		t.Fatalf("a warp past the next anchor was committed")
	}
	if len(*updates) != 0 || m.SongVersion() != version {
		t.Errorf("rejected warp updated the song")
	}
	if !reflect.DeepEqual(m.Song(), before) {
		t.Errorf("song changed: %+v", m.Song())
	}
	found := false
	for _, a := range m.Alerts().Iterate {
		found = found || (a.Name == "Warp" && a.Priority == timeline.Warning)
	}
	if !found {
		t.Errorf("no warning about the rejected warp")
	}
	// releasing before the anchor cancels as well
	if err := m.WarpDown(81); err != nil {
		t.Fatalf("WarpDown: %v", err)
	}
	if m.WarpUp(-50) || m.WarpState() != warp.Cancelled {
		t.Errorf("release before the anchor: state %v", m.WarpState())
	}
	if len(*updates) != 0 {
		t.Errorf("cancelled warp updated the song")
	}
}

func TestWarpOnFirstMeasureIsSilent(t *testing.T) {
	m, updates := newModel(t)
	m.WarpMode().Bool().Set(true)
	if err := m.WarpDown(0); !errors.Is(err, warp.ErrNotAfterAnchor) {
		t.Errorf("WarpDown on measure 1: %v", err)
	}
	if m.Alerts().Len() != 0 {
		t.Errorf("rejected gesture queued %d alerts", m.Alerts().Len())
	}
	if m.WarpState() != warp.Idle || len(*updates) != 0 {
		t.Errorf("rejected gesture: state %v, %d updates", m.WarpState(), len(*updates))
	}
}

func TestWarpNeedsWarpMode(t *testing.T) {
	m, _ := newModel(t)
	if err := m.WarpDown(81); !errors.Is(err, timeline.ErrWarpModeOff) {
		t.Errorf("WarpDown outside warp mode: %v", err)
	}
	m.WarpMode().Bool().Set(true)
	if err := m.WarpDown(81); err != nil {
		t.Fatal(err)
	}
	if err := m.WarpDown(200); !errors.Is(err, warp.ErrGestureActive) {
		t.Errorf("second WarpDown: %v", err)
	}
	m.EditMode().Bool().Set(true)
	if m.WarpMode().Value() {
		t.Errorf("edit mode did not leave warp mode")
	}
	if _, ok := m.WarpGhost(); ok {
		t.Errorf("leaving warp mode did not cancel the gesture")
	}
}

func TestGridLinesAreMemoized(t *testing.T) {
	m, _ := newModel(t)
	a := m.GridLines()
	b := m.GridLines()
	if m.GridComputations() != 1 || len(a) == 0 || &a[0] != &b[0] {
		t.Fatalf("grid computed %d times", m.GridComputations())
	}
	m.Zoom().Int().Set(200)
	m.GridLines()
	if m.GridComputations() != 2 {
		t.Errorf("zoom did not invalidate the grid")
	}
	m.SetScrollLeft(800)
	m.GridLines()
	if m.GridComputations() != 3 {
		t.Errorf("scrolling did not invalidate the grid")
	}
	m.BaseTempo().Int().Set(90)
	m.GridLines()
	m.GridLines()
	if m.GridComputations() != 4 {
		t.Errorf("tempo change computed the grid %d times", m.GridComputations())
	}
}

func TestPointerTimeSnaps(t *testing.T) {
	m, _ := newModel(t)
	// at 10 px/s beats are too dense, only measure lines every 2 s remain
	if got := m.PointerTime(29); got != 2 {
		t.Errorf("PointerTime(29) = %v, want 2", got)
	}
	if got := m.PointerTime(31); got != 4 {
		t.Errorf("PointerTime(31) = %v, want 4", got)
	}
	m.Snap().Bool().Set(false)
	if got := m.PointerTime(31); math.Abs(got-3.1) > tolerance {
		t.Errorf("PointerTime(31) without snap = %v", got)
	}
	if got := m.PointerTime(5000); got != 100 {
		t.Errorf("PointerTime past the end = %v", got)
	}
}

func TestPlaybackCursor(t *testing.T) {
	m, _ := newModel(t)
	t0 := time.Unix(1000, 0)
	now := t0
	m.SetClock(func() time.Time { return now })
	m.Playing().Bool().Set(true)
	if !m.Playing().Value() {
		t.Fatalf("not playing")
	}
	if got := m.PlayPosition(t0.Add(2500 * time.Millisecond)); math.Abs(got-2.5) > tolerance {
		t.Errorf("position after 2.5 s = %v", got)
	}
	now = t0.Add(3 * time.Second)
	m.Seek(50, now)
	if got := m.PlayPosition(now.Add(time.Second)); math.Abs(got-51) > tolerance {
		t.Errorf("position after seek = %v", got)
	}
	now = now.Add(2 * time.Second)
	m.Playing().Bool().Set(false)
	if got := m.PlayPosition(now.Add(time.Hour)); math.Abs(got-52) > tolerance {
		t.Errorf("paused position = %v", got)
	}
	m.Seek(150, now)
	if got := m.PlayPosition(now); got != 100 {
		t.Errorf("seek past the end = %v", got)
	}
	m.Seek(-3, now)
	if got := m.PlayPosition(now); got != 0 {
		t.Errorf("seek before the start = %v", got)
	}
	m.Playing().Bool().Set(true)
	if got := m.PlayPosition(now.Add(time.Hour)); got != 100 || m.Playing().Value() {
		t.Errorf("playback did not stop at the end: %v", got)
	}
	c := timeline.Cursor{WallStart: t0, SongStart: 4, Playing: true}
	if c.At(t0.Add(time.Second)) != 5 {
		t.Errorf("Cursor.At = %v", c.At(t0.Add(time.Second)))
	}
}

func TestTempoChangeActions(t *testing.T) {
	m, updates := newModel(t)
	add := m.AddTempoChange(10)
	if !add.Enabled() {
		t.Fatalf("AddTempoChange disabled")
	}
	add.Do()
	want := []multitrack.TempoChange{{Time: 0, Tempo: 120}, {Time: 10, Tempo: 120}}
	if got := m.Song().TempoChanges; !reflect.DeepEqual(got, want) {
		t.Errorf("changes %+v, want %+v", got, want)
	}
	if m.AddTempoChange(10).Enabled() || m.AddTempoChange(100).Enabled() || m.AddTempoChange(-1).Enabled() {
		t.Errorf("AddTempoChange enabled on an existing change or outside the song")
	}
	m.SetTempoChange(1, multitrack.TempoChange{Time: 10, Tempo: 90, TimeSignature: "3/4"}).Do()
	if got := m.Song().TempoChanges[1]; got.Tempo != 90 || got.TimeSignature != "3/4" {
		t.Errorf("SetTempoChange gave %+v", got)
	}
	if m.SetTempoChange(1, multitrack.TempoChange{Time: 10, Tempo: 5000}).Enabled() {
		t.Errorf("SetTempoChange enabled for an invalid change")
	}
	m.RemoveTempoChange(1).Do()
	if got := m.Song().TempoChanges; len(got) != 1 {
		t.Errorf("changes after remove %+v", got)
	}
	if m.RemoveTempoChange(1).Enabled() {
		t.Errorf("RemoveTempoChange enabled past the end")
	}
	if len(*updates) != 3 {
		t.Errorf("got %d song updates, want 3", len(*updates))
	}
}

func TestViews(t *testing.T) {
	m, updates := newModel(t)
	if !m.Zoom().Int().Set(1) || m.Zoom().Value() != timeline.MinZoom {
		t.Errorf("zoom not clamped: %v", m.Zoom().Value())
	}
	if m.Zoom().Int().Set(timeline.MinZoom) {
		t.Errorf("setting the same zoom reported a change")
	}
	if len(*updates) != 0 {
		t.Errorf("zoom updated the song")
	}
	m.ShowBeats().Bool().Set(false)
	m.ShowSubdivisions().Bool().Set(true)
	if m.ShowSubdivisions().Value() {
		t.Errorf("subdivisions shown without beats")
	}
	m.BaseTempo().Int().Add(-30)
	if got := m.Song().Tempo; got != 90 {
		t.Errorf("tempo %v after Add(-30)", got)
	}
	m.BaseTempo().Int().Add(-1)
	m.Undo().Do()
	if got := m.Song().Tempo; got != 120 {
		t.Errorf("tempo edits of one kind should undo together, got %v", got)
	}
	m.Zoom().Int().Set(400)
	m.ZoomToFit().Do()
	if m.Zoom().Value() != 100 || m.ScrollLeft() != 0 {
		t.Errorf("ZoomToFit gave zoom %v scroll %v", m.Zoom().Value(), m.ScrollLeft())
	}
	if m.ZoomToFit().Enabled() {
		t.Errorf("ZoomToFit enabled when already fitting")
	}
}

func TestSetSongRefusesInvalidSong(t *testing.T) {
	m, updates := newModel(t)
	if m.SetSong(multitrack.Song{Duration: -1, Tempo: 120}) {
		t.Errorf("invalid song accepted")
	}
	if len(*updates) != 0 || m.Song().Title != "Test" {
		t.Errorf("invalid song replaced the song")
	}
	if m.Alerts().Len() != 1 {
		t.Errorf("expected an alert, got %d", m.Alerts().Len())
	}
}

func TestReadWriteSong(t *testing.T) {
	m, _ := newModel(t, multitrack.TempoChange{Time: 0, Tempo: 120}, multitrack.TempoChange{Time: 8, Tempo: 90, TimeSignature: "7/8", Subdivision: "2+2+3"})
	buf := bytes.NewBuffer(nil)
	if !m.WriteSong(&myWriteCloser{buf}) {
		t.Fatalf("WriteSong failed")
	}
	m2, updates := newModel(t)
	if !m2.ReadSong(io.NopCloser(bytes.NewReader(buf.Bytes()))) {
		t.Fatalf("ReadSong failed: %v", m2.Alerts().Len())
	}
	if !reflect.DeepEqual(m2.Song().TempoChanges, m.Song().TempoChanges) {
		t.Errorf("read %+v, want %+v", m2.Song().TempoChanges, m.Song().TempoChanges)
	}
	if len(*updates) != 1 {
		t.Errorf("reading a song gave %d updates", len(*updates))
	}
	if m2.ReadSong(io.NopCloser(bytes.NewReader([]byte("{not a song")))) {
		t.Errorf("garbage was read as a song")
	}
	path := filepath.Join(t.TempDir(), "song.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if !m.WriteSong(f) || m.FilePath() != path || m.ChangedSinceSave() {
		t.Errorf("writing to %s: path %q changed %v", path, m.FilePath(), m.ChangedSinceSave())
	}
	b, err := os.ReadFile(path)
	if err != nil || len(b) == 0 || b[0] != '{' {
		t.Errorf("song.json is not JSON: %q", b)
	}
}

func TestRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recovery", timeline.RecoveryFile)
	m := timeline.NewModel(timeline.NewBroker(), path)
	m.SetSong(multitrack.Song{Title: "Recovered", Duration: 60, Tempo: 100})
	if err := m.History().SaveRecovery(); err != nil {
		t.Fatalf("SaveRecovery: %v", err)
	}
	if m2 := timeline.NewModel(timeline.NewBroker(), path); m2.Song().Title != "Recovered" {
		t.Errorf("recovery file not loaded: %q", m2.Song().Title)
	}
	b := m.History().MarshalRecovery()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("MarshalRecovery did not remove the recovery file")
	}
	m3 := timeline.NewModel(timeline.NewBroker(), "")
	if err := m3.History().UnmarshalRecovery(b); err != nil {
		t.Fatal(err)
	}
	if m3.Song().Title != "Recovered" {
		t.Errorf("UnmarshalRecovery gave %q", m3.Song().Title)
	}
	if err := m3.History().UnmarshalRecovery([]byte("nope")); err == nil {
		t.Errorf("UnmarshalRecovery accepted garbage")
	}
	if err := timeline.NewModel(timeline.NewBroker(), "").History().SaveRecovery(); err != nil {
		t.Errorf("SaveRecovery without changes: %v", err)
	}
}

func TestAlerts(t *testing.T) {
	m := timeline.NewModel(timeline.NewBroker(), "")
	m.Alerts().AddNamed("Disk", "Disk full", timeline.Error)
	m.Alerts().AddNamed("Disk", "Disk still full", timeline.Error)
	m.Alerts().Add("Saved", timeline.Info)
	if m.Alerts().Len() != 2 {
		t.Fatalf("%d alerts, want 2", m.Alerts().Len())
	}
	var messages []string
	for _, a := range m.Alerts().Iterate {
		messages = append(messages, a.Message)
	}
	if !reflect.DeepEqual(messages, []string{"Saved", "Disk still full"}) {
		t.Errorf("alerts %v", messages)
	}
	if !m.Alerts().Update(time.Second) {
		t.Errorf("alerts should be fading in")
	}
	m.Alerts().Update(3 * time.Second)
	if m.Alerts().Len() != 0 {
		t.Errorf("expired alerts left: %d", m.Alerts().Len())
	}
}

func TestProcessMsg(t *testing.T) {
	m, _ := newModel(t)
	t0 := time.Unix(50, 0)
	m.ProcessMsg(timeline.MsgToModel{HasPlayPosition: true, Playing: true, PlayPosition: 12, WallClock: t0})
	if got := m.PlayPosition(t0.Add(time.Second)); math.Abs(got-13) > tolerance {
		t.Errorf("play position %v", got)
	}
	m.ProcessMsg(timeline.MsgToModel{Data: timeline.Alert{Name: "Player", Message: "Underrun", Priority: timeline.Warning, Duration: time.Second}})
	if m.Alerts().Len() != 1 {
		t.Errorf("alert message not processed")
	}
	ran := false
	m.ProcessMsg(timeline.MsgToModel{Data: func() { ran = true }})
	if !ran {
		t.Errorf("function message not run")
	}
}

func TestBrokerForwardsWaveforms(t *testing.T) {
	b := timeline.NewBroker()
	m := timeline.NewModel(b, "")
	store := m.Waveforms()
	go b.ForwardWaveforms(t.Context(), store)
	mipmap := waveform.Generate(make([]float32, 100))
	var msg timeline.MsgToModel
	ok := false
	for i := 0; i < 100 && !ok; i++ {
		store.Publish("vocals", mipmap)
		msg, ok = timeline.TimeoutReceive(b.ToModel, 10*time.Millisecond)
	}
	if !ok {
		t.Fatalf("no waveform update forwarded")
	}
	if u, isUpdate := msg.Data.(waveform.Update); !isUpdate || u.TrackID != "vocals" || u.Mipmap != mipmap {
		t.Errorf("unexpected message %+v", msg)
	}
	m.ProcessMsg(msg)
	b.CloseWaveforms <- struct{}{}
	select {
	case <-b.FinishedWaveforms:
	case <-time.After(3 * time.Second):
		t.Errorf("forwarding did not finish")
	}
}
