package metronome_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/grid"
	"github.com/goodmultitracks/multitrack/meter"
	"github.com/goodmultitracks/multitrack/metronome"
)

func times(clicks []metronome.Click) []float64 {
	ret := make([]float64, len(clicks))
	for i, c := range clicks {
		ret[i] = math.Round(c.Time*1e6) / 1e6
	}
	return ret
}

func accents(clicks []metronome.Click) []int {
	ret := make([]int, len(clicks))
	for i, c := range clicks {
		ret[i] = c.Accent
	}
	return ret
}

func TestClicksSimpleMeter(t *testing.T) {
	song := &multitrack.Song{Duration: 60, Tempo: 120, TimeSignature: "4/4"}
	clicks := metronome.Clicks(song, metronome.AccentedMode, 0, 4)
	if got, want := times(clicks), []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5}; !reflect.DeepEqual(got, want) {
		t.Errorf("times = %v, want %v", got, want)
	}
	if got, want := accents(clicks), []int{2, 0, 1, 0, 2, 0, 1, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("accents = %v, want %v", got, want)
	}
	if clicks[0].Volume != 1 || clicks[1].Volume != 0.4 || clicks[2].Volume != 0.7 {
		t.Errorf("unexpected volumes %+v", clicks[:3])
	}
	if clicks[4].Measure != 2 || clicks[4].Pulse != 0 {
		t.Errorf("fifth click is %+v", clicks[4])
	}
}

func TestClicksCompoundMeter(t *testing.T) {
	song := &multitrack.Song{Duration: 60, Tempo: 120, TimeSignature: "6/8"}
	macro := metronome.Clicks(song, metronome.MacroMode, 0, 6)
	if got, want := times(macro), []float64{0, 1.5, 3, 4.5}; !reflect.DeepEqual(got, want) {
		t.Errorf("macro times = %v, want %v", got, want)
	}
	if got, want := accents(macro), []int{2, 1, 2, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("macro accents = %v, want %v", got, want)
	}
	all := metronome.Clicks(song, metronome.AllMode, 0, 3)
	if got, want := accents(all), []int{2, 0, 0, 0, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("all accents = %v, want %v", got, want)
	}
	accented := metronome.Clicks(song, metronome.AccentedMode, 0, 3)
	if got, want := accents(accented), []int{2, 0, 0, 1, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("accented accents = %v, want %v", got, want)
	}
}

func TestClicksFollowGrid(t *testing.T) {
	song := &multitrack.Song{
		Duration:      40,
		Tempo:         120,
		TimeSignature: "4/4",
		TempoChanges: []multitrack.TempoChange{
			{Time: 0, Tempo: 120},
			{Time: 8, Tempo: 90, TimeSignature: "7/8", Subdivision: "2+2+3"},
			{Time: 21, Tempo: 150},
		},
	}
	lines := grid.Lines(grid.Options{
		Duration:      song.Duration,
		Tempo:         song.Tempo,
		TimeSignature: song.TimeSignature,
		TempoChanges:  song.TempoChanges,
		ShowBeats:     true,
		Zoom:          100,
	})
	var beats []float64
	for _, l := range lines {
		if l.Type != grid.SubdivisionLine {
			beats = append(beats, math.Round(l.Position*1e6)/1e6)
		}
	}
	clicks := metronome.Clicks(song, metronome.MacroMode, 0, song.Duration)
	if got := times(clicks); !reflect.DeepEqual(got, beats) {
		t.Errorf("clicks %v\ndo not match the grid %v", got, beats)
	}
}

func TestClicksFromMidMeasure(t *testing.T) {
	song := &multitrack.Song{Duration: 60, Tempo: 120, TimeSignature: "4/4"}
	clicks := metronome.Clicks(song, metronome.MacroMode, 2.25, 3.1)
	if got, want := times(clicks), []float64{2.5, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("times = %v, want %v", got, want)
	}
	if len(metronome.Clicks(song, metronome.MacroMode, 59.9, 100)) != 0 {
		t.Errorf("clicks past the end of the song")
	}
}

func TestSchedulerStep(t *testing.T) {
	song := &multitrack.Song{Duration: 2, Tempo: 120, TimeSignature: "4/4"}
	s := metronome.NewScheduler(song, metronome.MacroMode, 0)
	if got := times(s.Step(0)); !reflect.DeepEqual(got, []float64{0}) {
		t.Errorf("Step(0) = %v", got)
	}
	if got := s.Step(0.3); len(got) != 0 {
		t.Errorf("Step(0.3) = %v", got)
	}
	if got := times(s.Step(0.45)); !reflect.DeepEqual(got, []float64{0.5}) {
		t.Errorf("Step(0.45) = %v", got)
	}
	if got := s.Step(0.45); len(got) != 0 {
		t.Errorf("repeated step emitted %v", got)
	}
	// a late wake up emits everything that was missed, in order
	if got := times(s.Step(1.6)); !reflect.DeepEqual(got, []float64{1, 1.5}) {
		t.Errorf("Step(1.6) = %v", got)
	}
	if !s.Done() {
		t.Errorf("scheduler not done at the end of the song")
	}
}

func TestSchedulerRun(t *testing.T) {
	song := &multitrack.Song{Duration: 4, Tempo: 240, TimeSignature: "3/4"}
	s := metronome.NewScheduler(song, metronome.AccentedMode, 0)
	s.Interval = time.Millisecond
	var now atomic.Int64
	clock := func() float64 {
		return float64(now.Add(50)) / 1000
	}
	out := make(chan metronome.Click, 100)
	if err := s.Run(context.Background(), clock, out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(out)
	var got []metronome.Click
	for c := range out {
		got = append(got, c)
	}
	if len(got) != 16 {
		t.Fatalf("got %d clicks, want 16", len(got))
	}
	for i, c := range got {
		if math.Abs(c.Time-float64(i)*0.25) > 1e-9 {
			t.Errorf("click %d at %v", i, c.Time)
		}
		if want := meter.WeakAccent; i%3 != 0 && c.Accent != want {
			t.Errorf("click %d accent %d", i, c.Accent)
		}
	}
}

func TestSchedulerRunCancel(t *testing.T) {
	song := &multitrack.Song{Tempo: 120, TimeSignature: "4/4"}
	s := metronome.NewScheduler(song, metronome.MacroMode, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	out := make(chan metronome.Click, 1)
	err := s.Run(ctx, func() float64 { return 0 }, out)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run returned %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []metronome.Mode{metronome.MacroMode, metronome.AllMode, metronome.AccentedMode} {
		if got, ok := metronome.ParseMode(m.String()); !ok || got != m {
			t.Errorf("ParseMode(%q) = %v %v", m.String(), got, ok)
		}
	}
	if _, ok := metronome.ParseMode("loud"); ok {
		t.Errorf("ParseMode accepted an unknown mode")
	}
}

func TestRenderer(t *testing.T) {
	const rate = 1000
	r := metronome.NewRenderer(rate, 1)
	r.Add(metronome.Click{Time: 1.01, Accent: meter.Downbeat, Volume: 1})
	buf := make([]float32, 10)
	r.Render(buf)
	for i, v := range buf {
		if v != 0 {
			t.Errorf("frame %d before the click = %v", i, v)
		}
	}
	if got := r.Time(); math.Abs(got-1.01) > 1e-9 {
		t.Errorf("Time() = %v, want 1.01", got)
	}
	buf = make([]float32, 100)
	r.Render(buf)
	var peak float32
	for _, v := range buf[:30] {
		peak = max(peak, v, -v)
	}
	if peak == 0 || peak > 0.5 {
		t.Errorf("click peak = %v", peak)
	}
	for i, v := range buf[30:] {
		if v != 0 {
			t.Errorf("frame %d after the click = %v", i+30, v)
			break
		}
	}
}

func TestRendererPlaysLateClicks(t *testing.T) {
	r := metronome.NewRenderer(1000, 0)
	r.Render(make([]float32, 50))
	r.Add(metronome.Click{Time: 0.01, Accent: meter.WeakAccent, Volume: 0.4})
	buf := make([]float32, 30)
	r.Render(buf)
	var peak float32
	for _, v := range buf {
		peak = max(peak, v, -v)
	}
	if peak == 0 {
		t.Errorf("late click was dropped")
	}
}
