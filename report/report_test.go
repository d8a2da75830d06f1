package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/report"
)

func demoSong() *multitrack.Song {
	return &multitrack.Song{
		Title:         "Demo",
		Duration:      20,
		Tempo:         120,
		TimeSignature: "4/4",
		TempoChanges: []multitrack.TempoChange{
			{Time: 0, Tempo: 120},
			{Time: 8, Tempo: 90, TimeSignature: "3/4"},
		},
		Sections: []multitrack.SectionMarker{
			{ID: "s1", Time: 0, Label: "Intro", Type: multitrack.IntroSection},
			{ID: "s2", Time: 12, Type: multitrack.ChorusSection},
		},
		Chords:   []multitrack.ChordMarker{{Time: 2, Chord: "Am"}},
	}
}

func render(t *testing.T, name string, opts report.Options) []string {
	t.Helper()
	r, err := report.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Execute(&buf, name, demoSong(), opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestTempoMapReport(t *testing.T) {
	lines := render(t, "tempomap.txt", report.Options{})
	if lines[0] != "Demo" || lines[1] != "====" {
		t.Errorf("unexpected title %q %q", lines[0], lines[1])
	}
	find := func(prefix string) []string {
		for _, l := range lines {
			if strings.HasPrefix(l, prefix) {
				return strings.Fields(l)
			}
		}
		t.Fatalf("no line starting with %q in\n%s", prefix, strings.Join(lines, "\n"))
		return nil
	}
	if got, want := find("0:00.00    0:08.00"), []string{"0:00.00", "0:08.00", "1.00", "4.00", "4/4", "120"}; !reflect.DeepEqual(got, want) {
		t.Errorf("first segment %v, want %v", got, want)
	}
	if got, want := find("0:08.00    0:20.00"), []string{"0:08.00", "0:20.00", "5.00", "6.00", "3/4", "90"}; !reflect.DeepEqual(got, want) {
		t.Errorf("second segment %v, want %v", got, want)
	}
	if got, want := find("0:02.00"), []string{"0:02.00", "chord", "Am"}; !reflect.DeepEqual(got, want) {
		t.Errorf("chord marker %v, want %v", got, want)
	}
	if got, want := find("0:12.00"), []string{"0:12.00", "section", "Chorus"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unlabeled section %v, want %v", got, want)
	}
	if got, want := find("0:08.00    tempo"), []string{"0:08.00", "tempo", "90", "BPM", "3/4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("tempo marker %v, want %v", got, want)
	}
}

func TestGridReport(t *testing.T) {
	lines := render(t, "grid.csv", report.Options{Zoom: 10})
	if lines[0] != "position,type,measure,accent,opacity" {
		t.Errorf("header %q", lines[0])
	}
	if len(lines) != 11 {
		t.Fatalf("got %d lines, want a header and 10 measures:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if lines[1] != "0.000000,measure,1,2,1" || lines[6] != "10.000000,measure,6,2,1" {
		t.Errorf("unexpected rows %q %q", lines[1], lines[6])
	}
	window := render(t, "grid.csv", report.Options{Zoom: 10, From: 7.5, To: 10.5})
	if len(window) != 3 {
		t.Errorf("window has rows %v", window[1:])
	}
}

func TestNames(t *testing.T) {
	r, err := report.New()
	if err != nil {
		t.Fatal(err)
	}
	names := r.Names()
	for _, want := range []string{"grid.csv", "tempomap.txt"} {
		found := false
		for _, n := range names {
			found = found || n == want
		}
		if !found {
			t.Errorf("template %s missing from %v", want, names)
		}
	}
}

func TestCustomTemplates(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "count.txt"), []byte(`{{ len .Segments }} {{ .Song.Title | upper }}`), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := report.NewFromTemplates(dir)
	if err != nil {
		t.Fatalf("NewFromTemplates: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Execute(&buf, "count.txt", demoSong(), report.Options{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "2 DEMO" {
		t.Errorf("got %q", buf.String())
	}
	if err := r.Execute(&buf, "missing.txt", demoSong(), report.Options{}); err == nil {
		t.Errorf("executing a missing template succeeded")
	}
	if _, err := report.NewFromTemplates(filepath.Join(dir, "nope")); err == nil {
		t.Errorf("an empty directory gave no error")
	}
}
