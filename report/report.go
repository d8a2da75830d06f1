// Package report renders the tempo map and the grid of a song as text, using
// text/templates extended with the sprig functions.
package report

import (
	"embed"
	"fmt"
	"io"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/grid"
	"github.com/goodmultitracks/multitrack/tempo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*
var builtin embed.FS

type Reporter struct {
	Template *template.Template
}

// New returns a Reporter using the built-in templates: "tempomap.txt" and
// "grid.csv".
func New() (*Reporter, error) {
	tmpl, err := base().ParseFS(builtin, "templates/*.*")
	if err != nil {
		return nil, fmt.Errorf("could not parse the built-in templates: %w", err)
	}
	return &Reporter{Template: tmpl}, nil
}

// NewFromTemplates parses all the files of a directory as templates, each
// one named after its file.
func NewFromTemplates(templateDirectory string) (*Reporter, error) {
	globPtrn := filepath.Join(templateDirectory, "*.*")
	tmpl, err := base().ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %w`, templateDirectory, err)
	}
	return &Reporter{Template: tmpl}, nil
}

func base() *template.Template {
	return template.New("base").Funcs(sprig.TxtFuncMap()).Funcs(template.FuncMap{
		"time": tempo.FormatTime,
		"bpm":  tempo.FormatBPM,
	})
}

// Execute renders the named template for the song.
func (r *Reporter) Execute(w io.Writer, name string, song *multitrack.Song, opts Options) error {
	if err := r.Template.ExecuteTemplate(w, name, NewMacros(song, opts)); err != nil {
		return fmt.Errorf(`could not execute template "%v": %w`, name, err)
	}
	return nil
}

// Names lists the templates that can be executed.
func (r *Reporter) Names() []string {
	var ret []string
	for _, t := range r.Template.Templates() {
		if t.Name() != "base" {
			ret = append(ret, t.Name())
		}
	}
	return ret
}

// Options select the part of the grid that ends up in the report.
type Options struct {
	Zoom             float64
	ShowBeats        bool
	ShowSubdivisions bool
	From, To         float64
}

// Macros is the data the templates are executed with.
type Macros struct {
	Song    *multitrack.Song
	Options Options
	Map     *tempo.Map

	caser cases.Caser
}

func NewMacros(song *multitrack.Song, opts Options) *Macros {
	return &Macros{Song: song, Options: opts, Map: tempo.ForSong(song), caser: cases.Title(language.English)}
}

// Segments lists the stretches of constant tempo and signature, with the end
// of the last one at the end of the song.
func (m *Macros) Segments() []SegmentRow {
	segs := m.Map.Segments()
	ret := make([]SegmentRow, len(segs))
	for i, s := range segs {
		end := m.Song.Duration
		if i+1 < len(segs) {
			end = segs[i+1].Start
		}
		ret[i] = SegmentRow{Segment: s, End: end, Bars: m.Map.MeasureAt(end) - s.Measure}
	}
	return ret
}

type SegmentRow struct {
	tempo.Segment
	End  float64
	Bars float64
}

func (r SegmentRow) Grouping() string {
	return multitrack.FormatSubdivision(r.Subdivision)
}

// Lines returns the grid lines in the window of the options.
func (m *Macros) Lines() []grid.Line {
	return grid.Lines(grid.Options{
		Duration:         m.Song.Duration,
		Tempo:            m.Song.Tempo,
		TimeSignature:    m.Song.TimeSignature,
		TempoChanges:     m.Song.TempoChanges,
		ShowBeats:        m.Options.ShowBeats,
		ShowSubdivisions: m.Options.ShowSubdivisions,
		Zoom:             m.Options.Zoom,
		VisibleStart:     m.Options.From,
		VisibleEnd:       m.Options.To,
	})
}

func (m *Macros) Markers() []multitrack.Marker {
	return m.Song.Markers(false)
}

// MarkerLabel describes a marker in one short line.
func (m *Macros) MarkerLabel(marker multitrack.Marker) string {
	switch v := marker.(type) {
	case multitrack.TempoMarker:
		ret := tempo.FormatBPM(v.Tempo) + " BPM"
		if v.TimeSignature != "" {
			ret += " " + v.TimeSignature
		}
		return ret
	case multitrack.SectionMarker:
		if v.Label == "" {
			return m.caser.String(string(v.Type))
		}
		return v.Label
	case multitrack.ChordMarker:
		return v.Chord
	}
	return ""
}

func (m *Macros) MarkerKind(marker multitrack.Marker) string {
	switch marker.(type) {
	case multitrack.TempoMarker:
		return "tempo"
	case multitrack.SectionMarker:
		return "section"
	default:
		return "chord"
	}
}
