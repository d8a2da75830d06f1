package timeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goodmultitracks/multitrack"
)

// ReadSong reads a song file, JSON or YAML, and replaces the song with it.
// Problems are reported as alerts.
func (m *Model) ReadSong(r io.ReadCloser) bool {
	b, err := io.ReadAll(r)
	if err != nil {
		m.Alerts().Add(fmt.Sprintf("Error reading a song file: %v", err), Error)
		return false
	}
	if err := r.Close(); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error closing a song file: %v", err), Error)
		return false
	}
	song, err := multitrack.ReadSong(b)
	if err != nil {
		m.Alerts().Add(fmt.Sprintf("Error unmarshaling a song file: %v", err), Error)
		return false
	}
	if !m.SetSong(song) {
		return false
	}
	if f, ok := r.(*os.File); ok {
		m.d.FilePath = f.Name()
		// a song just loaded from a file is persisted as is
		m.d.ChangedSinceSave = false
	}
	return true
}

// WriteSong writes the song as JSON when w is a file ending with .json and as
// YAML otherwise.
func (m *Model) WriteSong(w io.WriteCloser) bool {
	path := ""
	if f, ok := w.(*os.File); ok {
		path = f.Name()
	}
	contents, err := multitrack.MarshalSong(m.d.Song, filepath.Ext(path))
	if err != nil {
		m.Alerts().Add(fmt.Sprintf("Error marshaling a song file: %v", err), Error)
		return false
	}
	if _, err := w.Write(contents); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error writing to file: %v", err), Error)
		return false
	}
	if err := w.Close(); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error closing file: %v", err), Error)
		return false
	}
	if path != "" {
		m.d.FilePath = path
		m.d.ChangedSinceSave = false
	}
	return true
}
