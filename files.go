package multitrack

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ReadSong decodes a song from JSON or YAML. JSON is tried first, as any JSON
// document would also be accepted by the YAML decoder with worse errors.
func ReadSong(b []byte) (Song, error) {
	var song Song
	errJSON := json.Unmarshal(b, &song)
	if errJSON == nil {
		return song, nil
	}
	song = Song{}
	if errYaml := yaml.Unmarshal(b, &song); errYaml != nil {
		return Song{}, fmt.Errorf("could not unmarshal song: %v / %w", errJSON, errYaml)
	}
	return song, nil
}

// MarshalSong encodes a song as JSON if ext is ".json" and as YAML otherwise.
func MarshalSong(song Song, ext string) ([]byte, error) {
	if ext == ".json" {
		return json.MarshalIndent(song, "", "  ")
	}
	return yaml.Marshal(song)
}
