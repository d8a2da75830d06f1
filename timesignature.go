package multitrack

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TimeSignature is a parsed "N/D" time signature: Beats pulses of the note
// value 1/Unit per measure.
type TimeSignature struct {
	Beats int
	Unit  int
}

var DefaultTimeSignature = TimeSignature{Beats: 4, Unit: 4}

var ErrInvalidTimeSignature = errors.New("invalid time signature")

const maxBeats = 64

// ParseTimeSignature parses a string like "6/8". The beat unit must be a
// power of two between 1 and 64.
func ParseTimeSignature(s string) (TimeSignature, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return TimeSignature{}, fmt.Errorf("%w: %q", ErrInvalidTimeSignature, s)
	}
	beats, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || beats < 1 || beats > maxBeats {
		return TimeSignature{}, fmt.Errorf("%w: %q", ErrInvalidTimeSignature, s)
	}
	unit, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil || unit < 1 || unit > 64 || unit&(unit-1) != 0 {
		return TimeSignature{}, fmt.Errorf("%w: %q", ErrInvalidTimeSignature, s)
	}
	return TimeSignature{Beats: beats, Unit: unit}, nil
}

// SignatureOrDefault is like ParseTimeSignature but returns 4/4 for anything
// that does not parse.
func SignatureOrDefault(s string) TimeSignature {
	if s == "" {
		return DefaultTimeSignature
	}
	sig, err := ParseTimeSignature(s)
	if err != nil {
		return DefaultTimeSignature
	}
	return sig
}

func (t TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", t.Beats, t.Unit)
}

// MeasureDuration returns the length of one measure in seconds when the beat
// unit is played at tempo BPM.
func (t TimeSignature) MeasureDuration(tempo float64) float64 {
	return float64(t.Beats) * 60 / tempo
}

// ParseSubdivision parses an additive grouping like "2+2+3".
func ParseSubdivision(s string) ([]int, error) {
	parts := strings.Split(s, "+")
	ret := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 1 {
			return nil, fmt.Errorf("invalid subdivision %q", s)
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// FormatSubdivision is the inverse of ParseSubdivision.
func FormatSubdivision(grouping []int) string {
	var b strings.Builder
	for i, g := range grouping {
		if i > 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(g))
	}
	return b.String()
}
