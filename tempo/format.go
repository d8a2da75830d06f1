package tempo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errInvalidTime = errors.New("invalid time")

// ParseTime parses either plain seconds ("83.5") or minutes and seconds
// ("1:23.5").
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	mins, secs, hasColon := strings.Cut(s, ":")
	if !hasColon {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("%w: %q", errInvalidTime, s)
		}
		return v, nil
	}
	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidTime, s)
	}
	v, err := strconv.ParseFloat(secs, 64)
	if err != nil || v < 0 || v >= 60 || strings.HasPrefix(secs, "+") {
		return 0, fmt.Errorf("%w: %q", errInvalidTime, s)
	}
	return float64(m)*60 + v, nil
}

// FormatTime formats seconds as "m:ss.cc".
func FormatTime(seconds float64) string {
	if !(seconds > 0) {
		seconds = 0
	}
	cs := int64(math.Round(seconds * 100))
	return fmt.Sprintf("%d:%02d.%02d", cs/6000, cs/100%60, cs%100)
}

// FormatBPM prints whole tempos without decimals and others with at most
// two.
func FormatBPM(bpm float64) string {
	if bpm == math.Trunc(bpm) {
		return strconv.FormatFloat(bpm, 'f', 0, 64)
	}
	return strconv.FormatFloat(math.Round(bpm*100)/100, 'f', -1, 64)
}
