package grid

import (
	"github.com/goodmultitracks/multitrack/meter"
	"github.com/goodmultitracks/multitrack/tempo"
)

// MeasureBar is a measure line annotated with the meter active there, for
// drawing measure numbers and time signature labels.
type MeasureBar struct {
	Position  float64
	Measure   int
	Signature string
	Tempo     float64
	Info      meter.Info
}

// MeasureBars picks the measure lines out of lines and looks up the meter
// active at each of them in m.
func MeasureBars(lines []Line, m *tempo.Map) []MeasureBar {
	var ret []MeasureBar
	for _, l := range lines {
		if l.Type != MeasureLine {
			continue
		}
		seg := m.SegmentAt(l.Position)
		ret = append(ret, MeasureBar{
			Position:  l.Position,
			Measure:   l.Measure,
			Signature: seg.Signature.String(),
			Tempo:     seg.Tempo,
			Info:      meter.Analyze(seg.Signature, seg.Subdivision),
		})
	}
	return ret
}
