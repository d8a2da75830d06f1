package grid

import (
	"github.com/goodmultitracks/multitrack/meter"
	"github.com/goodmultitracks/multitrack/tempo"
)

// walker is a cursor over the segments of a tempo map. Lines asks for
// positions in nearly increasing measure order, so moving the cursor one
// segment at a time is cheaper than a binary search per line.
type walker struct {
	segs  []tempo.Segment
	i     int
	infos map[int]meter.Info
}

func newWalker(m *tempo.Map) *walker {
	return &walker{segs: m.Segments(), infos: map[int]meter.Info{}}
}

func (w *walker) seek(measure float64) {
	for w.i+1 < len(w.segs) && w.segs[w.i+1].Measure <= measure {
		w.i++
	}
	for w.i > 0 && w.segs[w.i].Measure > measure {
		w.i--
	}
}

func (w *walker) secondsAt(measure float64) float64 {
	w.seek(measure)
	return w.segs[w.i].SecondsAt(measure)
}

// segment returns the segment of the last position asked for.
func (w *walker) segment() tempo.Segment {
	return w.segs[w.i]
}

func (w *walker) info() meter.Info {
	if info, ok := w.infos[w.i]; ok {
		return info
	}
	seg := w.segs[w.i]
	info := meter.Analyze(seg.Signature, seg.Subdivision)
	w.infos[w.i] = info
	return info
}
