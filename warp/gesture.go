// Package warp implements the warp drag: the user grabs a measure on the
// ruler, drags it to a new position, and the tempo of the segment between
// the preceding tempo change (the anchor) and the grabbed measure is solved
// so that the measure lands where it was dropped.
package warp

import (
	"errors"
	"math"

	"github.com/goodmultitracks/multitrack/grid"
	"github.com/goodmultitracks/multitrack/tempo"
)

type (
	// Gesture is the state machine of one warp drag. The zero value is an
	// idle gesture. A Gesture holds at most one drag at a time.
	Gesture struct {
		drag     Drag
		viewport grid.Viewport
		state    State
		ghost    float64
	}

	// Drag is the record of an active drag. Measures are 1-based; the anchor
	// measure can be fractional if the anchoring tempo change is not on a
	// barline.
	Drag struct {
		DragMeasure     int
		AnchorMeasure   float64
		AnchorTime      float64 // seconds
		StartPixel      float64
		OriginalTime    float64 // seconds, where DragMeasure was when grabbed
		BeatsPerMeasure int
	}

	// Result is what a successful drag produced; feed it to Commit.
	Result struct {
		AnchorMeasure float64
		DragMeasure   int
		NewBPM        float64
		NewTime       float64
	}

	State int
)

const (
	Idle State = iota
	Dragging
	Committed
	Cancelled
)

var (
	// ErrGestureActive is returned by Down when a drag is already going on.
	// The ongoing drag is not affected.
	ErrGestureActive = errors.New("warp gesture already in progress")
	// ErrNotAfterAnchor is returned by Down when the grabbed measure is not
	// after the anchor, so there is no segment to retime.
	ErrNotAfterAnchor = errors.New("measure is not after the warp anchor")
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Down starts a drag at content x coordinate x. The grabbed measure is the
// one whose start is nearest to the pointer; the anchor is the last tempo
// change before that measure, or the start of the song.
func (g *Gesture) Down(m *tempo.Map, v grid.Viewport, x float64) error {
	if g.state == Dragging {
		return ErrGestureActive
	}
	clicked := max(int(math.Round(m.MeasureAt(v.TimeAt(x)))), 1)
	original := m.SecondsAt(float64(clicked))
	d := Drag{
		DragMeasure:   clicked,
		AnchorMeasure: 1,
		StartPixel:    x,
		OriginalTime:  original,
	}
	if i := m.ChangeBefore(original); i >= 0 {
		d.AnchorTime = m.Changes()[i].Time
		d.AnchorMeasure = m.MeasureAt(d.AnchorTime)
	}
	if float64(clicked) <= d.AnchorMeasure+tempo.Epsilon {
		return ErrNotAfterAnchor
	}
	d.BeatsPerMeasure = m.SignatureAt(d.AnchorTime).Beats
	g.drag, g.viewport, g.state, g.ghost = d, v, Dragging, original
	return nil
}

// Move updates the ghost position of the grabbed measure. ok is false if
// no drag is active or the pointer is at or before the anchor, in which case
// the ghost keeps its last valid position.
func (g *Gesture) Move(x float64) (ghost float64, ok bool) {
	if g.state != Dragging {
		return 0, false
	}
	t := g.timeAt(x)
	if t <= g.drag.AnchorTime {
		return g.ghost, false
	}
	g.ghost = t
	return t, true
}

// Up ends the drag. If the measure was dropped after the anchor, the tempo
// that makes the anchor-to-measure segment fit is returned with ok true.
// Otherwise the drag is cancelled and nothing should be committed.
func (g *Gesture) Up(x float64) (r Result, ok bool) {
	if g.state != Dragging {
		return Result{}, false
	}
	t := g.timeAt(x)
	if t <= g.drag.AnchorTime {
		g.state = Cancelled
		return Result{}, false
	}
	g.state = Committed
	d := g.drag
	return Result{
		AnchorMeasure: d.AnchorMeasure,
		DragMeasure:   d.DragMeasure,
		NewBPM:        tempo.WarpBPM(float64(d.DragMeasure)-d.AnchorMeasure, t-d.AnchorTime, d.BeatsPerMeasure),
		NewTime:       t,
	}, true
}

// Cancel abandons the drag, e.g. when the pointer capture is lost.
func (g *Gesture) Cancel() {
	if g.state == Dragging {
		g.state = Cancelled
	}
}

// State returns Dragging during a drag and otherwise how the last drag
// ended.
func (g *Gesture) State() State {
	return g.state
}

// Active reports whether a drag is in progress.
func (g *Gesture) Active() bool {
	return g.state == Dragging
}

// Drag returns the active drag record.
func (g *Gesture) Drag() (Drag, bool) {
	return g.drag, g.state == Dragging
}

// Ghost returns the preview position of the grabbed measure.
func (g *Gesture) Ghost() (float64, bool) {
	return g.ghost, g.state == Dragging
}

func (g *Gesture) timeAt(x float64) float64 {
	return g.drag.OriginalTime + g.viewport.Seconds(x-g.drag.StartPixel)
}
