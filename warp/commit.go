package warp

import (
	"math"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/tempo"
)

// Commit applies a warp to the tempo map of song and returns the updated
// song; the input is not modified. The segment from anchorMeasure to
// dragMeasure gets tempo newBPM, which moves dragMeasure. A tempo change is
// put at the new position of dragMeasure, continuing with newBPM; if there is
// a tempo change after it, the tempo of that new change is solved instead so
// that the following change stays at its measure. Nothing beyond the following change is
// touched.
//
// ok is false, and song is returned unchanged, if the warp cannot be done:
// dragMeasure is not after anchorMeasure, there is another tempo change
// between them, or the measure would be moved onto or past the following
// tempo change.
func Commit(song multitrack.Song, anchorMeasure float64, dragMeasure int, newBPM float64) (multitrack.Song, bool) {
	drag := float64(dragMeasure)
	if !(drag > anchorMeasure+tempo.Epsilon) || anchorMeasure < 1 {
		return song, false
	}
	if math.IsNaN(newBPM) || math.IsInf(newBPM, 0) {
		newBPM = tempo.FallbackTempo
	}
	newBPM = min(max(newBPM, multitrack.MinTempo), multitrack.MaxTempo)

	old := tempo.ForSong(&song)
	anchorTime := old.SecondsAt(anchorMeasure)
	dragTime := old.SecondsAt(drag)
	before := old.ChangeBefore(dragTime)
	if before >= 0 && old.Changes()[before].Time > anchorTime+tempo.Epsilon {
		return song, false
	}
	changes := old.Changes()
	next := before + 1
	if next < len(changes) && math.Abs(changes[next].Time-dragTime) < tempo.Epsilon {
		next++ // the grabbed measure already has a change, the one after it is the next anchor
	}

	anchorSeg := old.SegmentAt(anchorTime)
	newDragTime := anchorTime + (drag-anchorMeasure)*anchorSeg.Signature.MeasureDuration(newBPM)
	if next < len(changes) && newDragTime >= changes[next].Time-tempo.Epsilon {
		return song, false
	}

	ret := make([]multitrack.TempoChange, 0, len(changes)+2)
	anchorFound := false
	var dragChange multitrack.TempoChange
	dragFound := false
	for i, c := range changes {
		c = c.Copy()
		switch {
		case math.Abs(c.Time-anchorTime) < tempo.Epsilon:
			c.Tempo = newBPM
			anchorFound = true
		case i == next-1 && math.Abs(c.Time-dragTime) < tempo.Epsilon:
			dragChange, dragFound = c, true
			continue
		}
		ret = append(ret, c)
	}
	if !anchorFound {
		ret = append(ret, multitrack.TempoChange{Time: anchorTime, Tempo: newBPM, TimeSignature: anchorSeg.Signature.String()})
	}
	if !dragFound {
		// placeholder continuing the warped segment
		dragChange = multitrack.TempoChange{Tempo: newBPM, TimeSignature: anchorSeg.Signature.String()}
	}
	dragChange.Time = newDragTime
	if next < len(changes) {
		nextTime := changes[next].Time
		deltaMeasures := old.MeasureAt(nextTime) - drag
		deltaSeconds := nextTime - newDragTime
		if deltaMeasures > 0 && deltaSeconds > 0 {
			sig := anchorSeg.Signature
			if dragChange.TimeSignature != "" {
				sig = multitrack.SignatureOrDefault(dragChange.TimeSignature)
			}
			dragChange.Tempo = tempo.WarpBPM(deltaMeasures, deltaSeconds, sig.Beats)
		}
	}
	ret = append(ret, dragChange)
	return song.WithTempoChanges(tempo.Normalize(ret)), true
}
