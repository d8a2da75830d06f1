package grid

import (
	"fmt"
	"math"
)

// Viewport relates the scrollable timeline content to song time. Width is
// the width of the whole timeline content in pixels, the part of it on
// screen starts at ScrollLeft and is ContainerWidth pixels wide. Pointer
// coordinates given to TimeAt are relative to the content origin, i.e.
// already compensated for scrolling.
type Viewport struct {
	Duration       float64
	Width          float64
	ScrollLeft     float64
	ContainerWidth float64
}

// PixelsPerSecond returns the horizontal scale, 0 for an empty viewport.
func (v Viewport) PixelsPerSecond() float64 {
	if !(v.Duration > 0) || !(v.Width > 0) {
		return 0
	}
	return v.Width / v.Duration
}

// Seconds converts a distance in pixels to a duration.
func (v Viewport) Seconds(pixels float64) float64 {
	pps := v.PixelsPerSecond()
	if pps == 0 {
		return 0
	}
	return pixels / pps
}

// TimeAt converts a content x coordinate to a time within the song.
func (v Viewport) TimeAt(x float64) float64 {
	return math.Max(0, math.Min(v.Seconds(x), math.Max(v.Duration, 0)))
}

// PixelAt converts a time to a content x coordinate.
func (v Viewport) PixelAt(t float64) float64 {
	return t * v.PixelsPerSecond()
}

// Visible returns the time window on screen.
func (v Viewport) Visible() (start, end float64) {
	if !(v.Width > 0) {
		return 0, v.Duration
	}
	start = v.TimeAt(v.ScrollLeft)
	end = v.TimeAt(v.ScrollLeft + v.ContainerWidth)
	return start, end
}

// TimeMarker is a label on the time ruler.
type TimeMarker struct {
	Position float64
	Label    string
}

var markerIntervals = []float64{1, 2, 5, 10, 15, 30, 60, 120, 300}

// MinMarkerSpacing is the minimum distance of time ruler labels in pixels.
const MinMarkerSpacing = 60

// TimeMarkers returns ruler labels between start and end, spaced by the
// smallest round interval that keeps them MinMarkerSpacing pixels apart.
func TimeMarkers(start, end, pixelsPerSecond float64) []TimeMarker {
	if !(end > start) || !(pixelsPerSecond > 0) {
		return nil
	}
	interval := markerIntervals[len(markerIntervals)-1]
	for _, i := range markerIntervals {
		if i*pixelsPerSecond >= MinMarkerSpacing {
			interval = i
			break
		}
	}
	var ret []TimeMarker
	for t := math.Ceil(start/interval) * interval; t <= end; t += interval {
		s := int(t)
		ret = append(ret, TimeMarker{Position: t, Label: fmt.Sprintf("%d:%02d", s/60, s%60)})
	}
	return ret
}
