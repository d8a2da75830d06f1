// Package waveform keeps multi-resolution peak data of the audio tracks, so
// that drawing a waveform costs the same regardless of how much of the song
// is on screen.
package waveform

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// NumLevels is the number of levels in a Mipmap. Level i is decimated by
// 10^i compared to the raw data.
const NumLevels = 4

const decimation = 10

// Mipmap holds the peak levels of one track. Level 0 is the absolute value
// of the raw data, each following level takes the maximum of non-overlapping
// windows of ten values of the previous one. A Mipmap is never modified after
// Generate returns it, so it can be shared freely.
type Mipmap struct {
	Levels [NumLevels][]float32
}

// Generate builds the mipmap levels of raw. raw is not modified.
func Generate(raw []float32) *Mipmap {
	m := new(Mipmap)
	m.Levels[0] = vek32.Abs(raw)
	for l := 1; l < NumLevels; l++ {
		prev := m.Levels[l-1]
		level := make([]float32, (len(prev)+decimation-1)/decimation)
		for i := range level {
			level[i] = vek32.Max(prev[i*decimation : min((i+1)*decimation, len(prev))])
		}
		m.Levels[l] = level
	}
	return m
}

// FoldChannels folds interleaved audio into one track holding the absolute
// peak of each frame. A trailing partial frame is dropped.
func FoldChannels(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return vek32.Abs(interleaved)
	}
	abs := vek32.Abs(interleaved)
	frames := make([]float32, len(abs)/channels)
	for i := range frames {
		frames[i] = vek32.Max(abs[i*channels : (i+1)*channels])
	}
	return frames
}

// SelectLevel returns the coarsest level that still has at least one value
// per pixel when pointsPerPixel raw values fall on each pixel.
func SelectLevel(pointsPerPixel float64) int {
	switch {
	case pointsPerPixel < 10:
		return 0
	case pointsPerPixel < 100:
		return 1
	case pointsPerPixel < 1000:
		return 2
	default:
		return 3
	}
}

// Factor returns how many raw values one value of the level covers.
func Factor(level int) int {
	ret := 1
	for i := 0; i < level; i++ {
		ret *= decimation
	}
	return ret
}

// Len returns the number of raw values the mipmap was built from.
func (m *Mipmap) Len() int {
	return len(m.Levels[0])
}

// ValueAt returns the peak covering raw index index at the resolution
// suitable for pointsPerPixel, or 0 outside the data.
func (m *Mipmap) ValueAt(index int, pointsPerPixel float64) float32 {
	level := SelectLevel(pointsPerPixel)
	i := index / Factor(level)
	data := m.Levels[level]
	if index < 0 || i >= len(data) {
		return 0
	}
	return data[i]
}

// Peaks resamples the raw range [from, to) onto pixels columns, each column
// being the maximum of the values it covers on the selected level.
func (m *Mipmap) Peaks(from, to, pixels int) []float32 {
	if pixels <= 0 || to <= from {
		return nil
	}
	ret := make([]float32, pixels)
	ppp := float64(to-from) / float64(pixels)
	level := SelectLevel(ppp)
	factor := Factor(level)
	data := m.Levels[level]
	for p := range ret {
		a := int(math.Floor((float64(from) + float64(p)*ppp) / float64(factor)))
		b := int(math.Ceil((float64(from) + float64(p+1)*ppp) / float64(factor)))
		a, b = max(a, 0), min(b, len(data))
		if b <= a {
			continue
		}
		ret[p] = vek32.Max(data[a:b])
	}
	return ret
}
