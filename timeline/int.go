package timeline

import (
	"math"

	"github.com/goodmultitracks/multitrack"
)

type (
	Int struct {
		IntData
	}

	IntData interface {
		Value() int
		Range() intRange

		setValue(int)
		change(kind string) func()
	}

	intRange struct {
		Min, Max int
	}

	Zoom      Model
	BaseTempo Model
)

const (
	MinZoom = 10
	MaxZoom = 5000
)

func (v Int) Add(delta int) (ok bool) {
	r := v.Range()
	value := r.Clamp(v.Value() + delta)
	if value == v.Value() || value < r.Min || value > r.Max {
		return false
	}
	defer v.change("Add")()
	v.setValue(value)
	return true
}

func (v Int) Set(value int) (ok bool) {
	r := v.Range()
	value = r.Clamp(value)
	if value == v.Value() || value < r.Min || value > r.Max {
		return false
	}
	defer v.change("Set")()
	v.setValue(value)
	return true
}

func (r intRange) Clamp(value int) int {
	return max(min(value, r.Max), r.Min)
}

// Model methods

func (m *Model) Zoom() *Zoom           { return (*Zoom)(m) }
func (m *Model) BaseTempo() *BaseTempo { return (*BaseTempo)(m) }

// Zoom, in percent of the width that fits the whole song in the container.
// Zooming keeps the time at the center of the container in place.

func (v *Zoom) Int() Int        { return Int{v} }
func (v *Zoom) Value() int      { return v.d.Zoom }
func (v *Zoom) Range() intRange { return intRange{MinZoom, MaxZoom} }
func (v *Zoom) setValue(value int) {
	m := (*Model)(v)
	center := m.Viewport().TimeAt(v.d.ContainerWidth / 2)
	v.d.Zoom = value
	m.SetScrollLeft(m.Viewport().PixelAt(center) - v.d.ContainerWidth/2)
}
func (v *Zoom) change(kind string) func() {
	return (*Model)(v).change("ZoomInt."+kind, ViewChange, MinorChange)
}

// BaseTempo is the tempo before the first tempo change, rounded to whole BPM.

func (v *BaseTempo) Int() Int   { return Int{v} }
func (v *BaseTempo) Value() int { return int(math.Round(v.d.Song.Tempo)) }
func (v *BaseTempo) Range() intRange {
	return intRange{multitrack.MinTempo, multitrack.MaxTempo}
}
func (v *BaseTempo) setValue(value int) { v.d.Song.Tempo = float64(value) }
func (v *BaseTempo) change(kind string) func() {
	return (*Model)(v).change("BaseTempoInt."+kind, TempoMapChange, MinorChange)
}
