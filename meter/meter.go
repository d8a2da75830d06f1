// Package meter classifies time signatures and derives their pulse
// hierarchy: which pulses of a measure are macro beats and how strongly each
// pulse is accented.
package meter

import (
	"github.com/goodmultitracks/multitrack"
)

type (
	Kind int

	// Info is the analysis of one time signature. A measure has Pulses pulses
	// of the signature's beat unit; the pulses are grouped into macro beats,
	// the size of each group given by Grouping. 6/8, for example, has 6
	// pulses grouped as [3 3], i.e. two dotted-quarter macro beats.
	Info struct {
		Signature  multitrack.TimeSignature
		Kind       Kind
		Pulses     int
		Grouping   []int
		MacroBeats []int // pulse indices where a macro beat starts
		Accents    []int // accent level per pulse: 2 downbeat, 1 strong, 0 weak
	}
)

const (
	Simple Kind = iota
	Compound
	Irregular
)

const (
	WeakAccent   = 0
	StrongAccent = 1
	Downbeat     = 2
)

func (k Kind) String() string {
	switch k {
	case Compound:
		return "compound"
	case Irregular:
		return "irregular"
	default:
		return "simple"
	}
}

// Analyze classifies sig. A non-empty grouping whose sum equals the number of
// beats makes the meter irregular; otherwise numerators divisible by three
// between 6 and 15 are compound and everything else is simple.
func Analyze(sig multitrack.TimeSignature, grouping []int) Info {
	if sig.Beats < 1 || sig.Unit < 1 {
		sig = multitrack.DefaultTimeSignature
	}
	ret := Info{Signature: sig, Pulses: sig.Beats}
	switch {
	case len(grouping) > 0 && sum(grouping) == sig.Beats:
		ret.Kind = Irregular
		ret.Grouping = append([]int{}, grouping...)
	case sig.Beats%3 == 0 && sig.Beats >= 6 && sig.Beats <= 15:
		ret.Kind = Compound
		ret.Grouping = repeat(3, sig.Beats/3)
	default:
		ret.Kind = Simple
		ret.Grouping = repeat(1, sig.Beats)
	}
	pos := 0
	for _, g := range ret.Grouping {
		ret.MacroBeats = append(ret.MacroBeats, pos)
		pos += g
	}
	ret.Accents = make([]int, ret.Pulses)
	for i := range ret.Accents {
		ret.Accents[i] = ret.accent(i)
	}
	return ret
}

// accent follows the usual conducting patterns: in simple meters 4/4 is
// strong-weak-medium-weak, two and three beat meters have only a downbeat
// accent and other meters accent every beat. Compound and irregular meters
// accent the start of each group.
func (i Info) accent(pulse int) int {
	if pulse == 0 {
		return Downbeat
	}
	if i.Kind != Simple {
		if i.IsMacroBeat(pulse) {
			return StrongAccent
		}
		return WeakAccent
	}
	switch i.Pulses {
	case 4:
		if pulse == 2 {
			return StrongAccent
		}
		return WeakAccent
	case 2, 3:
		return WeakAccent
	default:
		return StrongAccent
	}
}

// IsMacroBeat reports whether a macro beat starts at the given pulse.
func (i Info) IsMacroBeat(pulse int) bool {
	for _, p := range i.MacroBeats {
		if p == pulse {
			return true
		}
	}
	return false
}

// SubdivisionsPerBeat returns into how many parts a macro beat is usually
// divided: triplets in compound meters, otherwise eighths or sixteenths.
func (i Info) SubdivisionsPerBeat() int {
	if i.Kind == Compound {
		return 3
	}
	if i.Signature.Unit <= 4 {
		return 2
	}
	return 4
}

var subdivisionPresets = map[int][]string{
	5:  {"3+2", "2+3"},
	7:  {"2+2+3", "3+2+2", "2+3+2"},
	8:  {"3+3+2", "3+2+3"},
	9:  {"2+2+2+3", "3+2+2+2"},
	10: {"3+3+2+2", "2+3+2+3"},
	11: {"3+3+3+2", "2+3+3+3"},
}

// SubdivisionPresets lists common additive groupings for eighth-note
// meters. Other meters have none.
func SubdivisionPresets(sig multitrack.TimeSignature) []string {
	if sig.Unit != 8 {
		return nil
	}
	return append([]string(nil), subdivisionPresets[sig.Beats]...)
}

func repeat(v, n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = v
	}
	return ret
}

func sum(g []int) int {
	ret := 0
	for _, v := range g {
		ret += v
	}
	return ret
}
