package metronome

import (
	"math"
	"sync"

	"github.com/goodmultitracks/multitrack/meter"
)

const (
	clickLength = 0.03 // seconds
	clickDecay  = 0.006
	clickGain   = 0.5
)

// Renderer synthesizes queued clicks into mono audio. Its position only
// advances when audio is rendered, so Time can serve as the clock of a
// Scheduler that feeds it. A click queued after its start has already been
// rendered sounds immediately instead of being dropped.
type Renderer struct {
	SampleRate int

	mu     sync.Mutex
	start  float64
	frames int64
	voices []voice
}

type voice struct {
	Click
	offset int64 // frame where the click starts
}

// NewRenderer returns a renderer whose first frame is at song time start.
func NewRenderer(sampleRate int, start float64) *Renderer {
	return &Renderer{SampleRate: sampleRate, start: start}
}

// Time returns the song time of the next frame to be rendered.
func (r *Renderer) Time() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.start + float64(r.frames)/float64(r.SampleRate)
}

func (r *Renderer) Add(clicks ...Click) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range clicks {
		offset := int64(math.Round((c.Time - r.start) * float64(r.SampleRate)))
		r.voices = append(r.voices, voice{Click: c, offset: max(offset, r.frames)})
	}
}

// Render fills buffer with the next frames and advances the position.
func (r *Renderer) Render(buffer []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(buffer)
	length := int64(clickLength * float64(r.SampleRate))
	end := r.frames + int64(len(buffer))
	alive := r.voices[:0]
	for _, v := range r.voices {
		freq := pitch(v.Accent)
		for f := max(v.offset, r.frames); f < min(v.offset+length, end); f++ {
			t := float64(f-v.offset) / float64(r.SampleRate)
			s := clickGain * v.Volume * math.Exp(-t/clickDecay) * math.Sin(2*math.Pi*freq*t)
			buffer[f-r.frames] += float32(s)
		}
		if v.offset+length > end {
			alive = append(alive, v)
		}
	}
	r.voices = alive
	r.frames = end
}

func pitch(accent int) float64 {
	switch accent {
	case meter.Downbeat:
		return 1760
	case meter.StrongAccent:
		return 1320
	default:
		return 880
	}
}
