package metronome

import (
	"context"
	"time"

	"github.com/goodmultitracks/multitrack"
	"github.com/goodmultitracks/multitrack/tempo"
)

const (
	DefaultLookahead = 0.1 // seconds
	DefaultInterval  = 25 * time.Millisecond
)

// Scheduler hands out clicks a little before they are due. Every Interval it
// reads the playback clock and emits all clicks earlier than now+Lookahead.
// The position of the next click is kept between wake ups, so a late wake up
// delays the emission but never skips or shifts a click.
type Scheduler struct {
	Lookahead float64
	Interval  time.Duration

	song *multitrack.Song
	c    *cursor
}

// NewScheduler returns a scheduler starting at song time from.
func NewScheduler(song *multitrack.Song, mode Mode, from float64) *Scheduler {
	return &Scheduler{
		Lookahead: DefaultLookahead,
		Interval:  DefaultInterval,
		song:      song,
		c:         newCursor(tempo.ForSong(song), mode, max(from, 0)),
	}
}

// Next returns the time of the next click to be emitted.
func (s *Scheduler) Next() float64 {
	return s.c.time()
}

// Done reports whether all the clicks of the song have been emitted.
func (s *Scheduler) Done() bool {
	return s.song.Duration > 0 && s.c.time() >= s.song.Duration-tempo.Epsilon
}

// Step returns the clicks due before now+Lookahead that have not been
// returned yet.
func (s *Scheduler) Step(now float64) []Click {
	var ret []Click
	for !s.Done() && s.c.time() < now+s.Lookahead {
		ret = append(ret, s.c.click())
		s.c.advance()
	}
	return ret
}

// Run calls Step every Interval with the time given by clock and sends the
// clicks to out. It returns nil once the song is over, or the error of ctx.
func (s *Scheduler) Run(ctx context.Context, clock func() float64, out chan<- Click) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		for _, c := range s.Step(clock()) {
			select {
			case out <- c:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if s.Done() {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
