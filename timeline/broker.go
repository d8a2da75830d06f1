package timeline

import (
	"context"
	"time"

	"github.com/goodmultitracks/multitrack/waveform"
)

type (
	// Broker is the centralized message broker of the editor. It connects the
	// model to the player and to the background waveform generation. The
	// broker is many-to-one: each recipient has one channel.
	//
	// For closing goroutines, the broker has two channels per goroutine:
	// CloseXXX and FinishedXXX. CloseXXX has a capacity of 1, so an empty
	// message can always be sent to it without blocking; if it is already
	// full, someone else has already asked for the closing. FinishedXXX is
	// only ever closed, to signal that the goroutine has cleaned up:
	//    select {
	//      case <-FinishedXXX:
	//      case <-time.After(3 * time.Second):
	//    }
	Broker struct {
		ToModel  chan MsgToModel
		ToPlayer chan any

		CloseWaveforms    chan struct{}
		FinishedWaveforms chan struct{}
	}

	// MsgToModel is a message sent to the model. The frequent play position
	// updates are not boxed; everything else travels in Data: waveform
	// updates, alerts, songs and functions to run on the model goroutine.
	MsgToModel struct {
		HasPlayPosition bool
		Playing         bool
		PlayPosition    float64
		WallClock       time.Time

		Data any
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToModel:           make(chan MsgToModel, 1024),
		ToPlayer:          make(chan any, 1024),
		CloseWaveforms:    make(chan struct{}, 1),
		FinishedWaveforms: make(chan struct{}),
	}
}

// ForwardWaveforms relays the updates of the store to the model until
// CloseWaveforms receives a message or ctx is done. It closes
// FinishedWaveforms when it returns.
func (b *Broker) ForwardWaveforms(ctx context.Context, store *waveform.Store) {
	updates, unsubscribe := store.Subscribe(64)
	defer close(b.FinishedWaveforms)
	defer unsubscribe()
	for {
		select {
		case u := <-updates:
			TrySend(b.ToModel, MsgToModel{Data: u})
		case <-b.CloseWaveforms:
			return
		case <-ctx.Done():
			return
		}
	}
}

// TrySend sends v to c unless c is full, never blocking. It reports whether
// v was sent.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive waits at most t for a value from c. ok is false on timeout
// or when c is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
